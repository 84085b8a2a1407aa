// Package retry provides a generic combinator that races an operation
// against a per-attempt deadline and retries failures with exponential
// backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/vietddude/coach/internal/core/domain"
)

// Config defines retry behavior for one wrapped operation.
type Config struct {
	Attempts       int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Timeout        time.Duration
	TimeoutMessage string
}

// DefaultConfig provides sensible defaults for remote generation calls.
var DefaultConfig = Config{
	Attempts:  3,
	BaseDelay: 1 * time.Second,
	MaxDelay:  60 * time.Second,
	Timeout:   30 * time.Second,
}

func (c Config) normalized() Config {
	if c.Attempts <= 0 {
		c.Attempts = DefaultConfig.Attempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultConfig.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultConfig.MaxDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig.Timeout
	}
	return c
}

// Do runs op up to cfg.Attempts times. Each attempt races op against the
// per-attempt timeout; a late result is discarded. Between attempts it
// waits BaseDelay * 2^(n-1) plus uniform jitter up to one BaseDelay, which
// avoids synchronized retry storms across concurrent callers. Waits and
// attempts honor ctx: cancellation aborts immediately with no further
// attempts. On exhaustion the last classified error is returned.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	var lastErr *domain.ClassifiedError

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, domain.Classify(err, domain.ErrGenerationFailed)
		}

		result, err := runAttempt(ctx, cfg, op)
		if err == nil {
			return result, nil
		}

		ce := domain.Classify(err, domain.ErrGenerationFailed)
		lastErr = ce

		if !ce.Retryable || attempt == cfg.Attempts-1 {
			break
		}

		delay := backoff(attempt, cfg)
		if ce.RetryAfter > delay {
			delay = ce.RetryAfter
		}
		select {
		case <-ctx.Done():
			return zero, domain.Classify(ctx.Err(), domain.ErrGenerationFailed)
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

type attemptResult[T any] struct {
	value T
	err   error
}

// runAttempt races one invocation of op against the attempt deadline. The
// goroutine writes to a buffered channel so a timed-out attempt never leaks.
func runAttempt[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ch := make(chan attemptResult[T], 1)
	go func() {
		v, err := op(attemptCtx)
		ch <- attemptResult[T]{value: v, err: err}
	}()

	var zero T
	select {
	case res := <-ch:
		return res.value, res.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			// Caller cancellation, not a per-attempt timeout.
			return zero, domain.Classify(ctx.Err(), domain.ErrGenerationFailed)
		}
		msg := cfg.TimeoutMessage
		if msg == "" {
			msg = "operation timed out"
		}
		return zero, domain.Classify(errors.New(msg), domain.ErrTimeout)
	}
}

// backoff computes BaseDelay * 2^attempt capped at MaxDelay, plus jitter
// uniformly distributed up to one BaseDelay.
func backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	jitter := rand.Int63n(int64(cfg.BaseDelay) + 1)
	return time.Duration(delay) + time.Duration(jitter)
}
