package generation

import (
	"context"
	"log/slog"

	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/generation/metrics"
	"github.com/vietddude/coach/internal/generation/retry"
	"github.com/vietddude/coach/internal/infra/provider"
)

// Client wraps a remote generation provider with retry and timeout
// handling. It never falls back to the internal template itself; that
// decision belongs to the orchestrator.
type Client struct {
	provider provider.Provider
	log      *slog.Logger
}

// NewClient creates an external generation client.
func NewClient(p provider.Provider, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{provider: p, log: log}
}

// Ready reports whether the remote service can accept generation calls.
func (c *Client) Ready(ctx context.Context) error {
	return c.provider.Ready(ctx)
}

// Generate invokes the remote generator under the retry/timeout wrapper.
// On terminal failure the classified error propagates upward.
func (c *Client) Generate(ctx context.Context, vars domain.CanonicalVariables, recs []domain.Recommendation, prompt string, opts Options) (*domain.GeneratedWorkout, error) {
	cfg := retry.Config{
		Attempts:       opts.RetryAttempts,
		BaseDelay:      opts.RetryDelay,
		Timeout:        opts.Timeout,
		TimeoutMessage: "generation provider timed out",
	}

	workout, err := retry.Do(ctx, cfg, func(ctx context.Context) (*domain.GeneratedWorkout, error) {
		w, err := c.provider.Generate(ctx, vars, recs, prompt)
		if err != nil {
			metrics.ProviderCallsTotal.WithLabelValues(c.provider.Name(), "error").Inc()
			c.log.Debug("provider call failed", "provider", c.provider.Name(), "error", err)
			return nil, err
		}
		metrics.ProviderCallsTotal.WithLabelValues(c.provider.Name(), "ok").Inc()
		return w, nil
	})
	if err != nil {
		return nil, domain.Classify(err, domain.ErrGenerationFailed)
	}
	return workout, nil
}
