// Package generation orchestrates workout plan generation: it validates
// input, runs the internal template engine and the external generation
// client with an advisory progress signal, classifies failures, and falls
// back to the internal template when the remote path is exhausted.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/generation/metrics"
	"github.com/vietddude/coach/internal/generation/progress"
	"github.com/vietddude/coach/internal/generation/template"
	"github.com/vietddude/coach/internal/generation/transform"
	"github.com/vietddude/coach/internal/infra/provider"
)

// MaxRetries bounds consecutive caller-initiated retries.
const MaxRetries = 3

// lowCoverageThreshold marks template confidence below which the engine
// flags limited catalog coverage to the remote generator.
const lowCoverageThreshold = 0.55

// Config wires an Orchestrator.
type Config struct {
	// Provider is the remote generator; nil disables the external path.
	Provider provider.Provider
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// OnProgress receives advisory progress updates in [0,100].
	OnProgress progress.Func
	// Pacing controls progress timing and retry pauses.
	Pacing Pacing
}

// Orchestrator is the top-level generation state machine. It owns
// GenerationState exclusively: all other components are pure or
// side-effect-free and communicate through return values. At most one
// attempt is authoritative at a time; starting a new one supersedes the
// previous.
type Orchestrator struct {
	client     *Client
	engine     *template.Engine
	log        *slog.Logger
	onProgress progress.Func
	pace       Pacing

	mu      sync.Mutex
	epoch   uint64
	cancel  context.CancelFunc
	state   domain.GenerationSnapshot
	lastReq *domain.GenerationRequest
}

// New creates an orchestrator in the idle state.
func New(cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	o := &Orchestrator{
		engine:     template.NewEngine(),
		log:        log,
		onProgress: cfg.OnProgress,
		pace:       cfg.Pacing.normalized(),
		state:      domain.GenerationSnapshot{Status: domain.StatusIdle},
	}
	if cfg.Provider != nil {
		o.client = NewClient(cfg.Provider, log)
	}
	return o
}

// Snapshot returns a read-only copy of the current state.
func (o *Orchestrator) Snapshot() domain.GenerationSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generate runs one full validate→generate→enhance attempt for req. Any
// in-flight attempt is cancelled and superseded first; req is remembered
// for Retry and Regenerate. On unrecoverable failure the returned workout
// is nil and the snapshot carries the classified error.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest, opts Options) (*domain.GeneratedWorkout, error) {
	opts = opts.normalized()

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.epoch++
	epoch := o.epoch
	attemptCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.lastReq = &req
	o.state = domain.GenerationSnapshot{
		Status:        domain.StatusValidating,
		RetryCount:    o.state.RetryCount,
		Workout:       o.state.Workout,
		LastGenerated: o.state.LastGenerated,
	}
	o.mu.Unlock()

	workout, err := o.run(attemptCtx, epoch, req, opts)

	o.mu.Lock()
	if o.epoch == epoch {
		cancel()
		o.cancel = nil
	}
	o.mu.Unlock()
	return workout, err
}

// Retry re-runs the remembered request with a single remote attempt (no
// nested retries). It refuses after MaxRetries consecutive failures and
// pauses 2^n seconds (scaled by pacing) before re-invoking.
func (o *Orchestrator) Retry(ctx context.Context) (*domain.GeneratedWorkout, error) {
	o.mu.Lock()
	req := o.lastReq
	if req == nil {
		ce := domain.NewClassified(domain.ErrInvalidData, errors.New("no previous request to retry"))
		o.state.Status = domain.StatusError
		o.state.Error = ce
		o.mu.Unlock()
		return nil, ce
	}
	if o.state.RetryCount >= MaxRetries {
		ce := domain.NonRetryable(domain.ErrGenerationFailed,
			fmt.Errorf("retry limit reached (%d)", MaxRetries))
		o.state.Status = domain.StatusError
		o.state.Error = ce
		o.mu.Unlock()
		return nil, ce
	}
	o.state.RetryCount++
	attempt := o.state.RetryCount
	o.mu.Unlock()

	metrics.RetriesTotal.Inc()
	pause := o.pace.RetryPauseBase * time.Duration(1<<attempt)
	o.log.Info("retry scheduled", "retry", attempt, "pause", pause)
	select {
	case <-ctx.Done():
		return nil, domain.Classify(ctx.Err(), domain.ErrGenerationFailed)
	case <-time.After(pause):
	}

	opts := DefaultOptions()
	opts.RetryAttempts = 1
	return o.Generate(ctx, *req, opts)
}

// Regenerate re-runs the remembered request independent of the retry
// counter. Without a remembered request it fails with INVALID_DATA.
func (o *Orchestrator) Regenerate(ctx context.Context, opts Options) (*domain.GeneratedWorkout, error) {
	o.mu.Lock()
	req := o.lastReq
	if req == nil {
		ce := domain.NewClassified(domain.ErrInvalidData, errors.New("no previous request to regenerate"))
		o.state.Status = domain.StatusError
		o.state.Error = ce
		o.mu.Unlock()
		return nil, ce
	}
	o.mu.Unlock()
	return o.Generate(ctx, *req, opts)
}

// Cancel signals cancellation to whichever work is in flight and moves the
// state to cancelled. The remembered request is kept.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil || !o.state.IsGenerating() {
		return
	}
	o.cancel()
	o.cancel = nil
	// Bump the epoch so the abandoned attempt can no longer mutate state.
	o.epoch++
	o.state.Status = domain.StatusCancelled
	o.state.Error = nil
	o.state.Message = "workout generation cancelled"
	metrics.AttemptsTotal.WithLabelValues("cancelled").Inc()
	o.log.Info("generation cancelled")
}

// Clear cancels any in-flight attempt and resets to the initial idle
// snapshot, including the remembered request.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.epoch++
	o.state = domain.GenerationSnapshot{Status: domain.StatusIdle}
	o.lastReq = nil
}

// run drives one attempt. Every state mutation is epoch-guarded so a
// superseded or cancelled attempt settles without touching terminal state.
func (o *Orchestrator) run(ctx context.Context, epoch uint64, req domain.GenerationRequest, opts Options) (w *domain.GeneratedWorkout, err error) {
	started := time.Now()
	usedFallback := false

	defer func() {
		if r := recover(); r != nil {
			ce := domain.NewClassified(domain.ErrGenerationFailed,
				fmt.Errorf("unhandled generation failure: %v", r))
			w, err = o.lastResort(epoch, started, req, usedFallback, ce)
		}
	}()

	o.log.Info("generation attempt started",
		"workout_type", req.WorkoutType, "external", opts.UseExternalAI, "fallback", opts.UseFallback)

	// validating
	vars, terr := transform.Canonicalize(req)
	if terr != nil {
		return nil, o.failAttempt(epoch, domain.Classify(terr, domain.ErrInvalidData))
	}
	if opts.EnableDetailedLogging {
		o.log.Info("request canonicalized",
			"duration_min", vars.DurationMinutes, "focus", vars.Focus,
			"experience", vars.Experience, "equipment", len(vars.Equipment))
	}
	useExternal := opts.UseExternalAI && o.client != nil
	if useExternal {
		if rerr := o.client.Ready(ctx); rerr != nil {
			if ctx.Err() != nil {
				return nil, abandoned(ctx.Err())
			}
			return nil, o.failAttempt(epoch, domain.Classify(rerr, domain.ErrServiceUnavailable))
		}
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, abandoned(cerr)
	}

	// generating: template engine runs alongside the early progress
	// simulation; both settle before progress jumps to 50.
	if !o.transition(epoch, domain.StatusGenerating) {
		return nil, abandoned(ctx.Err())
	}
	tpl := o.buildTemplate(ctx, epoch, vars, opts, useExternal)
	if cerr := ctx.Err(); cerr != nil {
		return nil, abandoned(cerr)
	}
	o.setProgress(epoch, 50)

	var workout *domain.GeneratedWorkout
	if useExternal {
		ext, exErr := o.generateExternal(ctx, epoch, vars, tpl, opts)
		switch {
		case exErr == nil:
			workout = ext
		case ctx.Err() != nil:
			return nil, abandoned(ctx.Err())
		default:
			ce := domain.Classify(exErr, domain.ErrGenerationFailed)
			if opts.UseFallback && ce.Fallback {
				o.log.Warn("external generation failed, substituting internal fallback",
					"code", ce.Code, "error", exErr)
				metrics.FallbacksTotal.Inc()
				usedFallback = true
				workout = tpl.Template
			} else {
				return nil, o.failAttempt(epoch, ce)
			}
		}
	} else {
		workout = tpl.Template
	}

	// enhancing
	if !o.transition(epoch, domain.StatusEnhancing) {
		return nil, abandoned(ctx.Err())
	}
	o.setProgress(epoch, 90)
	enhanced := enhance(workout, vars)
	if !o.completeAttempt(epoch, started, enhanced) {
		return nil, abandoned(ctx.Err())
	}
	return enhanced, nil
}

// buildTemplate runs the engine while the 0→40 progress simulation plays
// out; it returns once both have settled.
func (o *Orchestrator) buildTemplate(ctx context.Context, epoch uint64, vars domain.CanonicalVariables, opts Options, externalPlanned bool) template.Result {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		progress.Simulate(ctx, 0, 40, o.pace.InternalPhase, opts.ProgressSteps, func(p int) {
			o.setProgress(epoch, p)
		})
	}()

	res := o.engine.Build(vars, template.Options{
		ConfidenceThreshold: lowCoverageThreshold,
		MaxRecommendations:  opts.MaxRecommendations,
		ExternalPlanned:     externalPlanned,
	})
	wg.Wait()
	return res
}

// generateExternal races the remote call against the 50→90 progress
// simulation. Only the real work's result propagates; the simulation is
// discarded as soon as the call settles.
func (o *Orchestrator) generateExternal(ctx context.Context, epoch uint64, vars domain.CanonicalVariables, tpl template.Result, opts Options) (*domain.GeneratedWorkout, error) {
	progCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	go progress.Simulate(progCtx, 50, 90, o.pace.ExternalPhase, opts.ProgressSteps, func(p int) {
		o.setProgress(epoch, p)
	})

	return o.client.Generate(ctx, vars, tpl.Recommendations, tpl.Prompt, opts)
}

// lastResort synthesizes a fallback from the original request after an
// unhandled failure. If synthesis itself fails, the original classified
// error is surfaced, never the fallback's.
func (o *Orchestrator) lastResort(epoch uint64, started time.Time, req domain.GenerationRequest, usedFallback bool, ce *domain.ClassifiedError) (w *domain.GeneratedWorkout, err error) {
	if usedFallback || !ce.Fallback {
		return nil, o.failAttempt(epoch, ce)
	}

	defer func() {
		if r := recover(); r != nil {
			w, err = nil, o.failAttempt(epoch, ce)
		}
	}()

	vars, terr := transform.Canonicalize(req)
	if terr != nil {
		return nil, o.failAttempt(epoch, ce)
	}

	o.log.Warn("attempting last-resort fallback synthesis", "cause", ce.Code)
	res := o.engine.Build(vars, template.Options{})
	enhanced := enhance(res.Template, vars)
	if !o.completeAttempt(epoch, started, enhanced) {
		return nil, abandoned(nil)
	}
	metrics.FallbacksTotal.Inc()
	return enhanced, nil
}

// mutate applies fn iff the attempt is still authoritative and has not
// reached a terminal state. Cancel-before-mutate discipline lives here.
func (o *Orchestrator) mutate(epoch uint64, fn func(*domain.GenerationSnapshot)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch || o.state.Status.Terminal() {
		return false
	}
	fn(&o.state)
	return true
}

func (o *Orchestrator) transition(epoch uint64, status domain.GenerationStatus) bool {
	return o.mutate(epoch, func(s *domain.GenerationSnapshot) {
		s.Status = status
	})
}

// setProgress raises the attempt's progress; values never decrease within
// an attempt.
func (o *Orchestrator) setProgress(epoch uint64, pct int) {
	if pct > 100 {
		pct = 100
	}
	var cb progress.Func
	o.mu.Lock()
	if o.epoch == epoch && !o.state.Status.Terminal() && pct > o.state.Progress {
		o.state.Progress = pct
		cb = o.onProgress
	}
	o.mu.Unlock()
	if cb != nil {
		cb(pct)
	}
}

func (o *Orchestrator) completeAttempt(epoch uint64, started time.Time, w *domain.GeneratedWorkout) bool {
	o.setProgress(epoch, 100)
	ok := o.mutate(epoch, func(s *domain.GenerationSnapshot) {
		s.Status = domain.StatusComplete
		s.Workout = w
		s.Error = nil
		s.Message = ""
		s.RetryCount = 0
		s.LastGenerated = w.GeneratedAt
	})
	if ok {
		metrics.AttemptsTotal.WithLabelValues("complete").Inc()
		metrics.Duration.WithLabelValues(string(w.Origin)).Observe(time.Since(started).Seconds())
		o.log.Info("generation complete", "origin", w.Origin, "confidence", w.Confidence,
			"duration_min", w.DurationMinutes)
	}
	return ok
}

func (o *Orchestrator) failAttempt(epoch uint64, ce *domain.ClassifiedError) error {
	ok := o.mutate(epoch, func(s *domain.GenerationSnapshot) {
		s.Status = domain.StatusError
		s.Error = ce
		s.Message = ce.Message
	})
	if ok {
		metrics.AttemptsTotal.WithLabelValues("error").Inc()
		metrics.FailuresTotal.WithLabelValues(string(ce.Code)).Inc()
		o.log.Warn("generation failed", "code", ce.Code, "retryable", ce.Retryable, "error", ce)
	}
	return ce
}

// abandoned wraps the context error of a superseded or cancelled attempt.
// The attempt must not mutate state on its way out.
func abandoned(err error) error {
	if err == nil {
		err = context.Canceled
	}
	return domain.Classify(err, domain.ErrGenerationFailed)
}

// enhance attaches generation metadata to a chosen workout. The input is
// never mutated; regeneration always yields a fresh instance.
func enhance(w *domain.GeneratedWorkout, vars domain.CanonicalVariables) *domain.GeneratedWorkout {
	out := *w
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	out.GeneratedAt = time.Now().UTC()
	if out.DurationMinutes == 0 {
		out.DurationMinutes = vars.DurationMinutes
	}
	if out.Confidence <= 0 {
		if out.Origin == domain.OriginExternal {
			out.Confidence = 0.85
		} else {
			out.Confidence = 0.5
		}
	}
	out.Tags = withDerivedTags(out.Tags, vars, out.Origin)
	return &out
}

func withDerivedTags(existing []string, vars domain.CanonicalVariables, origin domain.Origin) []string {
	want := []string{
		string(vars.WorkoutType),
		string(vars.Focus),
		string(vars.Experience),
		string(origin),
	}
	seen := make(map[string]struct{}, len(existing)+len(want))
	out := make([]string, 0, len(existing)+len(want))
	for _, t := range existing {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range want {
		if _, ok := seen[t]; t != "" && !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
