package generation

import "time"

// Options controls one generation attempt. Zero-valued durations and counts
// fall back to defaults; the boolean switches default to enabled via
// DefaultOptions.
type Options struct {
	// Timeout bounds each remote generation attempt.
	Timeout time.Duration
	// RetryAttempts bounds remote call retries inside one attempt.
	RetryAttempts int
	// RetryDelay is the backoff base delay for remote retries.
	RetryDelay time.Duration
	// UseExternalAI enables the remote generation call.
	UseExternalAI bool
	// UseFallback substitutes the internal template when the remote call
	// terminally fails.
	UseFallback bool
	// EnableDetailedLogging raises orchestrator logging to debug detail.
	EnableDetailedLogging bool
	// ProgressSteps is the number of simulated progress updates per phase.
	ProgressSteps int
	// MaxRecommendations bounds the internal engine's hint list.
	MaxRecommendations int
}

// DefaultOptions returns the documented defaults: external generation with
// internal fallback, 3 remote attempts, 1s base delay, 30s timeout.
func DefaultOptions() Options {
	return Options{
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
		UseExternalAI: true,
		UseFallback:   true,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Timeout > 90*time.Second {
		o.Timeout = 90 * time.Second
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = def.RetryAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = def.RetryDelay
	}
	return o
}

// Pacing controls how fast the advisory progress signal advances. Tests
// shrink these to keep attempts fast.
type Pacing struct {
	// InternalPhase paces the 0→40 segment during template generation.
	InternalPhase time.Duration
	// ExternalPhase paces the 50→90 segment during the remote call.
	ExternalPhase time.Duration
	// RetryPauseBase scales the 2^n retry pause (1s in production).
	RetryPauseBase time.Duration
}

// DefaultPacing matches the user-facing timings.
func DefaultPacing() Pacing {
	return Pacing{
		InternalPhase:  3 * time.Second,
		ExternalPhase:  20 * time.Second,
		RetryPauseBase: 1 * time.Second,
	}
}

func (p Pacing) normalized() Pacing {
	def := DefaultPacing()
	if p.InternalPhase <= 0 {
		p.InternalPhase = def.InternalPhase
	}
	if p.ExternalPhase <= 0 {
		p.ExternalPhase = def.ExternalPhase
	}
	if p.RetryPauseBase <= 0 {
		p.RetryPauseBase = def.RetryPauseBase
	}
	return p
}
