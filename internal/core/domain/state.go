package domain

import "time"

// GenerationStatus is the orchestrator's visible phase.
type GenerationStatus string

const (
	StatusIdle       GenerationStatus = "idle"
	StatusValidating GenerationStatus = "validating"
	StatusGenerating GenerationStatus = "generating"
	StatusEnhancing  GenerationStatus = "enhancing"
	StatusComplete   GenerationStatus = "complete"
	StatusError      GenerationStatus = "error"
	StatusCancelled  GenerationStatus = "cancelled"
)

// Terminal reports whether the status ends an attempt.
func (s GenerationStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// GenerationSnapshot is a read-only copy of the orchestrator state.
type GenerationSnapshot struct {
	Status        GenerationStatus  `json:"status"`
	Progress      int               `json:"progress"`
	Message       string            `json:"message,omitempty"`
	Error         *ClassifiedError  `json:"error,omitempty"`
	RetryCount    int               `json:"retry_count"`
	Workout       *GeneratedWorkout `json:"workout,omitempty"`
	LastGenerated time.Time         `json:"last_generated,omitempty"`
}

// CanRegenerate reports whether a regenerate call could do useful work.
func (s GenerationSnapshot) CanRegenerate() bool {
	return s.Status != StatusGenerating && s.Status != StatusValidating && s.Status != StatusEnhancing
}

// HasError reports whether the last attempt ended in a classified failure.
func (s GenerationSnapshot) HasError() bool { return s.Error != nil }

// IsGenerating reports whether an attempt is in flight.
func (s GenerationSnapshot) IsGenerating() bool {
	return s.Status == StatusValidating || s.Status == StatusGenerating || s.Status == StatusEnhancing
}
