// Package storage defines persistence interfaces for generated workouts.
// The generation core performs no persistence; the serving layer saves
// results here.
package storage

import (
	"context"
	"errors"

	"github.com/vietddude/coach/internal/core/domain"
)

// ErrNotFound is returned when a workout id has no stored plan.
var ErrNotFound = errors.New("workout not found")

// WorkoutRepository stores generated workout plans.
type WorkoutRepository interface {
	// Save persists a generated workout. Saving the same id twice is a
	// no-op (workouts are immutable).
	Save(ctx context.Context, w *domain.GeneratedWorkout) error

	// GetByID returns the stored workout or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.GeneratedWorkout, error)

	// ListRecent returns up to limit workouts, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.GeneratedWorkout, error)
}
