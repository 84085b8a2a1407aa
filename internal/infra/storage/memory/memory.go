// Package memory provides an in-memory WorkoutRepository used when no
// database is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/infra/storage"
)

// WorkoutRepo is a mutex-guarded in-memory repository.
type WorkoutRepo struct {
	mu       sync.RWMutex
	byID     map[string]*domain.GeneratedWorkout
	ordered  []string
	capacity int
}

// NewWorkoutRepo creates a repository retaining at most capacity workouts
// (0 = unbounded).
func NewWorkoutRepo(capacity int) *WorkoutRepo {
	return &WorkoutRepo{
		byID:     make(map[string]*domain.GeneratedWorkout),
		capacity: capacity,
	}
}

// Save stores the workout. Duplicate ids are ignored.
func (r *WorkoutRepo) Save(_ context.Context, w *domain.GeneratedWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[w.ID]; ok {
		return nil
	}
	r.byID[w.ID] = w
	r.ordered = append(r.ordered, w.ID)

	if r.capacity > 0 && len(r.ordered) > r.capacity {
		evict := r.ordered[0]
		r.ordered = r.ordered[1:]
		delete(r.byID, evict)
	}
	return nil
}

// GetByID returns the stored workout or storage.ErrNotFound.
func (r *WorkoutRepo) GetByID(_ context.Context, id string) (*domain.GeneratedWorkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return w, nil
}

// ListRecent returns up to limit workouts, newest first.
func (r *WorkoutRepo) ListRecent(_ context.Context, limit int) ([]*domain.GeneratedWorkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.ordered) {
		limit = len(r.ordered)
	}
	out := make([]*domain.GeneratedWorkout, 0, limit)
	for i := len(r.ordered) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.byID[r.ordered[i]])
	}
	return out, nil
}
