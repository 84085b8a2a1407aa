package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/coach/internal/core/domain"
	"github.com/vietddude/coach/internal/infra/storage"
)

// WorkoutRepo implements storage.WorkoutRepository on PostgreSQL. The full
// plan is stored as JSONB with a few indexed columns for listing.
type WorkoutRepo struct {
	db *DB
}

// NewWorkoutRepo creates a PostgreSQL workout repository.
func NewWorkoutRepo(db *DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

type workoutRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Origin      string    `db:"origin"`
	Confidence  float64   `db:"confidence"`
	DurationMin int       `db:"duration_min"`
	GeneratedAt time.Time `db:"generated_at"`
	Payload     []byte    `db:"payload"`
}

// Save persists the workout; duplicate ids are ignored (plans are
// immutable).
func (r *WorkoutRepo) Save(ctx context.Context, w *domain.GeneratedWorkout) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workout: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workouts (id, title, origin, confidence, duration_min, generated_at, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		w.ID, w.Title, string(w.Origin), w.Confidence, w.DurationMinutes, w.GeneratedAt, payload)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

// GetByID returns the stored workout or storage.ErrNotFound.
func (r *WorkoutRepo) GetByID(ctx context.Context, id string) (*domain.GeneratedWorkout, error) {
	var row workoutRow
	err := r.db.GetContext(ctx, &row, `SELECT id, title, origin, confidence, duration_min, generated_at, payload FROM workouts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query workout: %w", err)
	}
	return decode(row)
}

// ListRecent returns up to limit workouts, newest first.
func (r *WorkoutRepo) ListRecent(ctx context.Context, limit int) ([]*domain.GeneratedWorkout, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []workoutRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, title, origin, confidence, duration_min, generated_at, payload
		 FROM workouts ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	out := make([]*domain.GeneratedWorkout, 0, len(rows))
	for _, row := range rows {
		w, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decode(row workoutRow) (*domain.GeneratedWorkout, error) {
	var w domain.GeneratedWorkout
	if err := json.Unmarshal(row.Payload, &w); err != nil {
		return nil, fmt.Errorf("decode workout %s: %w", row.ID, err)
	}
	return &w, nil
}
