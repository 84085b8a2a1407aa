package domain

import "time"

// Origin tags where a generated workout came from.
type Origin string

const (
	OriginExternal Origin = "external"
	OriginInternal Origin = "internal"
)

// Exercise is a single movement inside a phase.
type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets,omitempty"`
	Reps        int    `json:"reps,omitempty"`
	DurationSec int    `json:"duration_sec,omitempty"`
	RestSec     int    `json:"rest_sec,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// WorkoutPhase is one ordered segment of a workout.
type WorkoutPhase struct {
	Name            string     `json:"name"`
	DurationMinutes int        `json:"duration_minutes"`
	Exercises       []Exercise `json:"exercises"`
}

// GeneratedWorkout is the result of one successful generation attempt.
// Immutable after creation; regeneration always produces a new instance.
type GeneratedWorkout struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	DurationMinutes int          `json:"duration_minutes"`
	WarmUp          WorkoutPhase `json:"warm_up"`
	Main            WorkoutPhase `json:"main"`
	CoolDown        WorkoutPhase `json:"cool_down"`
	Reasoning       string       `json:"reasoning,omitempty"`
	SafetyReminders []string     `json:"safety_reminders,omitempty"`
	Confidence      float64      `json:"confidence"`
	GeneratedAt     time.Time    `json:"generated_at"`
	Origin          Origin       `json:"origin"`
	Tags            []string     `json:"tags,omitempty"`
}

// Phases returns the three phases in order.
func (w *GeneratedWorkout) Phases() []WorkoutPhase {
	return []WorkoutPhase{w.WarmUp, w.Main, w.CoolDown}
}

// StructurallyValid reports whether the workout satisfies the hard fallback
// guarantee: non-empty phases, positive durations, phase durations summing
// to the total.
func (w *GeneratedWorkout) StructurallyValid() bool {
	if w.DurationMinutes <= 0 {
		return false
	}
	sum := 0
	for _, p := range w.Phases() {
		if len(p.Exercises) == 0 || p.DurationMinutes <= 0 {
			return false
		}
		sum += p.DurationMinutes
	}
	return sum == w.DurationMinutes
}

// Recommendation is a generator hint produced by the internal template
// engine, used to enrich the external generation request.
type Recommendation struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}
