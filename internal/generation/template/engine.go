// Package template produces a baseline workout structure and generator
// recommendations deterministically from canonical variables. It enriches
// the external generation request and doubles as the fallback generator;
// fallback synthesis must never fail.
package template

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vietddude/coach/internal/core/domain"
)

// fallbackConfidenceCap keeps internally generated plans below any
// externally produced confidence so callers can see degraded quality.
const fallbackConfidenceCap = 0.7

// Options controls one engine run.
type Options struct {
	ConfidenceThreshold float64
	MaxRecommendations  int
	ExternalPlanned     bool
}

// Result is the engine output: hints for the external call plus a template
// usable directly as the fallback workout.
type Result struct {
	Recommendations []domain.Recommendation
	Prompt          string
	Template        *domain.GeneratedWorkout
}

// Engine builds workout templates from the static exercise catalog.
type Engine struct{}

// NewEngine creates a template engine.
func NewEngine() *Engine { return &Engine{} }

// Build synthesizes recommendations, a prompt, and a structurally valid
// template for the given variables. It is total: sparse input degrades to a
// generic full-body plan rather than an error.
func (e *Engine) Build(vars domain.CanonicalVariables, opts Options) Result {
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = 5
	}

	recs := e.recommend(vars, opts.MaxRecommendations)
	tpl := e.buildTemplate(vars)
	if opts.ConfidenceThreshold > 0 && tpl.Confidence < opts.ConfidenceThreshold {
		recs = append(recs, domain.Recommendation{
			Category: "quality",
			Text:     "Catalog coverage for this request is limited; weigh generator output over the baseline template.",
		})
		if len(recs) > opts.MaxRecommendations {
			recs = recs[:opts.MaxRecommendations]
		}
	}

	// The prompt only matters when a remote call will consume it.
	var prompt string
	if opts.ExternalPlanned {
		prompt = e.buildPrompt(vars, recs)
	}
	return Result{
		Recommendations: recs,
		Prompt:          prompt,
		Template:        tpl,
	}
}

// buildTemplate assembles the three phases. Phase durations always sum to
// the total exactly: warm-up and cool-down take fixed shares and the main
// block absorbs the remainder.
func (e *Engine) buildTemplate(vars domain.CanonicalVariables) *domain.GeneratedWorkout {
	total := vars.DurationMinutes
	if total <= 0 {
		total = 45
	}

	warmMin := total * 15 / 100
	if warmMin < 3 {
		warmMin = 3
	}
	coolMin := total * 10 / 100
	if coolMin < 2 {
		coolMin = 2
	}
	mainMin := total - warmMin - coolMin
	if mainMin < 1 {
		// Very short sessions: shrink the bookends instead of the work.
		warmMin, coolMin = 2, 1
		mainMin = total - warmMin - coolMin
		if mainMin < 1 {
			total = 10
			warmMin, coolMin, mainMin = 2, 1, 7
		}
	}

	have := make(map[domain.Equipment]struct{}, len(vars.Equipment))
	for _, eq := range vars.Equipment {
		have[eq] = struct{}{}
	}

	warm := pick(warmupCatalog, vars, have, 3)
	main := pick(mainCatalog, vars, have, mainExerciseCount(vars))
	cool := pick(cooldownCatalog, vars, have, 3)

	return &domain.GeneratedWorkout{
		ID:              uuid.New().String(),
		Title:           title(vars),
		Description:     description(vars),
		DurationMinutes: total,
		WarmUp:          domain.WorkoutPhase{Name: "Warm-up", DurationMinutes: warmMin, Exercises: warm},
		Main:            domain.WorkoutPhase{Name: "Main", DurationMinutes: mainMin, Exercises: main},
		CoolDown:        domain.WorkoutPhase{Name: "Cool-down", DurationMinutes: coolMin, Exercises: cool},
		Reasoning:       reasoning(vars),
		SafetyReminders: safetyReminders(vars),
		Confidence:      e.fallbackConfidence(vars),
		Origin:          domain.OriginInternal,
		Tags:            tags(vars),
	}
}

// pick filters the catalog by focus, equipment and level, relaxing filters
// until at least one exercise matches. The catalog's bodyweight entries
// guarantee termination.
func pick(catalog []catalogEntry, vars domain.CanonicalVariables, have map[domain.Equipment]struct{}, n int) []domain.Exercise {
	if n < 1 {
		n = 1
	}

	selected := filter(catalog, func(c catalogEntry) bool {
		return c.matchesFocus(vars.Focus) && c.matchesEquipment(have) && c.matchesLevel(vars.Experience)
	})
	if len(selected) == 0 {
		selected = filter(catalog, func(c catalogEntry) bool {
			return c.matchesEquipment(have) && c.matchesLevel(vars.Experience)
		})
	}
	if len(selected) == 0 {
		selected = filter(catalog, func(c catalogEntry) bool {
			return c.Equipment == domain.EquipmentBodyweight
		})
	}

	if len(selected) > n {
		selected = selected[:n]
	}

	out := make([]domain.Exercise, 0, len(selected))
	for _, c := range selected {
		ex := domain.Exercise{Name: c.Name, Sets: c.Sets, Reps: c.Reps, RestSec: c.RestSec}
		if c.Reps == 0 {
			ex.DurationSec = 30
		}
		out = append(out, ex)
	}
	return out
}

func filter(in []catalogEntry, keep func(catalogEntry) bool) []catalogEntry {
	out := make([]catalogEntry, 0, len(in))
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func mainExerciseCount(vars domain.CanonicalVariables) int {
	switch {
	case vars.DurationMinutes >= 60:
		return 6
	case vars.DurationMinutes >= 40:
		return 5
	case vars.DurationMinutes >= 25:
		return 4
	}
	return 3
}

// fallbackConfidence scores how well the catalog can serve the request.
// Always below the cap; external results are expected to beat it.
func (e *Engine) fallbackConfidence(vars domain.CanonicalVariables) float64 {
	c := 0.5
	if len(vars.Equipment) > 1 {
		c += 0.05
	}
	if vars.Experience == domain.ExperienceBeginner {
		c += 0.05
	}
	if len(vars.Limitations) > 0 {
		c -= 0.1
	}
	if c >= fallbackConfidenceCap {
		c = fallbackConfidenceCap - 0.01
	}
	if c < 0.1 {
		c = 0.1
	}
	return c
}

func (e *Engine) recommend(vars domain.CanonicalVariables, max int) []domain.Recommendation {
	recs := []domain.Recommendation{
		{Category: "experience", Text: fmt.Sprintf("Calibrate volume and complexity for a %s lifter.", vars.Experience)},
		{Category: "goal", Text: fmt.Sprintf("Bias exercise selection toward %s.", strings.ReplaceAll(string(vars.Goal), "_", " "))},
	}
	if vars.Energy <= 2 {
		recs = append(recs, domain.Recommendation{Category: "energy", Text: "Reported energy is low; reduce intensity and favor technique work."})
	}
	if len(vars.Limitations) > 0 {
		recs = append(recs, domain.Recommendation{Category: "safety", Text: "Avoid movements conflicting with: " + strings.Join(vars.Limitations, ", ") + "."})
	}
	if len(vars.Equipment) == 1 && vars.Equipment[0] == domain.EquipmentBodyweight {
		recs = append(recs, domain.Recommendation{Category: "equipment", Text: "No equipment available; program bodyweight progressions only."})
	}
	recs = append(recs, domain.Recommendation{Category: "structure", Text: fmt.Sprintf("Keep the session within %d minutes including warm-up and cool-down.", vars.DurationMinutes)})

	if len(recs) > max {
		recs = recs[:max]
	}
	return recs
}

func (e *Engine) buildPrompt(vars domain.CanonicalVariables, recs []domain.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-minute %s workout focused on %s for a %s athlete whose goal is %s.\n",
		vars.DurationMinutes, vars.WorkoutType, vars.Focus, vars.Experience, vars.Goal)
	fmt.Fprintf(&b, "Available equipment: %s.\n", equipmentList(vars.Equipment))
	fmt.Fprintf(&b, "Energy level today: %d/5.\n", vars.Energy)
	if len(vars.Limitations) > 0 {
		fmt.Fprintf(&b, "Limitations: %s.\n", strings.Join(vars.Limitations, ", "))
	}
	if len(recs) > 0 {
		b.WriteString("Guidance:\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "- [%s] %s\n", r.Category, r.Text)
		}
	}
	for k, v := range vars.Extra {
		fmt.Fprintf(&b, "Context %s: %s\n", k, v)
	}
	return b.String()
}

func equipmentList(eq []domain.Equipment) string {
	if len(eq) == 0 {
		return string(domain.EquipmentBodyweight)
	}
	parts := make([]string, len(eq))
	for i, e := range eq {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}

func title(vars domain.CanonicalVariables) string {
	exp := string(vars.Experience)
	if exp != "" {
		exp = strings.ToUpper(exp[:1]) + exp[1:]
	}
	return fmt.Sprintf("%s %s session (%d min)",
		exp, strings.ReplaceAll(string(vars.Focus), "_", " "), vars.DurationMinutes)
}

func description(vars domain.CanonicalVariables) string {
	return fmt.Sprintf("A %s plan built from the internal catalog for a %s athlete targeting %s.",
		vars.WorkoutType, vars.Experience, strings.ReplaceAll(string(vars.Goal), "_", " "))
}

func reasoning(vars domain.CanonicalVariables) string {
	return fmt.Sprintf("Selected from the deterministic catalog: focus %s, equipment-aware, scaled to %s experience and energy %d/5.",
		vars.Focus, vars.Experience, vars.Energy)
}

func safetyReminders(vars domain.CanonicalVariables) []string {
	out := []string{
		"Stop immediately if you feel sharp pain.",
		"Prioritize form over load on every set.",
	}
	if vars.Energy <= 2 {
		out = append(out, "Energy is low today; cut a set before cutting form.")
	}
	return out
}

func tags(vars domain.CanonicalVariables) []string {
	return []string{
		string(vars.WorkoutType),
		string(vars.Focus),
		string(vars.Experience),
		string(domain.OriginInternal),
	}
}
