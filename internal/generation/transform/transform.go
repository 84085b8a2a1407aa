// Package transform converts raw profile and preference data into the
// canonical variable set consumed by both the internal and external
// generators. It is pure and fails fast, so validation always happens
// before any expensive work starts.
package transform

import (
	"errors"
	"strings"

	"github.com/vietddude/coach/internal/core/domain"
)

const (
	defaultDurationMinutes = 45
	minDurationMinutes     = 10
	maxDurationMinutes     = 180
)

// Canonicalize validates the request and produces canonical variables.
// Structural problems surface immediately as classified, non-retryable
// errors; no network or async work is ever performed here.
func Canonicalize(req domain.GenerationRequest) (domain.CanonicalVariables, error) {
	var vars domain.CanonicalVariables

	if isEmptyProfile(req.Profile) {
		return vars, domain.NewClassified(domain.ErrInsufficientData,
			errors.New("profile has no usable fields"))
	}

	exp, err := normalizeExperience(req.Profile.Experience)
	if err != nil {
		return vars, domain.NewClassified(domain.ErrInvalidData, err)
	}
	goal, err := normalizeGoal(req.Profile.Goal)
	if err != nil {
		return vars, domain.NewClassified(domain.ErrInvalidData, err)
	}
	if req.Preferences.DurationMinutes < 0 || req.Preferences.DurationMinutes > maxDurationMinutes {
		return vars, domain.NewClassified(domain.ErrInvalidData,
			errors.New("duration out of range"))
	}

	vars.Experience = exp
	vars.Goal = goal
	vars.Focus = normalizeFocus(req.Preferences.Focus)
	vars.WorkoutType = normalizeWorkoutType(req.WorkoutType)
	vars.DurationMinutes = normalizeDuration(req.Preferences.DurationMinutes)
	vars.Energy = clampEnergy(req.Preferences.Energy)
	vars.Equipment = dedupEquipment(req.Preferences.Equipment)
	vars.Limitations = trimAll(req.Profile.Limitations)
	vars.Extra = req.ExtraContext
	return vars, nil
}

func isEmptyProfile(p domain.Profile) bool {
	return p.Experience == "" && p.Goal == "" && p.AgeYears == 0 &&
		p.WeightKg == 0 && len(p.Limitations) == 0
}

func normalizeExperience(e domain.ExperienceLevel) (domain.ExperienceLevel, error) {
	switch domain.ExperienceLevel(strings.ToLower(strings.TrimSpace(string(e)))) {
	case domain.ExperienceBeginner:
		return domain.ExperienceBeginner, nil
	case domain.ExperienceIntermediate:
		return domain.ExperienceIntermediate, nil
	case domain.ExperienceAdvanced:
		return domain.ExperienceAdvanced, nil
	case "":
		return "", errors.New("experience level is required")
	}
	return "", errors.New("unknown experience level: " + string(e))
}

func normalizeGoal(g domain.Goal) (domain.Goal, error) {
	switch domain.Goal(strings.ToLower(strings.TrimSpace(string(g)))) {
	case domain.GoalStrength:
		return domain.GoalStrength, nil
	case domain.GoalMuscleGain:
		return domain.GoalMuscleGain, nil
	case domain.GoalFatLoss:
		return domain.GoalFatLoss, nil
	case domain.GoalEndurance:
		return domain.GoalEndurance, nil
	case domain.GoalMobility:
		return domain.GoalMobility, nil
	case domain.GoalGeneral:
		return domain.GoalGeneral, nil
	case "":
		return "", errors.New("primary goal is required")
	}
	return "", errors.New("unknown goal: " + string(g))
}

func normalizeFocus(f domain.Focus) domain.Focus {
	switch f {
	case domain.FocusUpper, domain.FocusLower, domain.FocusCore, domain.FocusCardio:
		return f
	}
	return domain.FocusFullBody
}

func normalizeWorkoutType(t domain.WorkoutType) domain.WorkoutType {
	switch t {
	case domain.WorkoutStrength, domain.WorkoutCardio, domain.WorkoutHIIT, domain.WorkoutMobility:
		return t
	}
	return domain.WorkoutMixed
}

func normalizeDuration(minutes int) int {
	if minutes == 0 {
		return defaultDurationMinutes
	}
	if minutes < minDurationMinutes {
		return minDurationMinutes
	}
	return minutes
}

func clampEnergy(e domain.EnergyLevel) domain.EnergyLevel {
	if e < domain.EnergyMin {
		return 3
	}
	if e > domain.EnergyMax {
		return domain.EnergyMax
	}
	return e
}

func dedupEquipment(in []domain.Equipment) []domain.Equipment {
	if len(in) == 0 {
		return []domain.Equipment{domain.EquipmentBodyweight}
	}
	seen := make(map[domain.Equipment]struct{}, len(in))
	out := make([]domain.Equipment, 0, len(in))
	for _, e := range in {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
