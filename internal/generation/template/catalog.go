package template

import "github.com/vietddude/coach/internal/core/domain"

// catalogEntry describes one movement and the conditions it suits.
type catalogEntry struct {
	Name      string
	Focus     []domain.Focus
	Equipment domain.Equipment
	MinLevel  domain.ExperienceLevel
	Sets      int
	Reps      int
	RestSec   int
}

// levelRank orders experience levels for catalog filtering.
var levelRank = map[domain.ExperienceLevel]int{
	domain.ExperienceBeginner:     0,
	domain.ExperienceIntermediate: 1,
	domain.ExperienceAdvanced:     2,
}

// warmupCatalog movements are always bodyweight so the warm-up phase can be
// built for any equipment set.
var warmupCatalog = []catalogEntry{
	{Name: "Jumping jacks", Focus: []domain.Focus{domain.FocusFullBody, domain.FocusCardio}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 30},
	{Name: "Arm circles", Focus: []domain.Focus{domain.FocusFullBody, domain.FocusUpper}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 20},
	{Name: "Bodyweight squats", Focus: []domain.Focus{domain.FocusFullBody, domain.FocusLower}, Equipment: domain.EquipmentBodyweight, Sets: 2, Reps: 12},
	{Name: "Hip openers", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 10},
	{Name: "Cat-cow stretch", Focus: []domain.Focus{domain.FocusCore, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 10},
	{Name: "High knees", Focus: []domain.Focus{domain.FocusCardio, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 40},
}

// mainCatalog covers the main block across focuses and equipment.
var mainCatalog = []catalogEntry{
	{Name: "Barbell back squat", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBarbell, MinLevel: domain.ExperienceIntermediate, Sets: 4, Reps: 6, RestSec: 150},
	{Name: "Barbell deadlift", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBarbell, MinLevel: domain.ExperienceIntermediate, Sets: 3, Reps: 5, RestSec: 180},
	{Name: "Barbell bench press", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentBarbell, MinLevel: domain.ExperienceIntermediate, Sets: 4, Reps: 8, RestSec: 120},
	{Name: "Dumbbell goblet squat", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentDumbbell, Sets: 3, Reps: 10, RestSec: 90},
	{Name: "Dumbbell shoulder press", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentDumbbell, Sets: 3, Reps: 10, RestSec: 90},
	{Name: "Dumbbell row", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentDumbbell, Sets: 3, Reps: 12, RestSec: 90},
	{Name: "Kettlebell swing", Focus: []domain.Focus{domain.FocusFullBody, domain.FocusCardio, domain.FocusLower}, Equipment: domain.EquipmentKettlebell, Sets: 4, Reps: 15, RestSec: 60},
	{Name: "Band pull-apart", Focus: []domain.Focus{domain.FocusUpper}, Equipment: domain.EquipmentBands, Sets: 3, Reps: 15, RestSec: 45},
	{Name: "Pull-up", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentPullupBar, MinLevel: domain.ExperienceIntermediate, Sets: 3, Reps: 8, RestSec: 120},
	{Name: "Push-up", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 15, RestSec: 60},
	{Name: "Walking lunge", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 20, RestSec: 60},
	{Name: "Plank", Focus: []domain.Focus{domain.FocusCore, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 0, RestSec: 45},
	{Name: "Mountain climbers", Focus: []domain.Focus{domain.FocusCardio, domain.FocusCore, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 30, RestSec: 45},
	{Name: "Burpees", Focus: []domain.Focus{domain.FocusCardio, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, MinLevel: domain.ExperienceIntermediate, Sets: 4, Reps: 12, RestSec: 60},
	{Name: "Glute bridge", Focus: []domain.Focus{domain.FocusLower, domain.FocusCore}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 15, RestSec: 45},
	{Name: "Russian twist", Focus: []domain.Focus{domain.FocusCore}, Equipment: domain.EquipmentBodyweight, Sets: 3, Reps: 20, RestSec: 45},
	{Name: "Bench dip", Focus: []domain.Focus{domain.FocusUpper}, Equipment: domain.EquipmentBench, Sets: 3, Reps: 12, RestSec: 60},
}

// cooldownCatalog holds low-intensity finishing movements.
var cooldownCatalog = []catalogEntry{
	{Name: "Hamstring stretch", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 0},
	{Name: "Quad stretch", Focus: []domain.Focus{domain.FocusLower, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 0},
	{Name: "Child's pose", Focus: []domain.Focus{domain.FocusFullBody, domain.FocusCore, domain.FocusCardio}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 0},
	{Name: "Shoulder stretch", Focus: []domain.Focus{domain.FocusUpper, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 0},
	{Name: "Slow walk and breathe", Focus: []domain.Focus{domain.FocusCardio, domain.FocusFullBody}, Equipment: domain.EquipmentBodyweight, Sets: 1, Reps: 0},
}

func (e catalogEntry) matchesFocus(f domain.Focus) bool {
	for _, cf := range e.Focus {
		if cf == f {
			return true
		}
	}
	return false
}

func (e catalogEntry) matchesEquipment(have map[domain.Equipment]struct{}) bool {
	if e.Equipment == domain.EquipmentBodyweight {
		return true
	}
	_, ok := have[e.Equipment]
	return ok
}

func (e catalogEntry) matchesLevel(l domain.ExperienceLevel) bool {
	if e.MinLevel == "" {
		return true
	}
	return levelRank[l] >= levelRank[e.MinLevel]
}
