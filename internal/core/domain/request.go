package domain

// WorkoutType discriminates the kind of plan being requested.
type WorkoutType string

const (
	WorkoutStrength    WorkoutType = "strength"
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutHIIT        WorkoutType = "hiit"
	WorkoutMobility    WorkoutType = "mobility"
	WorkoutMixed       WorkoutType = "mixed"
)

// ExperienceLevel is the user's self-reported training experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Goal is the user's primary training goal.
type Goal string

const (
	GoalStrength   Goal = "strength"
	GoalMuscleGain Goal = "muscle_gain"
	GoalFatLoss    Goal = "fat_loss"
	GoalEndurance  Goal = "endurance"
	GoalMobility   Goal = "mobility"
	GoalGeneral    Goal = "general_fitness"
)

// Focus is the body region or quality a session targets.
type Focus string

const (
	FocusFullBody Focus = "full_body"
	FocusUpper    Focus = "upper_body"
	FocusLower    Focus = "lower_body"
	FocusCore     Focus = "core"
	FocusCardio   Focus = "cardio"
)

// EnergyLevel is how much the user has in the tank today (1 = drained, 5 = peaked).
type EnergyLevel int

const (
	EnergyMin EnergyLevel = 1
	EnergyMax EnergyLevel = 5
)

// Equipment identifies a piece of available equipment.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBands      Equipment = "bands"
	EquipmentPullupBar  Equipment = "pullup_bar"
	EquipmentBench      Equipment = "bench"
	EquipmentBodyweight Equipment = "bodyweight"
)

// Profile is the user's fitness profile as collected by the caller.
type Profile struct {
	Experience  ExperienceLevel `json:"experience"   yaml:"experience"`
	Goal        Goal            `json:"goal"         yaml:"goal"`
	AgeYears    int             `json:"age_years"    yaml:"age_years"`
	WeightKg    float64         `json:"weight_kg"    yaml:"weight_kg"`
	Limitations []string        `json:"limitations"  yaml:"limitations"`
}

// Preferences captures what the user wants out of this particular session.
type Preferences struct {
	Focus           Focus       `json:"focus"            yaml:"focus"`
	DurationMinutes int         `json:"duration_minutes" yaml:"duration_minutes"`
	Energy          EnergyLevel `json:"energy"           yaml:"energy"`
	Equipment       []Equipment `json:"equipment"        yaml:"equipment"`
	Intensity       string      `json:"intensity"        yaml:"intensity"`
}

// GenerationRequest is the immutable input for one generation attempt.
// The orchestrator retains the last request to support retry/regenerate
// without re-collecting input.
type GenerationRequest struct {
	Profile      Profile           `json:"profile"`
	Preferences  Preferences       `json:"preferences"`
	WorkoutType  WorkoutType       `json:"workout_type"`
	ExtraContext map[string]string `json:"extra_context,omitempty"`
}

// CanonicalVariables is the normalized, generator-agnostic representation of
// a GenerationRequest. It is a pure function of the request, recomputed on
// each attempt.
type CanonicalVariables struct {
	Experience      ExperienceLevel
	Goal            Goal
	Focus           Focus
	WorkoutType     WorkoutType
	DurationMinutes int
	Energy          EnergyLevel
	Equipment       []Equipment
	Limitations     []string
	Extra           map[string]string
}
