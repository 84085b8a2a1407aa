package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/coach/internal/control"
	"github.com/vietddude/coach/internal/core/domain"
)

var (
	genExperience  string
	genGoal        string
	genFocus       string
	genType        string
	genDuration    int
	genEnergy      int
	genEquipment   []string
	genLimitations []string
	genNoExternal  bool
	genJSON        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single workout and print it",
	Run:   runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genExperience, "experience", "beginner", "experience level (beginner, intermediate, advanced)")
	generateCmd.Flags().StringVar(&genGoal, "goal", "general_fitness", "training goal")
	generateCmd.Flags().StringVar(&genFocus, "focus", "full_body", "session focus")
	generateCmd.Flags().StringVar(&genType, "type", "mixed", "workout type")
	generateCmd.Flags().IntVar(&genDuration, "duration", 45, "duration in minutes")
	generateCmd.Flags().IntVar(&genEnergy, "energy", 3, "energy level 1-5")
	generateCmd.Flags().StringSliceVar(&genEquipment, "equipment", nil, "available equipment (repeatable)")
	generateCmd.Flags().StringSliceVar(&genLimitations, "limitations", nil, "physical limitations (repeatable)")
	generateCmd.Flags().BoolVar(&genNoExternal, "no-external", false, "skip the external provider and use templates only")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the full plan as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()

	// One-shot runs skip persistence and caching.
	svc, err := control.NewService(ctx, control.Config{Generator: cfg.Generator}, slog.Default())
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	equipment := make([]domain.Equipment, 0, len(genEquipment))
	for _, e := range genEquipment {
		equipment = append(equipment, domain.Equipment(e))
	}

	req := domain.GenerationRequest{
		Profile: domain.Profile{
			Experience:  domain.ExperienceLevel(genExperience),
			Goal:        domain.Goal(genGoal),
			Limitations: genLimitations,
		},
		Preferences: domain.Preferences{
			Focus:           domain.Focus(genFocus),
			DurationMinutes: genDuration,
			Energy:          domain.EnergyLevel(genEnergy),
			Equipment:       equipment,
		},
		WorkoutType: domain.WorkoutType(genType),
	}

	opts := svc.Options()
	if genNoExternal {
		opts.UseExternalAI = false
	}

	workout, _, err := svc.GenerateWorkout(ctx, req, opts)
	if err != nil {
		ce := domain.Classify(err, domain.ErrGenerationFailed)
		slog.Error("Generation failed", "code", ce.Code, "error", err)
		if ce.RecoveryHint != "" {
			slog.Info(ce.RecoveryHint)
		}
		os.Exit(1)
	}

	if genJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(workout)
		return
	}

	printWorkout(workout)
}

func printWorkout(w *domain.GeneratedWorkout) {
	fmt.Printf("%s (%d min, %s)\n", w.Title, w.DurationMinutes, w.Origin)
	if w.Description != "" {
		fmt.Println(w.Description)
	}
	for _, phase := range w.Phases() {
		fmt.Printf("\n%s (%d min)\n", phase.Name, phase.DurationMinutes)
		for _, ex := range phase.Exercises {
			switch {
			case ex.DurationSec > 0:
				fmt.Printf("  - %s: %ds\n", ex.Name, ex.DurationSec)
			case ex.Sets > 0:
				fmt.Printf("  - %s: %d x %d\n", ex.Name, ex.Sets, ex.Reps)
			default:
				fmt.Printf("  - %s\n", ex.Name)
			}
		}
	}
	if len(w.SafetyReminders) > 0 {
		fmt.Println()
		for _, s := range w.SafetyReminders {
			fmt.Printf("! %s\n", s)
		}
	}
}
