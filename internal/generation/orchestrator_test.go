package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/coach/internal/core/domain"
)

// fakeProvider scripts remote generator behavior for orchestrator tests.
type fakeProvider struct {
	readyErr error
	generate func(ctx context.Context, vars domain.CanonicalVariables) (*domain.GeneratedWorkout, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Ready(ctx context.Context) error { return f.readyErr }

func (f *fakeProvider) Generate(ctx context.Context, vars domain.CanonicalVariables, _ []domain.Recommendation, _ string) (*domain.GeneratedWorkout, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.generate(ctx, vars)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func externalWorkout() *domain.GeneratedWorkout {
	return &domain.GeneratedWorkout{
		Title:           "Remote plan",
		DurationMinutes: 45,
		WarmUp:          domain.WorkoutPhase{Name: "Warm-up", DurationMinutes: 7, Exercises: []domain.Exercise{{Name: "Jumping jacks", Sets: 1, Reps: 30}}},
		Main:            domain.WorkoutPhase{Name: "Main", DurationMinutes: 34, Exercises: []domain.Exercise{{Name: "Push-up", Sets: 3, Reps: 15}}},
		CoolDown:        domain.WorkoutPhase{Name: "Cool-down", DurationMinutes: 4, Exercises: []domain.Exercise{{Name: "Quad stretch", Sets: 1, DurationSec: 30}}},
		Origin:          domain.OriginExternal,
	}
}

func transientErr() error {
	return &domain.ClassifiedError{Code: domain.ErrNetwork, Message: "down", Retryable: true, Fallback: true}
}

func fastPacing() Pacing {
	return Pacing{
		InternalPhase:  time.Millisecond,
		ExternalPhase:  time.Millisecond,
		RetryPauseBase: time.Millisecond,
	}
}

func fastOpts() Options {
	return Options{
		Timeout:       100 * time.Millisecond,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		UseExternalAI: true,
		UseFallback:   true,
		ProgressSteps: 2,
	}
}

func validRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Profile: domain.Profile{
			Experience: domain.ExperienceIntermediate,
			Goal:       domain.GoalStrength,
		},
		Preferences: domain.Preferences{
			Focus:           domain.FocusFullBody,
			DurationMinutes: 45,
			Energy:          3,
		},
		WorkoutType: domain.WorkoutStrength,
	}
}

func classifiedCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var ce *domain.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not classified", err)
	}
	return ce.Code
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestGenerateInternalOnly(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	opts := fastOpts()
	opts.UseExternalAI = false

	w, err := o.Generate(context.Background(), validRequest(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !w.StructurallyValid() {
		t.Error("internal workout is structurally invalid")
	}
	if w.Origin != domain.OriginInternal {
		t.Errorf("origin = %v, want internal", w.Origin)
	}
	if w.ID == "" || w.GeneratedAt.IsZero() {
		t.Error("enhancement did not stamp id and timestamp")
	}

	snap := o.Snapshot()
	if snap.Status != domain.StatusComplete || snap.Progress != 100 {
		t.Errorf("snapshot = %v/%d, want complete/100", snap.Status, snap.Progress)
	}
	if snap.Error != nil {
		t.Errorf("completed snapshot carries error %v", snap.Error)
	}
	if snap.LastGenerated.IsZero() {
		t.Error("LastGenerated not set")
	}
}

func TestGenerateValidationFailsBeforeProvider(t *testing.T) {
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		return externalWorkout(), nil
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	_, err := o.Generate(context.Background(), domain.GenerationRequest{}, fastOpts())
	if code := classifiedCode(t, err); code != domain.ErrInsufficientData {
		t.Errorf("code = %v, want %v", code, domain.ErrInsufficientData)
	}
	if p.callCount() != 0 {
		t.Errorf("provider called %d times before validation passed", p.callCount())
	}
	if snap := o.Snapshot(); snap.Status != domain.StatusError || !snap.HasError() {
		t.Errorf("snapshot = %+v, want error state", snap)
	}
}

func TestGenerateExternalSuccess(t *testing.T) {
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		return externalWorkout(), nil
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	w, err := o.Generate(context.Background(), validRequest(), fastOpts())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if w.Origin != domain.OriginExternal {
		t.Errorf("origin = %v, want external", w.Origin)
	}
	if w.Confidence != 0.85 {
		t.Errorf("confidence = %v, want external default 0.85", w.Confidence)
	}
	if p.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", p.callCount())
	}
}

func TestGenerateFallsBackAfterExhaustion(t *testing.T) {
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		return nil, transientErr()
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	opts := fastOpts()
	opts.RetryAttempts = 3

	w, err := o.Generate(context.Background(), validRequest(), opts)
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if w.Origin != domain.OriginInternal {
		t.Errorf("origin = %v, want internal fallback", w.Origin)
	}
	if w.Confidence >= 0.7 {
		t.Errorf("fallback confidence = %v, want below 0.7", w.Confidence)
	}
	if p.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3 before falling back", p.callCount())
	}
	if snap := o.Snapshot(); snap.Status != domain.StatusComplete {
		t.Errorf("status = %v, want complete", snap.Status)
	}
}

func TestGenerateFallbackDisabled(t *testing.T) {
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		return nil, transientErr()
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	opts := fastOpts()
	opts.UseFallback = false

	w, err := o.Generate(context.Background(), validRequest(), opts)
	if w != nil {
		t.Error("got workout with fallback disabled")
	}
	if code := classifiedCode(t, err); code != domain.ErrNetwork {
		t.Errorf("code = %v, want %v", code, domain.ErrNetwork)
	}
	if snap := o.Snapshot(); snap.Status != domain.StatusError {
		t.Errorf("status = %v, want error", snap.Status)
	}
}

func TestGenerateProviderUnready(t *testing.T) {
	p := &fakeProvider{
		readyErr: errors.New("health check failed"),
		generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
			return externalWorkout(), nil
		},
	}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	_, err := o.Generate(context.Background(), validRequest(), fastOpts())
	if code := classifiedCode(t, err); code != domain.ErrServiceUnavailable {
		t.Errorf("code = %v, want %v", code, domain.ErrServiceUnavailable)
	}
	if p.callCount() != 0 {
		t.Errorf("provider generate called despite failed readiness check")
	}
}

func TestCancelDuringGeneration(t *testing.T) {
	p := &fakeProvider{generate: func(ctx context.Context, _ domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	done := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), validRequest(), fastOpts())
		done <- err
	}()

	waitFor(t, "provider call", func() bool { return p.callCount() > 0 })
	o.Cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("cancelled attempt returned no error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Generate did not return after Cancel")
	}

	snap := o.Snapshot()
	if snap.Status != domain.StatusCancelled {
		t.Errorf("status = %v, want cancelled", snap.Status)
	}
	if snap.Error != nil {
		t.Errorf("cancelled snapshot carries error %v", snap.Error)
	}
	if snap.Message == "" {
		t.Error("cancelled snapshot missing message")
	}
}

func TestCancelWhenIdleIsNoop(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	o.Cancel()
	if snap := o.Snapshot(); snap.Status != domain.StatusIdle {
		t.Errorf("status = %v, want idle", snap.Status)
	}
}

func TestSupersedingGeneration(t *testing.T) {
	p := &fakeProvider{generate: func(ctx context.Context, _ domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Generate(context.Background(), validRequest(), fastOpts())
		firstDone <- err
	}()
	waitFor(t, "first provider call", func() bool { return p.callCount() > 0 })

	opts := fastOpts()
	opts.UseExternalAI = false
	w2, err := o.Generate(context.Background(), validRequest(), opts)
	if err != nil {
		t.Fatalf("superseding Generate failed: %v", err)
	}

	if err := <-firstDone; err == nil {
		t.Error("superseded attempt returned no error")
	}

	snap := o.Snapshot()
	if snap.Status != domain.StatusComplete {
		t.Errorf("status = %v, want complete", snap.Status)
	}
	if snap.Workout == nil || snap.Workout.ID != w2.ID {
		t.Error("snapshot does not hold the superseding attempt's workout")
	}
}

func TestRetryWithoutPreviousRequest(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	_, err := o.Retry(context.Background())
	if code := classifiedCode(t, err); code != domain.ErrInvalidData {
		t.Errorf("code = %v, want %v", code, domain.ErrInvalidData)
	}
}

func TestRetryLimit(t *testing.T) {
	// A retryable failure with no fallback path keeps every attempt failing.
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		return nil, &domain.ClassifiedError{Code: domain.ErrAPI, Message: "broken", Retryable: true}
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	if _, err := o.Generate(context.Background(), validRequest(), fastOpts()); err == nil {
		t.Fatal("expected initial failure")
	}

	for i := 1; i <= MaxRetries; i++ {
		if _, err := o.Retry(context.Background()); err == nil {
			t.Fatalf("retry %d unexpectedly succeeded", i)
		}
		if snap := o.Snapshot(); snap.RetryCount != i {
			t.Fatalf("retry count = %d after retry %d", snap.RetryCount, i)
		}
	}

	_, err := o.Retry(context.Background())
	var ce *domain.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("error %v is not classified", err)
	}
	if ce.Code != domain.ErrGenerationFailed || ce.Retryable {
		t.Errorf("exhausted retry = %+v, want non-retryable %v", ce, domain.ErrGenerationFailed)
	}
	if calls := p.callCount(); calls != 1+MaxRetries {
		t.Errorf("provider calls = %d, want %d", calls, 1+MaxRetries)
	}
}

func TestRetrySuccessResetsCount(t *testing.T) {
	var fail = true
	p := &fakeProvider{generate: func(context.Context, domain.CanonicalVariables) (*domain.GeneratedWorkout, error) {
		if fail {
			return nil, &domain.ClassifiedError{Code: domain.ErrAPI, Message: "broken", Retryable: true}
		}
		return externalWorkout(), nil
	}}
	o := New(Config{Provider: p, Pacing: fastPacing()})

	opts := fastOpts()
	opts.UseFallback = false
	if _, err := o.Generate(context.Background(), validRequest(), opts); err == nil {
		t.Fatal("expected initial failure")
	}

	fail = false
	w, err := o.Retry(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if w == nil {
		t.Fatal("retry returned no workout")
	}

	snap := o.Snapshot()
	if snap.RetryCount != 0 {
		t.Errorf("retry count = %d after success, want 0", snap.RetryCount)
	}
	if snap.Status != domain.StatusComplete {
		t.Errorf("status = %v, want complete", snap.Status)
	}
}

func TestRegenerateWithoutPreviousRequest(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	_, err := o.Regenerate(context.Background(), fastOpts())
	if code := classifiedCode(t, err); code != domain.ErrInvalidData {
		t.Errorf("code = %v, want %v", code, domain.ErrInvalidData)
	}
}

func TestRegenerateProducesFreshWorkout(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	opts := fastOpts()
	opts.UseExternalAI = false

	w1, err := o.Generate(context.Background(), validRequest(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	w2, err := o.Regenerate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if w1.ID == w2.ID {
		t.Error("regeneration reused the previous workout instance")
	}
}

func TestFailedAttemptKeepsPreviousResult(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	opts := fastOpts()
	opts.UseExternalAI = false

	w1, err := o.Generate(context.Background(), validRequest(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := o.Generate(context.Background(), domain.GenerationRequest{}, opts); err == nil {
		t.Fatal("expected failure for empty request")
	}

	snap := o.Snapshot()
	if snap.Status != domain.StatusError {
		t.Errorf("status = %v, want error", snap.Status)
	}
	if snap.Workout == nil || snap.Workout.ID != w1.ID {
		t.Error("failed attempt discarded the previous successful result")
	}
}

func TestProgressMonotone(t *testing.T) {
	var mu sync.Mutex
	var values []int
	o := New(Config{
		Pacing: fastPacing(),
		OnProgress: func(p int) {
			mu.Lock()
			values = append(values, p)
			mu.Unlock()
		},
	})

	opts := fastOpts()
	opts.UseExternalAI = false
	if _, err := o.Generate(context.Background(), validRequest(), opts); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(values) == 0 {
		t.Fatal("no progress updates")
	}
	prev := -1
	for _, p := range values {
		if p < prev {
			t.Fatalf("progress regressed: %v", values)
		}
		prev = p
	}
	if values[len(values)-1] != 100 {
		t.Errorf("final progress = %d, want 100", values[len(values)-1])
	}
}

func TestClearResetsState(t *testing.T) {
	o := New(Config{Pacing: fastPacing()})
	opts := fastOpts()
	opts.UseExternalAI = false

	if _, err := o.Generate(context.Background(), validRequest(), opts); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	o.Clear()

	snap := o.Snapshot()
	if snap.Status != domain.StatusIdle || snap.Workout != nil || snap.Progress != 0 {
		t.Errorf("snapshot after Clear = %+v, want pristine idle", snap)
	}
	if _, err := o.Retry(context.Background()); err == nil {
		t.Error("Retry succeeded after Clear dropped the remembered request")
	}
}
