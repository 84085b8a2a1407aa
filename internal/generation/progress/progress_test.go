package progress

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []int
}

func (r *recorder) record(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, p)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func TestSimulateEmitsMonotoneSteps(t *testing.T) {
	var rec recorder
	Simulate(context.Background(), 50, 90, 20*time.Millisecond, 4, rec.record)

	got := rec.snapshot()
	if len(got) != 4 {
		t.Fatalf("got %d updates, want 4: %v", len(got), got)
	}
	prev := 50
	for _, p := range got {
		if p <= prev {
			t.Errorf("progress not strictly increasing: %v", got)
			break
		}
		prev = p
	}
	if got[len(got)-1] != 90 {
		t.Errorf("final update = %d, want 90", got[len(got)-1])
	}
}

func TestSimulateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var rec recorder
	done := make(chan struct{})
	go func() {
		Simulate(ctx, 0, 40, time.Hour, 8, rec.record)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Simulate did not stop after cancellation")
	}
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("updates after immediate cancel: %v", got)
	}
}

func TestSimulateDegenerateInputs(t *testing.T) {
	// None of these may emit or block.
	Simulate(context.Background(), 0, 40, time.Millisecond, 4, nil)
	Simulate(context.Background(), 40, 40, time.Millisecond, 4, func(int) { t.Error("emitted for empty span") })
	Simulate(context.Background(), 0, 40, 0, 4, func(int) { t.Error("emitted for zero duration") })
}
