// Package progress emits a piecewise-linear, monotonically increasing
// progress signal concurrently with real generation work. The signal is
// advisory only and never gates correctness.
package progress

import (
	"context"
	"time"
)

// DefaultSteps is the number of evenly spaced updates per phase.
const DefaultSteps = 8

// Func receives progress percentages in [0,100].
type Func func(percent int)

// Simulate emits steps evenly spaced updates from start to end over total,
// each after a proportional delay. It stops immediately when ctx is
// cancelled and never blocks the real work's completion; the caller spawns
// it alongside the work and cancels it when the phase ends.
func Simulate(ctx context.Context, start, end int, total time.Duration, steps int, fn Func) {
	if fn == nil || end <= start || total <= 0 {
		return
	}
	if steps <= 0 {
		steps = DefaultSteps
	}

	interval := total / time.Duration(steps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	span := end - start
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(start + span*i/steps)
		}
	}
}
