// internal/driver/waiter.go
package driver

import (
	"context"
	"time"
)

// Waiter sleeps between writes so the printer can settle
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepWaiter waits on the wall clock and gives up early if ctx ends
type SleepWaiter struct{}

// Wait implements Waiter
func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// noWaiter skips all delays
type noWaiter struct{}

func (noWaiter) Wait(context.Context, time.Duration) error { return nil }

// RecordingWaiter collects requested delays without sleeping
type RecordingWaiter struct {
	Delays []time.Duration
}

// Wait implements Waiter
func (w *RecordingWaiter) Wait(_ context.Context, d time.Duration) error {
	w.Delays = append(w.Delays, d)
	return nil
}

// Total is the sum of all recorded delays
func (w *RecordingWaiter) Total() time.Duration {
	var total time.Duration
	for _, d := range w.Delays {
		total += d
	}
	return total
}
