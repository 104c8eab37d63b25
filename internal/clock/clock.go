// Package clock holds the cancellable waits every worker suspends in.
package clock

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first. It reports
// whether the full duration elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Uniform returns a duration drawn uniformly from [lo, hi]. rnd must return
// values in [0, 1).
func Uniform(lo, hi time.Duration, rnd func() float64) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rnd()*float64(hi-lo+1))
}
