// Package debounce delays expensive work so that a live-query host can
// invalidate a query (the user kept typing) before it reaches the network.
package debounce

import (
	"context"
	"time"
)

const (
	// DefaultIterations is the number of validity checks per window.
	DefaultIterations = 50
	// DefaultInterval is the delay before each check.
	DefaultInterval = 10 * time.Millisecond
)

// Gate is a bounded polling window: Iterations checks, one per Interval.
type Gate struct {
	Iterations int
	Interval   time.Duration
}

// Default returns the 50 x 10ms gate (about half a second).
func Default() Gate {
	return Gate{Iterations: DefaultIterations, Interval: DefaultInterval}
}

func (g Gate) effectiveIterations() int {
	if g.Iterations > 0 {
		return g.Iterations
	}
	return DefaultIterations
}

func (g Gate) effectiveInterval() time.Duration {
	if g.Interval > 0 {
		return g.Interval
	}
	return DefaultInterval
}

// Window returns the total time Wait blocks when the query stays valid.
func (g Gate) Window() time.Duration {
	return time.Duration(g.effectiveIterations()) * g.effectiveInterval()
}

// Wait blocks for the gate's window, calling valid after every tick.
// It returns false as soon as valid reports false or ctx is done, and true
// once the whole window has elapsed with the query still valid.
func (g Gate) Wait(ctx context.Context, valid func() bool) bool {
	ticker := time.NewTicker(g.effectiveInterval())
	defer ticker.Stop()

	for i := 0; i < g.effectiveIterations(); i++ {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		if !valid() {
			return false
		}
	}
	return true
}
