package debounce

import (
	"context"
	"testing"
	"time"
)

func TestWaitPassesWhenValid(t *testing.T) {
	g := Gate{Iterations: 5, Interval: time.Millisecond}
	calls := 0

	if !g.Wait(context.Background(), func() bool { calls++; return true }) {
		t.Fatalf("Wait() = false, want true")
	}
	if calls != 5 {
		t.Fatalf("valid called %d times, want 5", calls)
	}
}

func TestWaitAbortsOnInvalidation(t *testing.T) {
	g := Gate{Iterations: 50, Interval: time.Millisecond}
	calls := 0

	ok := g.Wait(context.Background(), func() bool {
		calls++
		return calls <= 10
	})
	if ok {
		t.Fatalf("Wait() = true, want false")
	}
	if calls != 11 {
		t.Fatalf("valid called %d times, want 11 (abort on first invalid check)", calls)
	}
}

func TestWaitAbortsOnContext(t *testing.T) {
	g := Gate{Iterations: 1000, Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if g.Wait(ctx, func() bool { return true }) {
		t.Fatalf("Wait() = true with cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Wait() took %v after cancellation", elapsed)
	}
}

func TestDefaults(t *testing.T) {
	if got := Default().Window(); got != 500*time.Millisecond {
		t.Fatalf("Default().Window() = %v, want 500ms", got)
	}
	if got := (Gate{}).Window(); got != 500*time.Millisecond {
		t.Fatalf("zero Gate Window() = %v, want 500ms", got)
	}
}
