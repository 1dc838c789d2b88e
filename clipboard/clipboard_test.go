package clipboard

import (
	"sync"
	"testing"
)

func TestMemoryOverwrites(t *testing.T) {
	m := &Memory{}
	if got := m.Text(); got != "" {
		t.Fatalf("Text() = %q, want empty", got)
	}
	_ = m.WriteAll("first")
	_ = m.WriteAll("second")
	if got := m.Text(); got != "second" {
		t.Fatalf("Text() = %q, want second", got)
	}
}

func TestMemoryConcurrentWrites(t *testing.T) {
	m := &Memory{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WriteAll("x")
		}()
	}
	wg.Wait()
	if got := m.Text(); got != "x" {
		t.Fatalf("Text() = %q, want x", got)
	}
}
