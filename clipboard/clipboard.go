// Package clipboard writes result text to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// System is the desktop clipboard (xclip, xsel or wl-copy on Linux).
type System struct{}

// Available reports whether a clipboard helper was found.
func (System) Available() bool {
	return !clipboard.Unsupported
}

// WriteAll replaces the clipboard contents with text.
func (System) WriteAll(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard for tests and headless runs.
type Memory struct {
	mu   sync.Mutex
	text string
}

// WriteAll stores text.
func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text returns the last stored text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
