package diag

import (
	"slices"
	"sync"
)

// Sink collects diagnostics from concurrent reporters.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends diagnostics.
func (s *Sink) Add(ds ...Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, ds...)
	s.mu.Unlock()
}

// Len returns the number of collected diagnostics.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Items returns a copy of the collected diagnostics.
func (s *Sink) Items() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}
