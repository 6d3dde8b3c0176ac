package exclusion

import (
	"path/filepath"
	"strings"
	"sync"
)

// Set is the growable collection of pruned directories for one run. It
// holds full paths (and caller-supplied path prefixes) plus the bare names
// that have been pruned, so repeated folder names can be reported compactly.
type Set struct {
	mu    sync.RWMutex
	paths map[string]bool
	names map[string]int
	order []string
}

// NewSet returns a Set seeded with path prefixes.
func NewSet(prefixes ...string) *Set {
	s := &Set{
		paths: make(map[string]bool),
		names: make(map[string]int),
	}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			s.addPath(filepath.Clean(p))
		}
	}
	return s
}

// Add records a pruned directory and counts its base name.
func (s *Set) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean := filepath.Clean(path)
	s.addPath(clean)
	s.names[filepath.Base(clean)]++
}

func (s *Set) addPath(clean string) {
	if s.paths[clean] {
		return
	}
	s.paths[clean] = true
	s.order = append(s.order, clean)
}

// Contains reports whether path is a recorded path or lies beneath one.
func (s *Set) Contains(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for p := filepath.Clean(path); ; {
		if s.paths[p] {
			return true
		}
		parent := filepath.Dir(p)
		if parent == p {
			return false
		}
		p = parent
	}
}

// Seen returns how many times a directory named name has been pruned.
func (s *Set) Seen(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[name]
}

// Paths returns every recorded path in insertion order.
func (s *Set) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of recorded paths.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
