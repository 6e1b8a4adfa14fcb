package service

import "sync"

// SelectionService tracks which devices take part in the shutdown sequence.
// It lives for the session only.
type SelectionService struct {
	mu       sync.RWMutex
	selected map[string]bool
}

func NewSelectionService() *SelectionService {
	return &SelectionService{selected: make(map[string]bool)}
}

// Toggle flips the flag and returns the new value.
func (s *SelectionService) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[id] = !s.selected[id]
	return s.selected[id]
}

func (s *SelectionService) Set(id string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected[id] = true
		return
	}
	delete(s.selected, id)
}

func (s *SelectionService) Selected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// Snapshot returns a copy holding only selected ids.
func (s *SelectionService) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.selected))
	for id, ok := range s.selected {
		if ok {
			out[id] = true
		}
	}
	return out
}

func (s *SelectionService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
}
