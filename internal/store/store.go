package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/egoavara/ovos-settings/internal/settings"
)

var (
	// ErrNoHistory is returned by Undo when there is no snapshot
	ErrNoHistory = errors.New("nothing to undo")
	// ErrUnknownSkill is returned for skills that were never loaded
	ErrUnknownSkill = errors.New("skill not loaded")
)

// Store holds the current settings document of each skill and at most one
// earlier document per skill for undo.
type Store struct {
	mu       sync.RWMutex
	current  map[string]settings.Value
	previous map[string]settings.Value
	revision map[string]uint64
}

// New creates an empty store
func New() *Store {
	return &Store{
		current:  make(map[string]settings.Value),
		previous: make(map[string]settings.Value),
		revision: make(map[string]uint64),
	}
}

// Load installs doc as the current document and drops any undo snapshot
func (s *Store) Load(skill string, doc settings.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current[skill] = doc
	delete(s.previous, skill)
	s.revision[skill]++
}

// Get returns the current document
func (s *Store) Get(skill string) (settings.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.current[skill]
	return doc, ok
}

// Skills returns the loaded skill ids in ascending order
func (s *Store) Skills() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.current))
	for id := range s.current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Revision increases on every change to a skill's current document
func (s *Store) Revision(skill string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision[skill]
}

// Apply runs fn on the current document. On success the prior document
// becomes the undo snapshot, replacing any older one, and the result is
// installed. On failure nothing changes.
func (s *Store) Apply(skill string, fn func(settings.Value) (settings.Value, error)) (settings.Value, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.current[skill]
	if !ok {
		return settings.Value{}, 0, ErrUnknownSkill
	}
	next, err := fn(cur)
	if err != nil {
		return settings.Value{}, 0, err
	}

	s.previous[skill] = cur
	s.current[skill] = next
	s.revision[skill]++
	return next, s.revision[skill], nil
}

// Undo restores the snapshot and clears it. There is no redo.
func (s *Store) Undo(skill string) (settings.Value, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.previous[skill]
	if !ok {
		return settings.Value{}, 0, ErrNoHistory
	}
	delete(s.previous, skill)
	s.current[skill] = prev
	s.revision[skill]++
	return prev, s.revision[skill], nil
}

// CanUndo reports whether a snapshot exists
func (s *Store) CanUndo(skill string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.previous[skill]
	return ok
}

// Reconcile replaces the current document with the server's copy when rev
// is still the latest revision. History is untouched. A deep-equal copy is
// ignored so local key order survives. It reports whether the store changed.
func (s *Store) Reconcile(skill string, rev uint64, doc settings.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision[skill] != rev {
		return false
	}
	cur, ok := s.current[skill]
	if !ok || settings.Equal(cur, doc) {
		return false
	}
	s.current[skill] = doc
	s.revision[skill]++
	return true
}
