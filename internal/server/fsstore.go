package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/egoavara/ovos-settings/internal/api"
	"github.com/egoavara/ovos-settings/internal/settings"
)

const settingsFile = "settings.json"

var (
	ErrSkillNotFound   = errors.New("skill not found")
	ErrInvalidSkillID  = errors.New("invalid skill id")
	ErrInvalidDocument = errors.New("settings must be a JSON object")
)

// SkillsRoot returns the directory holding one folder per skill:
// $XDG_CONFIG_HOME/$OVOS_CONFIG_BASE_FOLDER/skills
func SkillsRoot() string {
	base := os.Getenv("OVOS_CONFIG_BASE_FOLDER")
	if base == "" {
		base = "mycroft"
	}
	return filepath.Join(xdg.ConfigHome, base, "skills")
}

// ValidateSkillID rejects ids that would escape the skills root
func ValidateSkillID(id string) error {
	switch {
	case strings.TrimSpace(id) == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSkillID, id)
	case strings.ContainsAny(id, `/\`), strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: %q", ErrInvalidSkillID, id)
	}
	return nil
}

// FSStore reads and writes skill settings files under a root directory
type FSStore struct {
	root  string
	locks *skillLocks

	cacheMu sync.RWMutex
	cache   []api.Skill
	fresh   bool
	// gen counts invalidations; a listing read under an older gen is not cached
	gen uint64
}

// NewFSStore creates a store rooted at dir
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir, locks: newSkillLocks()}
}

// Root returns the skills directory
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) skillDir(id string) string { return filepath.Join(s.root, id) }

func (s *FSStore) settingsPath(id string) string {
	return filepath.Join(s.root, id, settingsFile)
}

// Invalidate drops the cached listing
func (s *FSStore) Invalidate() {
	s.cacheMu.Lock()
	s.cache = nil
	s.fresh = false
	s.gen++
	s.cacheMu.Unlock()
}

// List returns every skill directory that has a settings file. Skills that
// cannot be read are logged and skipped.
func (s *FSStore) List() ([]api.Skill, error) {
	s.cacheMu.RLock()
	if s.fresh {
		out := append([]api.Skill(nil), s.cache...)
		s.cacheMu.RUnlock()
		return out, nil
	}
	gen := s.gen
	s.cacheMu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []api.Skill{}, nil
		}
		return nil, err
	}

	skills := make([]api.Skill, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if _, err := os.Stat(s.settingsPath(id)); err != nil {
			continue
		}
		doc, err := s.read(id)
		if err != nil {
			slog.Warn("skipping unreadable skill", "skill", id, "err", err)
			continue
		}
		skills = append(skills, api.Skill{ID: id, Settings: doc})
	}

	s.cacheMu.Lock()
	if s.gen == gen {
		s.cache = skills
		s.fresh = true
	}
	s.cacheMu.Unlock()
	return append([]api.Skill(nil), skills...), nil
}

// Get returns the settings of one skill
func (s *FSStore) Get(id string) (settings.Value, error) {
	if err := ValidateSkillID(id); err != nil {
		return settings.Value{}, err
	}
	lk := s.locks.lock(id)
	lk.RLock()
	defer lk.RUnlock()

	if st, err := os.Stat(s.skillDir(id)); err != nil || !st.IsDir() {
		return settings.Value{}, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	return s.read(id)
}

// GetKey returns one top-level value, null when absent
func (s *FSStore) GetKey(id, key string) (settings.Value, error) {
	doc, err := s.Get(id)
	if err != nil {
		return settings.Value{}, err
	}
	v, _ := doc.Field(key)
	return v, nil
}

// Replace overwrites the settings of a skill, creating it when needed
func (s *FSStore) Replace(id string, doc settings.Value) (settings.Value, error) {
	if err := ValidateSkillID(id); err != nil {
		return settings.Value{}, err
	}
	if doc.Kind() != settings.KindObject {
		return settings.Value{}, ErrInvalidDocument
	}
	lk := s.locks.lock(id)
	lk.Lock()
	defer lk.Unlock()

	if err := s.write(id, doc); err != nil {
		return settings.Value{}, err
	}
	return doc, nil
}

// Merge folds partial into the stored settings. Objects merge key by key,
// lists are concatenated without duplicates, anything else is overwritten.
func (s *FSStore) Merge(id string, partial settings.Value) (settings.Value, error) {
	if err := ValidateSkillID(id); err != nil {
		return settings.Value{}, err
	}
	if partial.Kind() != settings.KindObject {
		return settings.Value{}, ErrInvalidDocument
	}
	lk := s.locks.lock(id)
	lk.Lock()
	defer lk.Unlock()

	cur, err := s.read(id)
	if err != nil {
		return settings.Value{}, err
	}
	merged := settings.Merge(cur, partial, true)
	if err := s.write(id, merged); err != nil {
		return settings.Value{}, err
	}
	return merged, nil
}

// read loads a settings file. A missing or empty file is an empty object.
func (s *FSStore) read(id string) (settings.Value, error) {
	raw, err := os.ReadFile(s.settingsPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return settings.EmptyObject(), nil
		}
		return settings.Value{}, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return settings.EmptyObject(), nil
	}
	doc, err := settings.Parse(raw)
	if err != nil {
		return settings.Value{}, fmt.Errorf("parse %s: %w", s.settingsPath(id), err)
	}
	return doc, nil
}

func (s *FSStore) write(id string, doc settings.Value) error {
	if err := os.MkdirAll(s.skillDir(id), 0o755); err != nil {
		return err
	}
	data, err := settings.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := atomicWrite(s.settingsPath(id), data, 0o644); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// atomicWrite writes through a tmp file and a rename so readers never see
// a partial document
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

type skillLocks struct {
	mu sync.Mutex
	m  map[string]*sync.RWMutex
}

func newSkillLocks() *skillLocks {
	return &skillLocks{m: map[string]*sync.RWMutex{}}
}

// lock returns (and lazily creates) the mutex for a skill id
func (l *skillLocks) lock(id string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lk, ok := l.m[id]; ok {
		return lk
	}
	lk := &sync.RWMutex{}
	l.m[id] = lk
	return lk
}
