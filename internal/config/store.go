package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/systune-dev/systune/internal/apperrors"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

// Store holds all loaded profile definitions, keyed by id.
// Loading happens once; afterwards the store is read-only and safe for
// concurrent readers.
type Store struct {
	mu       sync.RWMutex
	dirs     []string
	profiles map[string]*Definition
	order    []string
}

// NewStore creates a store over the given profile directories. Directories
// are scanned in order and later directories shadow earlier ones, so host
// overrides (/etc) win over distribution profiles (/usr/lib) and both win
// over the built-in defaults.
func NewStore(dirs ...string) *Store {
	return &Store{
		dirs:     dirs,
		profiles: make(map[string]*Definition),
	}
}

// Load reads the built-in defaults and every configured directory.
// Missing directories are skipped; malformed definitions fail the load.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = make(map[string]*Definition)
	s.order = nil

	if err := s.loadBuiltin(); err != nil {
		return err
	}

	for _, dir := range s.dirs {
		if err := s.loadDir(dir); err != nil {
			return err
		}
	}

	return nil
}

// loadBuiltin loads the profiles compiled into the binary.
func (s *Store) loadBuiltin() error {
	entries, err := fs.ReadDir(builtinProfiles, "profiles")
	if err != nil {
		return fmt.Errorf("failed to read built-in profiles: %w", err)
	}

	for _, entry := range entries {
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		file, err := builtinProfiles.Open("profiles/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to open built-in profile %s: %w", id, err)
		}
		def, err := LoadDefinitionFromReader(file, id)
		file.Close()
		if err != nil {
			return err
		}
		s.put(def)
	}

	return nil
}

// loadDir loads every profile found in one directory. A profile is either
// <dir>/<id>/profile.yaml or a flat <dir>/<id>.yaml file.
func (s *Store) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read profile directory %s: %w", dir, err)
	}

	// Deterministic load order regardless of filesystem.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		var id, path string
		switch {
		case entry.IsDir():
			id = entry.Name()
			path = filepath.Join(dir, id, "profile.yaml")
			if _, err := os.Stat(path); err != nil {
				continue
			}
		case strings.HasSuffix(entry.Name(), ".yaml") || strings.HasSuffix(entry.Name(), ".yml"):
			id = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			path = filepath.Join(dir, entry.Name())
		default:
			continue
		}

		def, err := LoadDefinition(path, id)
		if err != nil {
			return err
		}
		s.put(def)
	}

	return nil
}

// put inserts or shadows a definition, keeping the original listing position
// when a later directory overrides an id.
func (s *Store) put(def *Definition) {
	if _, exists := s.profiles[def.ID]; !exists {
		s.order = append(s.order, def.ID)
	}
	s.profiles[def.ID] = def
}

// List returns summaries of all loaded profiles in load order.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		def := s.profiles[id]
		out = append(out, Summary{ID: def.ID, Summary: def.Meta.Summary, Parent: def.Meta.Parent})
	}
	return out
}

// Get returns the definition for id.
func (s *Store) Get(id string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.profiles[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(id)
	}
	return def, nil
}

// Has reports whether a profile with the given id is loaded.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.profiles[id]
	return ok
}

// Len returns the number of loaded profiles. The resolver uses this as the
// bound for its cycle guard.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.profiles)
}
