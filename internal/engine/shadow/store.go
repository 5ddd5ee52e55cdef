package shadow

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// ModelName returns the key a model's topology is stored under.
func ModelName(m *studio.Model) string {
	if m.Path != "" {
		return m.Path
	}
	return m.Header.Name
}

// Store holds the topology of every model seen so far, keyed by model name.
// A model's cache file is read at most once; a freshly built topology is
// written back to the cache directory. Not safe for concurrent use.
type Store struct {
	dir     string
	entries map[string]*Topology
	read    map[string]bool
}

// NewStore creates a store backed by cache files under dir. An empty dir
// disables the cache files.
func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		entries: make(map[string]*Topology),
		read:    make(map[string]bool),
	}
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Len returns the number of models with topology.
func (s *Store) Len() int {
	return len(s.entries)
}

// Lookup returns the stored topology of name.
func (s *Store) Lookup(name string) (*Topology, bool) {
	t, ok := s.entries[name]
	return t, ok && t != nil
}

// Insert stores t under name, replacing any previous entry.
func (s *Store) Insert(name string, t *Topology) {
	s.entries[name] = t
}

// Ensure returns the topology of m, reading its cache file on first use or
// building and writing it. It returns nil when m has no submodels.
func (s *Store) Ensure(m *studio.Model) *Topology {
	name := ModelName(m)
	if t, ok := s.entries[name]; ok {
		return t
	}

	if t := s.readCache(name); t != nil {
		s.entries[name] = t
		return t
	}

	t, err := Build(m)
	if err != nil {
		logger.Debug("no shadow topology", zap.String("model", name), zap.Error(err))
		s.entries[name] = nil
		return nil
	}
	s.entries[name] = t
	s.writeCache(name, t)
	return t
}

func (s *Store) readCache(name string) *Topology {
	if s.dir == "" || s.read[name] {
		return nil
	}
	s.read[name] = true

	path := CachePath(s.dir, name)
	t, err := LoadTopology(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring shadow cache", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	logger.Info("loaded shadow topology", zap.String("model", name), zap.String("path", path))
	return t
}

func (s *Store) writeCache(name string, t *Topology) {
	if s.dir == "" {
		return
	}
	path := CachePath(s.dir, name)
	if err := SaveTopology(path, t); err != nil {
		logger.Warn("failed to write shadow cache", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("wrote shadow topology", zap.String("model", name), zap.String("path", path))
}

// WriteAll makes sure every model has topology, building and writing cache
// files for those that have none yet.
func (s *Store) WriteAll(models []*studio.Model) int {
	n := 0
	for _, m := range models {
		if m == nil {
			continue
		}
		if s.Ensure(m) != nil {
			n++
		}
	}
	return n
}
