// Package assets loads studio models and their sequence group files from the
// game directories, and numbers loaded models for the renderer.
package assets

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// ErrNotFound is returned when no search path holds a file.
var ErrNotFound = errors.New("file not found")

// Manager reads files from an ordered list of game directories and keeps
// the parsed models. Model indices start at 1; 0 means no model.
type Manager struct {
	dirs  []string
	cache *Cache

	mu      sync.RWMutex
	models  []*studio.Model
	byPath  map[string]int
	missing map[string]bool
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache:   NewCache(),
		byPath:  make(map[string]int),
		missing: make(map[string]bool),
	}
}

// AddSearchPath adds a game directory.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchPath(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// normalize turns a game path into its lookup key: forward slashes, lower
// case, no leading slash.
func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(strings.TrimPrefix(path.Clean(p), "/"))
}

// Load reads a file by game path.
func (m *Manager) Load(name string) ([]byte, error) {
	key := normalize(name)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.dirs) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.dirs[i], filepath.FromSlash(key)))
		if err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, name)
}

// LoadModel parses a model by game path and attaches its external sequence
// groups. A model already loaded returns its existing index. Missing group
// files are logged; their sequences play in the bind pose.
func (m *Manager) LoadModel(name string) (int, *studio.Model, error) {
	key := normalize(name)

	m.mu.RLock()
	if idx, ok := m.byPath[key]; ok {
		mdl := m.models[idx-1]
		m.mu.RUnlock()
		return idx, mdl, nil
	}
	m.mu.RUnlock()

	data, err := m.Load(key)
	if err != nil {
		return 0, nil, err
	}
	mdl, err := studio.Parse(data)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "parsing %s", key)
	}
	mdl.Path = key

	for g := 1; g < len(mdl.Groups); g++ {
		m.loadGroup(mdl, g)
	}

	m.mu.Lock()
	m.models = append(m.models, mdl)
	idx := len(m.models)
	m.byPath[key] = idx
	m.mu.Unlock()

	logger.Info("loaded model",
		zap.String("path", key),
		zap.Int("index", idx),
		zap.Int("bones", len(mdl.Bones)),
		zap.Int("sequences", len(mdl.Sequences)),
	)
	return idx, mdl, nil
}

func (m *Manager) loadGroup(mdl *studio.Model, g int) {
	name := normalize(mdl.Groups[g].Name)
	data, err := m.Load(name)
	if err == nil {
		err = mdl.LoadSequenceGroup(g, data)
	}
	if err == nil {
		return
	}

	m.mu.Lock()
	first := !m.missing[name]
	m.missing[name] = true
	m.mu.Unlock()
	if first {
		logger.Warn("sequence group unavailable",
			zap.String("model", mdl.Path),
			zap.String("group", name),
			zap.Error(err),
		)
	}
}

// Model returns the model at index, or nil.
func (m *Manager) Model(index int) *studio.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 1 || index > len(m.models) {
		return nil
	}
	return m.models[index-1]
}

// Models returns every loaded model in index order.
func (m *Manager) Models() []*studio.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*studio.Model(nil), m.models...)
}

// Count returns the number of loaded models.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.models)
}

// Close drops every model and cached file.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.models = nil
	m.byPath = make(map[string]int)
	m.missing = make(map[string]bool)
	m.cache.Clear()
}

// Cache keeps raw file contents by game path.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
