package locator

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	namedcache "github.com/karupanerura/named-cache"
)

// Manager resolves cache names to caches.
//
// An exact registration wins. Otherwise the pattern with the longest matching prefix wins, then the default.
// Pattern and default hits return a cache whose Name differs from the requested name.
type Manager struct {
	mu       sync.RWMutex
	caches   map[string]*namedcache.Cache
	patterns map[string]*namedcache.Cache
	fallback *namedcache.Cache
}

var _ namedcache.Locator = (*Manager)(nil)

// New returns an empty manager.
func New() *Manager {
	return &Manager{
		caches:   map[string]*namedcache.Cache{},
		patterns: map[string]*namedcache.Cache{},
	}
}

// Register adds or replaces the cache under its own name.
func (m *Manager) Register(c *namedcache.Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[c.Name()] = c
}

// RegisterPattern serves c for every name starting with prefix that has no exact registration.
func (m *Manager) RegisterPattern(prefix string, c *namedcache.Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[prefix] = c
}

// SetDefault sets the cache served for names nothing else matches. Nil removes it.
func (m *Manager) SetDefault(c *namedcache.Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = c
}

// Remove drops the exact registration of name and returns the removed cache.
func (m *Manager) Remove(name string) (*namedcache.Cache, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.caches[name]
	delete(m.caches, name)
	return c, ok
}

// GetCache returns the cache serving name.
func (m *Manager) GetCache(name string) (*namedcache.Cache, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.caches[name]; ok {
		return c, true
	}

	var (
		best    *namedcache.Cache
		bestLen = -1
	)
	for prefix, c := range m.patterns {
		if len(prefix) > bestLen && strings.HasPrefix(name, prefix) {
			best, bestLen = c, len(prefix)
		}
	}
	if best != nil {
		return best, true
	}

	if m.fallback != nil {
		return m.fallback, true
	}
	return nil, false
}

// Names returns the sorted names of the exactly registered caches.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close closes every registered cache, including pattern and default caches.
func (m *Manager) Close() error {
	m.mu.RLock()
	seen := map[*namedcache.Cache]struct{}{}
	all := make([]*namedcache.Cache, 0, len(m.caches)+len(m.patterns)+1)
	add := func(c *namedcache.Cache) {
		if _, ok := seen[c]; ok || c == nil {
			return
		}
		seen[c] = struct{}{}
		all = append(all, c)
	}
	for _, c := range m.caches {
		add(c)
	}
	for _, c := range m.patterns {
		add(c)
	}
	add(m.fallback)
	m.mu.RUnlock()

	var errs []error
	for _, c := range all {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
