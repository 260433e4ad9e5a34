package namedcache

import (
	"time"

	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/storage/memstorage"
)

// Storage is the expiration-aware key-value primitive behind a Cache.
// Implementations must be thread-safe.
type Storage interface {
	// Get returns the value stored under key.
	// It must report a missing or expired key as not found.
	Get(key string) (any, bool)

	// Set stores value under key with the resolved item policy.
	// If the key already exists, it should overwrite the existing value.
	Set(key string, value any, policy expiration.ItemPolicy)

	// Remove deletes key. Removing a missing key must not fail.
	Remove(key string)
}

var _ Storage = (*memstorage.Storage)(nil)

// StorageFactory creates an empty storage for the named cache.
// It is called once at construction and again on every ClearAll.
type StorageFactory func(cacheName string) Storage

// InMemory returns a StorageFactory backed by memstorage.
func InMemory(opts ...memstorage.Option) StorageFactory {
	return func(string) Storage {
		return memstorage.New(opts...)
	}
}

// Locator resolves a logical cache name to a live cache.
// It may return a fallback cache whose Name differs from the requested name.
type Locator interface {
	GetCache(name string) (*Cache, bool)
}

// LocatorFunc is a function type that implements the Locator interface.
type LocatorFunc func(name string) (*Cache, bool)

// GetCache calls the function.
func (f LocatorFunc) GetCache(name string) (*Cache, bool) {
	return f(name)
}

// Metrics receives events from caches.
// Implementations must be thread-safe and fast; they run on the lookup path.
type Metrics interface {
	// Hit is called when a lookup finds the key.
	Hit(cacheName string)

	// Miss is called when a lookup does not find the key.
	Miss(cacheName string)

	// Populated is called after a get-or-populate producer returns.
	Populated(cacheName string, elapsed time.Duration, err error)

	// Cleared is called after Clear (all=false) or ClearAll (all=true).
	Cleared(cacheName string, all bool)
}

// NopMetrics is a Metrics implementation that ignores all events.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) Hit(string)                             {}
func (NopMetrics) Miss(string)                            {}
func (NopMetrics) Populated(string, time.Duration, error) {}
func (NopMetrics) Cleared(string, bool)                   {}
