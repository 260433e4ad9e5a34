package admin

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/sourcegraph/conc/pool"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/internal/panicutil"
)

// Producer computes the current value of a registered item.
type Producer func(context.Context) (any, error)

// ProducerFunc adapts a typed producer.
func ProducerFunc[T any](f func(context.Context) (T, error)) Producer {
	return func(ctx context.Context) (any, error) {
		return f(ctx)
	}
}

// ItemDescriptor identifies a cache item and how to recompute it.
// A nil Producer registers the item for listing only; it cannot be initialized or refreshed.
type ItemDescriptor struct {
	CacheName string
	ItemKey   string
	Producer  Producer
}

type itemID struct {
	cacheName string
	itemKey   string
}

// Registry holds the caches and items operators may clear and refresh.
// It is safe for concurrent use.
type Registry struct {
	locator namedcache.Locator
	options options

	mu     sync.RWMutex
	caches map[string]bool
	items  map[itemID]Producer
}

// New creates an empty registry resolving caches through locator.
func New(locator namedcache.Locator, opts ...Option) *Registry {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	options.complete()
	options.log = options.log.With(slog.String("component", "admin"))

	return &Registry{
		locator: locator,
		options: options,
		caches:  map[string]bool{},
		items:   map[itemID]Producer{},
	}
}

// RegisterCache registers name and whether its entire content may be cleared.
// Registering a name again replaces the flag.
func (r *Registry) RegisterCache(name string, allowDestructiveClear bool) error {
	if name == "" {
		return newError(ErrUndefinedName, "Cache not registered - received undefined cacheName")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches[name] = allowDestructiveClear
	return nil
}

// RegisterItem registers the producer of an item, replacing any previous one.
//
// A cache name seen for the first time is registered with destructive clear disabled; an existing flag
// is left alone. When initialize is set the producer runs right away and its value is stored.
// The registration is kept even if initialization fails.
func (r *Registry) RegisterItem(ctx context.Context, d ItemDescriptor, initialize bool) (err error) {
	defer func() { r.options.metrics.Operation(OpRegisterItem, d.CacheName, err) }()

	if d.CacheName == "" {
		return newError(ErrUndefinedName, "Cache item not registered - received undefined cacheName")
	}
	if d.ItemKey == "" {
		return newError(ErrUndefinedName, "Cache item not registered - received undefined itemKey")
	}

	r.mu.Lock()
	if _, ok := r.caches[d.CacheName]; !ok {
		r.caches[d.CacheName] = false
	}
	r.items[itemID{cacheName: d.CacheName, itemKey: d.ItemKey}] = d.Producer
	r.mu.Unlock()

	if !initialize {
		return nil
	}
	if d.Producer == nil {
		return newError(ErrNoProducer, "Cache item not initialized - getter not defined: %s/%s", d.CacheName, d.ItemKey)
	}
	cache, ok := r.locator.GetCache(d.CacheName)
	if !ok {
		return newError(ErrCacheNotFound, "Cache item not initialized - cache not defined: %s", d.CacheName)
	}
	return r.store(ctx, cache, d.ItemKey, d.Producer)
}

// ClearCache drops every entry of the named cache.
//
// It refuses when the locator falls back to a cache of another name, and when name was registered with
// destructive clear disabled. Caches that were never registered may be cleared.
func (r *Registry) ClearCache(name string) (err error) {
	defer func() { r.options.metrics.Operation(OpClearCache, name, err) }()

	if name == "" {
		return newError(ErrUndefinedName, "Cache not cleared - received undefined cacheName")
	}

	cache, ok := r.locator.GetCache(name)
	if !ok {
		return newError(ErrCacheNotFound, "Cache not cleared - cache not found: %s", name)
	}
	if cache.Name() != name {
		return newError(ErrFallbackCache, "Cache not cleared - due to fallback to a general cache: %s", name)
	}

	r.mu.RLock()
	allow, registered := r.caches[name]
	r.mu.RUnlock()
	if registered && !allow {
		return newError(ErrClearDisabled, "Cache not cleared - cache registered with destructive clear disabled: %s", name)
	}

	cache.ClearAll()
	r.options.log.Info("cleared cache", slog.String("cache", name))
	return nil
}

// ClearCacheItem removes one key of the named cache. Registration is not required.
func (r *Registry) ClearCacheItem(name, key string) (err error) {
	defer func() { r.options.metrics.Operation(OpClearCacheItem, name, err) }()

	if name == "" {
		return newError(ErrUndefinedName, "Cache item not cleared - received undefined cacheName")
	}
	if key == "" {
		return newError(ErrUndefinedName, "Cache item not cleared - received undefined itemKey")
	}

	cache, ok := r.locator.GetCache(name)
	if !ok {
		return newError(ErrCacheNotFound, "Cache item not cleared - cache not found: %s", name)
	}

	cache.Clear(key)
	r.options.log.Info("cleared cache item", slog.String("cache", name), slog.String("key", key))
	return nil
}

// RefreshItem runs the registered producer of an item and stores its value.
// A producer error is returned as is.
func (r *Registry) RefreshItem(ctx context.Context, name, key string) (err error) {
	defer func() { r.options.metrics.Operation(OpRefreshItem, name, err) }()

	if name == "" {
		return newError(ErrUndefinedName, "Cache item not refreshed - received undefined cacheName")
	}
	if key == "" {
		return newError(ErrUndefinedName, "Cache item not refreshed - received undefined itemKey")
	}

	r.mu.RLock()
	producer, ok := r.items[itemID{cacheName: name, itemKey: key}]
	r.mu.RUnlock()
	if !ok {
		return newError(ErrItemNotRegistered, "Cache item not refreshed - item is not registered: %s/%s", name, key)
	}
	if producer == nil {
		return newError(ErrNoProducer, "Cache item not refreshed - getter not defined: %s/%s", name, key)
	}

	cache, ok := r.locator.GetCache(name)
	if !ok {
		return newError(ErrCacheNotFound, "Cache item not refreshed - cache not defined: %s", name)
	}
	return r.store(ctx, cache, key, producer)
}

// RefreshCache refreshes every registered item of the named cache that has a producer.
// Producers run concurrently; the errors of failed items are joined.
func (r *Registry) RefreshCache(ctx context.Context, name string) (err error) {
	defer func() { r.options.metrics.Operation(OpRefreshCache, name, err) }()

	if name == "" {
		return newError(ErrUndefinedName, "Cache not refreshed - received undefined cacheName")
	}

	type job struct {
		key      string
		producer Producer
	}
	var jobs []job
	r.mu.RLock()
	for id, producer := range r.items {
		if id.cacheName == name && producer != nil {
			jobs = append(jobs, job{key: id.itemKey, producer: producer})
		}
	}
	r.mu.RUnlock()
	if len(jobs) == 0 {
		return newError(ErrItemNotRegistered, "Cache not refreshed - no refreshable item is registered: %s", name)
	}

	cache, ok := r.locator.GetCache(name)
	if !ok {
		return newError(ErrCacheNotFound, "Cache not refreshed - cache not defined: %s", name)
	}

	p := pool.New().WithMaxGoroutines(r.options.concurrency).WithErrors()
	for _, j := range jobs {
		p.Go(func() error {
			return r.store(ctx, cache, j.key, j.producer)
		})
	}
	return p.Wait()
}

// store runs producer and writes its value under key. A producer panic is returned as a *panicutil.PanicError.
func (r *Registry) store(ctx context.Context, cache *namedcache.Cache, key string, producer Producer) error {
	var value any
	err := panicutil.Call(cache.Name(), key, func() error {
		var err error
		value, err = producer(ctx)
		return err
	})
	if err != nil {
		r.options.log.Warn("producer failed",
			slog.String("cache", cache.Name()),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return err
	}

	cache.Set(key, value)
	return nil
}

// CacheNames returns the sorted names of registered caches, including those registered through items.
func (r *Registry) CacheNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ItemKeys returns the sorted keys registered under name.
func (r *Registry) ItemKeys(name string) ([]string, error) {
	if name == "" {
		return nil, newError(ErrUndefinedName, "Received undefined cacheName")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := []string{}
	for id := range r.items {
		if id.cacheName == name {
			keys = append(keys, id.itemKey)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// AllowsDestructiveClear reports the flag registered for name.
func (r *Registry) AllowsDestructiveClear(name string) (allow, registered bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	allow, registered = r.caches[name]
	return allow, registered
}

// Reset forgets every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches = map[string]bool{}
	r.items = map[itemID]Producer{}
}
