package namedcache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/notifier"
)

// Cache is a named, independently configured cache.
//
// Populating a missing key is serialized per Cache, not per key: Get holds an instance-wide mutex and
// GetContext an instance-wide single-slot semaphore while the producer runs. Misses on different keys of
// the same Cache therefore wait for each other, and at most one producer per call style runs at a time.
type Cache struct {
	name    string
	policy  expiration.Policy
	store   atomic.Pointer[storageRef]
	factory StorageFactory
	clock   Clock
	log     *slog.Logger
	metrics Metrics

	mu   sync.Mutex
	slot *semaphore.Weighted

	id   string
	sync *synchronizer
}

type storageRef struct {
	Storage
}

// NewCache creates a cache named name whose entries expire according to policy.
// If the policy names a SyncProvider found in the notifier directory, the cache subscribes to it.
func NewCache(name string, policy expiration.Policy, opts ...Option) *Cache {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	options.complete()

	c := &Cache{
		name:    name,
		policy:  policy,
		factory: options.storageFactory,
		clock:   options.clock,
		log:     options.log.With(slog.String("cache", name)),
		metrics: options.metrics,
		slot:    semaphore.NewWeighted(1),
		id:      uuid.NewString(),
	}
	c.store.Store(&storageRef{Storage: c.factory(name)})
	c.attach(options.notifiers)
	return c
}

// Name returns the logical name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Policy returns the expiration policy of the cache.
func (c *Cache) Policy() expiration.Policy {
	return c.policy
}

// Storage returns the current storage primitive. ClearAll replaces it.
func (c *Cache) Storage() Storage {
	return c.store.Load().Storage
}

// Set writes value under key with the cache policy resolved at the current time.
func (c *Cache) Set(key string, value any) {
	c.Storage().Set(key, value, expiration.Resolve(c.policy, c.clock.Now()))
}

// Clear removes key. Removing a missing key is a no-op.
func (c *Cache) Clear(key string) {
	c.Storage().Remove(key)
	c.metrics.Cleared(c.name, false)
	c.publish(notifier.Event{Key: key, Action: notifier.ActionRemove})
}

// ClearAll replaces the storage with a new empty one.
// Lookups racing with ClearAll may observe either storage.
func (c *Cache) ClearAll() {
	c.reset()
	c.metrics.Cleared(c.name, true)
	c.publish(notifier.Event{Action: notifier.ActionClearAll})
}

// Close detaches the cache from its notifier. The cache remains usable locally.
func (c *Cache) Close() error {
	if c.sync == nil {
		return nil
	}
	return c.sync.close()
}

func (c *Cache) reset() {
	c.store.Store(&storageRef{Storage: c.factory(c.name)})
}

// lookup reads key and records a hit or miss.
func (c *Cache) lookup(key string) (any, bool) {
	v, ok := c.Storage().Get(key)
	if ok {
		c.metrics.Hit(c.name)
	} else {
		c.metrics.Miss(c.name)
	}
	return v, ok
}

// cast converts a stored value to T, yielding the zero value of T on mismatch.
func cast[T any](v any) T {
	t, _ := v.(T)
	return t
}

// TryGet returns the value stored under key.
// A stored value of another type is still reported as found, with the zero value of T.
// Use Lookup to tell a type mismatch apart.
func TryGet[T any](c *Cache, key string) (T, bool) {
	v, ok := c.lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	return cast[T](v), true
}

// TryGetContext is TryGet for callers that carry a context.
// It does not block; it only fails when ctx is already done.
func TryGetContext[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := TryGet[T](c, key)
	return v, ok, nil
}

// Lookup returns the value stored under key, strictly typed.
// It returns ErrNotFound when the key is missing and ErrTypeMismatch when the stored value is not a T.
func Lookup[T any](c *Cache, key string) (T, error) {
	var zero T
	v, ok := c.lookup(key)
	if !ok {
		return zero, errors.Wrapf(ErrNotFound, "cache %q key %q", c.name, key)
	}
	if v == nil && nillable[T]() {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "cache %q key %q holds %T", c.name, key, v)
	}
	return t, nil
}

// nillable reports whether nil is a valid value of T.
func nillable[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// Get returns the value stored under key, or calls producer once to compute and store it.
//
// A found value of another type yields the zero value of T without calling producer.
// If producer fails, its error is returned as is and the key stays unset.
func Get[T any](c *Cache, key string, producer func() (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		return cast[T](v), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.Storage().Get(key); ok {
		return cast[T](v), nil
	}
	return populate(c, key, producer)
}

// GetContext is Get for producers that take a context.
//
// The producer runs while holding the single populate slot of the cache. Waiting for the slot honors ctx;
// the producer itself is responsible for honoring ctx once started.
func GetContext[T any](ctx context.Context, c *Cache, key string, producer func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		return cast[T](v), nil
	}

	if err := c.slot.Acquire(ctx, 1); err != nil {
		var zero T
		return zero, err
	}
	defer c.slot.Release(1)

	if v, ok := c.Storage().Get(key); ok {
		return cast[T](v), nil
	}
	return populate(c, key, func() (T, error) {
		return producer(ctx)
	})
}

func populate[T any](c *Cache, key string, producer func() (T, error)) (value T, err error) {
	start := time.Now()
	returned := false
	defer func() {
		reported := err
		if !returned {
			reported = ErrProducerPanicked
		}
		c.metrics.Populated(c.name, time.Since(start), reported)
	}()

	value, err = producer()
	returned = true
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}
