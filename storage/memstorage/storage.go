package memstorage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/karupanerura/named-cache/expiration"
)

type entry struct {
	value      any
	policy     expiration.ItemPolicy
	lastAccess time.Time
	hits       int
}

type bucket struct {
	mu sync.Mutex
	m  map[string]*entry
}

// Stats is a snapshot of the lookup counters of a Storage.
type Stats struct {
	Hits   int64
	Misses int64
}

// Storage is an in-memory, expiration-aware key-value store.
// Keys are spread over buckets, each guarded by its own mutex.
type Storage struct {
	buckets []*bucket
	options options

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new in-memory storage.
func New(opts ...Option) *Storage {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	buckets := make([]*bucket, options.bucketsSize)
	for i := range buckets {
		buckets[i] = &bucket{m: map[string]*entry{}}
	}
	return &Storage{
		buckets: buckets,
		options: options,
	}
}

// resolveBucket returns the bucket that corresponds to the given key.
func (s *Storage) resolveBucket(key string) *bucket {
	if len(s.buckets) == 1 {
		return s.buckets[0]
	}
	return s.buckets[s.options.bucketOf(key, len(s.buckets))]
}

// expired reports whether e is stale at now.
func (s *Storage) expired(e *entry, now time.Time) bool {
	deadline := e.policy.Deadline(e.lastAccess)
	if deadline.IsZero() {
		return false
	}
	return s.options.checker.IsExpired(now, deadline)
}

// Get returns the value stored under key.
// An expired entry is removed and reported as missing. A hit on a sliding entry renews it.
func (s *Storage) Get(key string) (any, bool) {
	now := s.options.clock.Now()
	b := s.resolveBucket(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.m[key]
	if ok && s.expired(e, now) {
		delete(b.m, key)
		ok = false
	}
	if !ok {
		s.misses.Add(1)
		return nil, false
	}

	if e.policy.IsSliding() {
		e.lastAccess = now
	}
	e.hits++
	s.hits.Add(1)
	return e.value, true
}

// Set stores value under key with the given item policy, replacing any previous entry.
func (s *Storage) Set(key string, value any, policy expiration.ItemPolicy) {
	now := s.options.clock.Now()
	b := s.resolveBucket(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.m[key] = &entry{
		value:      value,
		policy:     policy,
		lastAccess: now,
	}
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Storage) Remove(key string) {
	b := s.resolveBucket(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.m, key)
}

// Hits returns how many times key was read since it was last written.
func (s *Storage) Hits(key string) (int, bool) {
	b := s.resolveBucket(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.m[key]
	if !ok {
		return 0, false
	}
	return e.hits, true
}

// Len returns the number of stored entries, including expired entries not yet purged.
func (s *Storage) Len() int {
	n := 0
	for _, b := range s.buckets {
		b.mu.Lock()
		n += len(b.m)
		b.mu.Unlock()
	}
	return n
}

// Purge removes every expired entry and returns how many were removed.
func (s *Storage) Purge() int {
	now := s.options.clock.Now()
	n := 0
	for _, b := range s.buckets {
		b.mu.Lock()
		for key, e := range b.m {
			if s.expired(e, now) {
				delete(b.m, key)
				n++
			}
		}
		b.mu.Unlock()
	}
	return n
}

// Stats returns the hit and miss counters.
func (s *Storage) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}
