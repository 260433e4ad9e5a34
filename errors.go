package namedcache

import "github.com/cockroachdb/errors"

var (
	ErrNotFound     = errors.New("cache entry not found")
	ErrTypeMismatch = errors.New("cache entry has a different type")

	// ErrProducerPanicked is reported to Metrics.Populated when a producer panics.
	// The panic itself propagates to the caller.
	ErrProducerPanicked = errors.New("producer panicked")
)
