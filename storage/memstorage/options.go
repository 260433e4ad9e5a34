package memstorage

import (
	"time"

	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/internal/keyhash"
)

// DefaultBucketsSize is the default number of buckets in the storage.
var DefaultBucketsSize = 32

// Clock provides the current time. namedcache.Clock satisfies it.
type Clock interface {
	Now() time.Time
}

// Option is the interface for the options of the in-memory storage.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithKeyHash sets the key hash function used to pick a bucket.
func WithKeyHash(f func(string) int) Option {
	return optionFunc(func(o *options) {
		o.bucketOf = func(key string, n int) int {
			return keyhash.BucketFunc(f, key, n)
		}
	})
}

// WithBucketsSize sets the number of buckets in the storage.
// The number of buckets must be a natural number.
func WithBucketsSize(bucketsSize int) Option {
	if bucketsSize <= 0 {
		panic("bucketSize must be natural number")
	}
	return optionFunc(func(o *options) {
		o.bucketsSize = bucketsSize
	})
}

// WithClock sets the clock to the storage.
func WithClock(clock Clock) Option {
	return optionFunc(func(o *options) {
		o.clock = clock
	})
}

// WithChecker sets the checker that decides whether a deadline has passed.
// The default is expiration.GeneralChecker.
func WithChecker(checker expiration.Checker) Option {
	return optionFunc(func(o *options) {
		o.checker = checker
	})
}

type options struct {
	bucketOf    func(key string, n int) int
	bucketsSize int
	clock       Clock
	checker     expiration.Checker
}

func defaultOptions() options {
	return options{
		bucketOf:    keyhash.Bucket,
		bucketsSize: DefaultBucketsSize,
		clock:       systemClock{},
		checker:     expiration.GeneralChecker{},
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
