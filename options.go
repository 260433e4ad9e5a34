package namedcache

import (
	"log/slog"

	"github.com/karupanerura/named-cache/notifier"
	"github.com/karupanerura/named-cache/storage/memstorage"
)

// Option is the interface for the options of a Cache.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithStorageFactory sets the factory creating the storage primitive.
// The default creates a memstorage.Storage sharing the cache clock.
func WithStorageFactory(factory StorageFactory) Option {
	return optionFunc(func(o *options) {
		o.storageFactory = factory
	})
}

// WithClock sets the clock used to resolve expiration policies.
func WithClock(clock Clock) Option {
	return optionFunc(func(o *options) {
		o.clock = clock
	})
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return optionFunc(func(o *options) {
		o.log = log
	})
}

// WithMetrics sets the metrics receiver. The default is NopMetrics.
func WithMetrics(metrics Metrics) Option {
	return optionFunc(func(o *options) {
		o.metrics = metrics
	})
}

// WithNotifiers sets the directory the cache looks its policy SyncProvider up in.
func WithNotifiers(dir *notifier.Directory) Option {
	return optionFunc(func(o *options) {
		o.notifiers = dir
	})
}

type options struct {
	storageFactory StorageFactory
	clock          Clock
	log            *slog.Logger
	metrics        Metrics
	notifiers      *notifier.Directory
}

func defaultOptions() options {
	return options{
		clock:   SystemClock,
		metrics: NopMetrics{},
	}
}

func (o *options) complete() {
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.storageFactory == nil {
		o.storageFactory = InMemory(memstorage.WithClock(o.clock))
	}
}
