package admin

import (
	"log/slog"
	"runtime"

	"github.com/karupanerura/named-cache/keyderive"
)

// KeyDeriver derives the item key of an accessor.
type KeyDeriver interface {
	DeriveKey(typeName, method string, args []any) (string, error)
}

var _ KeyDeriver = keyderive.Deriver{}

// Option is the interface for the options of a Registry.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
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

// WithKeyDeriver sets the deriver used by RegisterAccessor. The default is keyderive.Default.
func WithKeyDeriver(deriver KeyDeriver) Option {
	return optionFunc(func(o *options) {
		o.deriver = deriver
	})
}

// WithRefreshConcurrency sets how many producers RefreshCache runs at once.
// The number must be a natural number.
func WithRefreshConcurrency(n int) Option {
	if n <= 0 {
		panic("refresh concurrency must be natural number")
	}
	return optionFunc(func(o *options) {
		o.concurrency = n
	})
}

type options struct {
	log         *slog.Logger
	metrics     Metrics
	deriver     KeyDeriver
	concurrency int
}

func defaultOptions() options {
	return options{
		metrics:     NopMetrics{},
		deriver:     keyderive.Default,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

func (o *options) complete() {
	if o.log == nil {
		o.log = slog.Default()
	}
}
