package redisnotifier

import "log/slog"

// DefaultPrefix is the default channel prefix.
const DefaultPrefix = "namedcache"

// Option is the interface for the options of the redis notifier.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithPrefix sets the channel prefix. Channels are named "<prefix>:<cache name>".
func WithPrefix(prefix string) Option {
	return optionFunc(func(o *options) {
		o.prefix = prefix
	})
}

// WithLogger sets the logger for delivery failures. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return optionFunc(func(o *options) {
		o.log = log
	})
}

type options struct {
	prefix string
	log    *slog.Logger
}

func defaultOptions() options {
	return options{
		prefix: DefaultPrefix,
		log:    slog.Default(),
	}
}

func (o *options) complete() {
	if o.log == nil {
		o.log = slog.Default()
	}
}
