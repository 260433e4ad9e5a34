package adminhttp

import (
	"log/slog"
	"net/http"
)

// Option is the interface for the options of the handler.
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

type options struct {
	log *slog.Logger
}

func defaultOptions() options {
	return options{log: slog.Default()}
}

func (o *options) complete() {
	if o.log == nil {
		o.log = slog.Default()
	}
}

// ClientOption is the interface for the options of a Client.
type ClientOption interface {
	apply(*Client)
}

type clientOptionFunc func(*Client)

func (f clientOptionFunc) apply(c *Client) {
	f(c)
}

// WithHTTPClient sets the HTTP client. The default is http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return clientOptionFunc(func(c *Client) {
		c.hc = hc
	})
}
