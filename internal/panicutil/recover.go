// Package panicutil turns panics raised by producers and event handlers into errors.
package panicutil

import (
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// PanicError reports a panic raised while computing or invalidating an entry.
// errors.As reaches the underlying *panics.ErrRecovered, which carries the value and stack.
type PanicError struct {
	CacheName string
	Key       string
	Recovered *panics.Recovered
}

func (e *PanicError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %q: panic: %v", e.CacheName, e.Recovered.Value)
	}
	return fmt.Sprintf("cache %q key %q: panic: %v", e.CacheName, e.Key, e.Recovered.Value)
}

func (e *PanicError) Unwrap() error {
	return e.Recovered.AsError()
}

// Call runs f on behalf of key in the named cache.
// The error returned by f is passed through as is; a panic becomes a *PanicError.
func Call(cacheName, key string, f func() error) error {
	var err error
	if r := panics.Try(func() { err = f() }); r != nil {
		return &PanicError{CacheName: cacheName, Key: key, Recovered: r}
	}
	return err
}
