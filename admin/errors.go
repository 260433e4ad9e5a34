package admin

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrUndefinedName     = errors.New("undefined name")
	ErrCacheNotFound     = errors.New("cache not found")
	ErrFallbackCache     = errors.New("resolved to a fallback cache")
	ErrClearDisabled     = errors.New("clearing the entire cache is disabled")
	ErrItemNotRegistered = errors.New("item is not registered")
	ErrNoProducer        = errors.New("item has no producer")
	ErrInvalidAccessor   = errors.New("invalid accessor")
)

// CacheError is the error returned by every rejected administrative operation.
// Use errors.Is with the Err* sentinels to tell the reasons apart.
type CacheError struct {
	Reason string
	Cause  error
}

func (e *CacheError) Error() string {
	return e.Reason
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

func newError(cause error, format string, args ...any) *CacheError {
	return &CacheError{
		Reason: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}
