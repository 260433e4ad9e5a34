package adminhttp

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/karupanerura/named-cache/admin"
)

type errorKind struct {
	code   string
	status int
	cause  error
}

var errorKinds = []errorKind{
	{code: "undefined_name", status: http.StatusBadRequest, cause: admin.ErrUndefinedName},
	{code: "invalid_accessor", status: http.StatusBadRequest, cause: admin.ErrInvalidAccessor},
	{code: "cache_not_found", status: http.StatusNotFound, cause: admin.ErrCacheNotFound},
	{code: "item_not_registered", status: http.StatusNotFound, cause: admin.ErrItemNotRegistered},
	{code: "fallback_cache", status: http.StatusConflict, cause: admin.ErrFallbackCache},
	{code: "clear_disabled", status: http.StatusConflict, cause: admin.ErrClearDisabled},
	{code: "no_producer", status: http.StatusConflict, cause: admin.ErrNoProducer},
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func classify(err error) (int, ErrorResponse) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.cause) {
			return kind.status, ErrorResponse{Error: err.Error(), Code: kind.code}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
}

// StatusError is returned by Client when the server rejects a request.
// When the server reported an administrative error, Unwrap yields the matching admin sentinel.
type StatusError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *StatusError) Error() string {
	return e.Message
}

func (e *StatusError) Unwrap() error {
	for _, kind := range errorKinds {
		if kind.code == e.Code {
			return kind.cause
		}
	}
	return nil
}
