package admin

// Operation names reported to Metrics.
const (
	OpClearCache     = "clear_cache"
	OpClearCacheItem = "clear_cache_item"
	OpRefreshItem    = "refresh_item"
	OpRefreshCache   = "refresh_cache"
	OpRegisterItem   = "register_item"
)

// Metrics receives the outcome of administrative operations.
type Metrics interface {
	Operation(op, cacheName string, err error)
}

// NopMetrics is a Metrics implementation that ignores all events.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) Operation(string, string, error) {}
