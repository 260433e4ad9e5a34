// Package intervalrefresher refreshes the registered items of caches at a fixed interval.
package intervalrefresher

import (
	"context"
	"time"

	"github.com/karupanerura/named-cache/admin"
)

// CacheRefresher refreshes every registered item of a cache. *admin.Registry implements it.
type CacheRefresher interface {
	RefreshCache(ctx context.Context, name string) error
}

var _ CacheRefresher = (*admin.Registry)(nil)

// IntervalRefresher is a background job that refreshes a fixed set of caches at a fixed interval.
type IntervalRefresher struct {
	refresher         CacheRefresher
	names             []string
	interval          time.Duration
	onBackgroundError func(name string, err error)
}

// NewIntervalRefresher creates a new IntervalRefresher for the named caches.
// onBackgroundError receives the failures of each cache refresh; it must not be nil.
func NewIntervalRefresher(refresher CacheRefresher, interval time.Duration, onBackgroundError func(name string, err error), names ...string) *IntervalRefresher {
	return &IntervalRefresher{
		refresher:         refresher,
		names:             names,
		interval:          interval,
		onBackgroundError: onBackgroundError,
	}
}

// LaunchBackgroundRefresher refreshes the caches once and then at every interval.
// It stops when ctx is canceled.
func (r *IntervalRefresher) LaunchBackgroundRefresher(ctx context.Context) {
	go r.poll(ctx)
}

func (r *IntervalRefresher) poll(ctx context.Context) {
	r.refreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

func (r *IntervalRefresher) refreshAll(ctx context.Context) {
	for _, name := range r.names {
		if ctx.Err() != nil {
			return
		}
		if err := r.refresher.RefreshCache(ctx, name); err != nil {
			r.onBackgroundError(name, err)
		}
	}
}
