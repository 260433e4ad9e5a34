package namedcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/karupanerura/named-cache/notifier"
)

// PublishTimeout bounds each invalidation publish.
var PublishTimeout = 5 * time.Second

type synchronizer struct {
	provider string
	notifier notifier.Notifier
	sub      notifier.Subscription
}

func (s *synchronizer) close() error {
	return s.sub.Close()
}

// attach subscribes the cache to the notifier named by its policy, if any.
func (c *Cache) attach(dir *notifier.Directory) {
	provider := c.policy.SyncProvider
	if provider == "" {
		return
	}

	n, ok := dir.Lookup(provider)
	if !ok {
		c.log.Warn("sync provider is not registered; cache stays local", slog.String("provider", provider))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
	defer cancel()
	sub, err := n.Subscribe(ctx, c.name, c.applyEvent)
	if err != nil {
		c.log.Error("failed to subscribe to sync provider", slog.String("provider", provider), slog.Any("error", err))
		return
	}
	c.sync = &synchronizer{provider: provider, notifier: n, sub: sub}
}

// applyEvent applies an invalidation emitted by a peer. Events emitted by c itself are ignored.
func (c *Cache) applyEvent(_ context.Context, ev notifier.Event) {
	if ev.Origin == c.id || ev.CacheName != c.name {
		return
	}

	switch ev.Action {
	case notifier.ActionRemove:
		c.Storage().Remove(ev.Key)
	case notifier.ActionClearAll:
		c.reset()
	default:
		c.log.Warn("ignoring unknown sync action", slog.String("action", ev.Action.String()))
		return
	}
	c.log.Debug("applied sync event", slog.String("action", ev.Action.String()), slog.String("key", ev.Key))
}

func (c *Cache) publish(ev notifier.Event) {
	if c.sync == nil {
		return
	}
	ev.CacheName = c.name
	ev.Origin = c.id

	ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
	defer cancel()
	if err := c.sync.notifier.Publish(ctx, ev); err != nil {
		c.log.Error("failed to publish sync event",
			slog.String("provider", c.sync.provider),
			slog.String("action", ev.Action.String()),
			slog.Any("error", err),
		)
	}
}
