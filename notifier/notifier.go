package notifier

import (
	"context"
	"sync"
)

// Action is the kind of invalidation carried by an Event.
type Action uint8

const (
	// ActionRemove removes a single key.
	ActionRemove Action = iota + 1
	// ActionClearAll drops every entry of the cache.
	ActionClearAll
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionRemove:
		return "remove"
	case ActionClearAll:
		return "clear-all"
	default:
		return "unknown"
	}
}

// Event is an invalidation emitted by one cache instance for its peers.
type Event struct {
	// CacheName is the logical cache the event applies to.
	CacheName string

	// Key is the removed key. Empty for ActionClearAll.
	Key string

	// Action is what happened.
	Action Action

	// Origin identifies the emitting cache instance so it can ignore its own events.
	Origin string
}

// Handler receives events for a subscribed cache name.
type Handler func(context.Context, Event)

// Subscription is an active subscription. Close stops delivery.
type Subscription interface {
	Close() error
}

// Notifier propagates invalidation events between cache instances, usually across processes.
// Implementations must be safe for concurrent use.
type Notifier interface {
	// Publish sends the event to every subscriber of ev.CacheName, including the publisher's own subscription.
	Publish(ctx context.Context, ev Event) error

	// Subscribe registers h for events of cacheName.
	// The context bounds the subscribe call only, not the lifetime of the subscription.
	Subscribe(ctx context.Context, cacheName string, h Handler) (Subscription, error)
}

// Directory maps sync provider names, as used in expiration.Policy.SyncProvider, to notifiers.
type Directory struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{notifiers: map[string]Notifier{}}
}

// Register adds or replaces the notifier for name.
func (d *Directory) Register(name string, n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers[name] = n
}

// Lookup returns the notifier registered for name.
func (d *Directory) Lookup(name string) (Notifier, bool) {
	if d == nil {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.notifiers[name]
	return n, ok
}
