package notifier

import (
	"context"
	"sync"
)

// Hub is an in-process Notifier. Events are delivered synchronously to every subscriber of the cache name.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

var _ Notifier = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[string]map[uint64]Handler{}}
}

// Publish delivers ev to the current subscribers of ev.CacheName.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs[ev.CacheName]))
	for _, handler := range h.subs[ev.CacheName] {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, ev)
	}
	return nil
}

// Subscribe registers handler for events of cacheName.
func (h *Hub) Subscribe(_ context.Context, cacheName string, handler Handler) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[cacheName] == nil {
		h.subs[cacheName] = map[uint64]Handler{}
	}
	h.subs[cacheName][id] = handler
	return &hubSubscription{hub: h, cacheName: cacheName, id: id}, nil
}

// Subscribers returns the number of subscribers of cacheName.
func (h *Hub) Subscribers(cacheName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[cacheName])
}

type hubSubscription struct {
	hub       *Hub
	cacheName string
	id        uint64
	once      sync.Once
}

func (s *hubSubscription) Close() error {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.cacheName], s.id)
		if len(s.hub.subs[s.cacheName]) == 0 {
			delete(s.hub.subs, s.cacheName)
		}
	})
	return nil
}
