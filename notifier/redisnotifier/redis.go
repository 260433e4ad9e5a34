package redisnotifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/karupanerura/named-cache/internal/panicutil"
	"github.com/karupanerura/named-cache/notifier"
)

type envelope struct {
	CacheName string          `msgpack:"cache"`
	Key       string          `msgpack:"key,omitempty"`
	Action    notifier.Action `msgpack:"action"`
	Origin    string          `msgpack:"origin"`
}

// Notifier is a notifier.Notifier over redis pub/sub.
// Each cache name is published on its own channel.
type Notifier struct {
	rdb     redis.UniversalClient
	options options
}

var _ notifier.Notifier = (*Notifier)(nil)

// New creates a notifier publishing through rdb.
func New(rdb redis.UniversalClient, opts ...Option) *Notifier {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	options.complete()
	options.log = options.log.With(slog.String("component", "redisnotifier"))
	return &Notifier{rdb: rdb, options: options}
}

// Channel returns the redis channel carrying the events of cacheName.
func (n *Notifier) Channel(cacheName string) string {
	return n.options.prefix + ":" + cacheName
}

// Publish sends ev on the channel of ev.CacheName.
func (n *Notifier) Publish(ctx context.Context, ev notifier.Event) error {
	payload, err := msgpack.Marshal(&envelope{
		CacheName: ev.CacheName,
		Key:       ev.Key,
		Action:    ev.Action,
		Origin:    ev.Origin,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	if err := n.rdb.Publish(ctx, n.Channel(ev.CacheName), payload).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish event on %s", n.Channel(ev.CacheName))
	}
	return nil
}

// Subscribe listens on the channel of cacheName until the subscription is closed.
// It returns once redis has confirmed the subscription.
func (n *Notifier) Subscribe(ctx context.Context, cacheName string, h notifier.Handler) (notifier.Subscription, error) {
	channel := n.Channel(cacheName)
	pubsub := n.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrapf(err, "failed to subscribe to %s", channel)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		pubsub: pubsub,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	log := n.options.log.With(slog.String("channel", channel))
	go func() {
		defer close(s.done)
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				n.dispatch(subCtx, log, []byte(msg.Payload), h)
			}
		}
	}()
	return s, nil
}

func (n *Notifier) dispatch(ctx context.Context, log *slog.Logger, payload []byte, h notifier.Handler) {
	var env envelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		log.Error("failed to decode event", slog.Any("error", err))
		return
	}

	ev := notifier.Event{
		CacheName: env.CacheName,
		Key:       env.Key,
		Action:    env.Action,
		Origin:    env.Origin,
	}
	if err := panicutil.Call(ev.CacheName, ev.Key, func() error {
		h(ctx, ev)
		return nil
	}); err != nil {
		log.Error("event handler panicked", slog.String("action", ev.Action.String()), slog.Any("error", err))
	}
}

type subscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// Close unsubscribes and waits for the delivery goroutine to stop.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.err = s.pubsub.Close()
		<-s.done
	})
	return s.err
}
