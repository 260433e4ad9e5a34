package redisnotifier_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/notifier"
	"github.com/karupanerura/named-cache/notifier/redisnotifier"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type recorder struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (r *recorder) handle(_ context.Context, ev notifier.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) got() []notifier.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Event(nil), r.events...)
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	_, client := newTestRedis(t)
	n := redisnotifier.New(client, redisnotifier.WithPrefix("test"))
	assert.Equal(t, "test:users", n.Channel("users"))

	users, groups := &recorder{}, &recorder{}
	sub, err := n.Subscribe(t.Context(), "users", users.handle)
	require.NoError(t, err)
	defer sub.Close()
	groupSub, err := n.Subscribe(t.Context(), "groups", groups.handle)
	require.NoError(t, err)
	defer groupSub.Close()

	remove := notifier.Event{CacheName: "users", Key: "alice", Action: notifier.ActionRemove, Origin: "a"}
	clearAll := notifier.Event{CacheName: "users", Action: notifier.ActionClearAll, Origin: "b"}
	require.NoError(t, n.Publish(t.Context(), remove))
	require.NoError(t, n.Publish(t.Context(), clearAll))

	require.Eventually(t, func() bool {
		return len(users.got()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []notifier.Event{remove, clearAll}, users.got())
	assert.Empty(t, groups.got())
}

func TestNotifier_Close(t *testing.T) {
	mr, client := newTestRedis(t)
	n := redisnotifier.New(client)

	rec := &recorder{}
	sub, err := n.Subscribe(t.Context(), "users", rec.handle)
	require.NoError(t, err)
	assert.Equal(t, 1, mr.PubSubNumSub(n.Channel("users"))[n.Channel("users")])

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(n.Channel("users"))[n.Channel("users")] == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, n.Publish(t.Context(), notifier.Event{CacheName: "users", Action: notifier.ActionClearAll}))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.got())
}

func TestNotifier_HandlerPanic(t *testing.T) {
	_, client := newTestRedis(t)
	var logs bytes.Buffer
	n := redisnotifier.New(client, redisnotifier.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var mu sync.Mutex
	calls := 0
	sub, err := n.Subscribe(t.Context(), "users", func(context.Context, notifier.Event) {
		mu.Lock()
		calls++
		c := calls
		mu.Unlock()
		if c == 1 {
			panic("boom")
		}
	})
	require.NoError(t, err)
	defer sub.Close()

	for range 2 {
		require.NoError(t, n.Publish(t.Context(), notifier.Event{CacheName: "users", Key: "k", Action: notifier.ActionRemove}))
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, sub.Close())
	assert.Contains(t, logs.String(), "event handler panicked")
	assert.Contains(t, logs.String(), `panic: boom`)
}

func TestNotifier_PublishError(t *testing.T) {
	mr, client := newTestRedis(t)
	n := redisnotifier.New(client)
	mr.Close()

	err := n.Publish(t.Context(), notifier.Event{CacheName: "users", Action: notifier.ActionClearAll})
	assert.Error(t, err)
}

func TestNotifier_Caches(t *testing.T) {
	_, client := newTestRedis(t)

	// two processes sharing one redis
	dirA, dirB := notifier.NewDirectory(), notifier.NewDirectory()
	dirA.Register("redis", redisnotifier.New(client))
	dirB.Register("redis", redisnotifier.New(client))

	policy := expiration.FromAdd(time.Hour).WithSyncProvider("redis")
	a := namedcache.NewCache("users", policy, namedcache.WithNotifiers(dirA))
	defer a.Close()
	b := namedcache.NewCache("users", policy, namedcache.WithNotifiers(dirB))
	defer b.Close()

	a.Set("alice", "Alice")
	b.Set("alice", "Alice")
	b.Set("bob", "Bob")

	a.Clear("alice")
	require.Eventually(t, func() bool {
		_, ok := namedcache.TryGet[string](b, "alice")
		return !ok
	}, time.Second, 10*time.Millisecond)

	a.Set("bob", "Bob")
	b.ClearAll()
	require.Eventually(t, func() bool {
		_, ok := namedcache.TryGet[string](a, "bob")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNew_NilLogger(t *testing.T) {
	_, client := newTestRedis(t)

	var n *redisnotifier.Notifier
	require.NotPanics(t, func() { n = redisnotifier.New(client, redisnotifier.WithLogger(nil)) })
	require.NoError(t, n.Publish(t.Context(), notifier.Event{CacheName: "users", Action: notifier.ActionClearAll}))
}
