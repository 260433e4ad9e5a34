// Package redisnotifier propagates cache invalidation events between processes over redis pub/sub.
//
// Register a Notifier in a notifier.Directory under the name used as the SyncProvider of cache policies:
//
//	dir := notifier.NewDirectory()
//	dir.Register("redis", redisnotifier.New(rdb))
//	users := namedcache.NewCache("users", expiration.FromAdd(time.Hour).WithSyncProvider("redis"), namedcache.WithNotifiers(dir))
//
// Events are encoded with msgpack. Delivery is at most once; a process that is not subscribed when an
// event is published never sees it.
package redisnotifier
