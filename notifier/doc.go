// Package notifier propagates cache invalidation events between cache instances.
//
// A cache whose policy names a SyncProvider subscribes to its own name on the notifier registered
// under that provider in a Directory. Clear and ClearAll on one instance publish an Event, and every
// other instance applies it locally.
//
// Hub is an in-process implementation. The redisnotifier subpackage carries events over Redis pub/sub.
package notifier
