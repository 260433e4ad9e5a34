// Package memstorage provides the in-memory storage primitive behind a namedcache.Cache.
//
// Entries are spread across buckets selected by an xxhash of the key. Each entry carries a resolved
// expiration.ItemPolicy: absolute entries expire at a fixed instant, sliding entries are renewed on
// every hit. Expired entries are removed lazily on access or explicitly with Purge.
package memstorage
