// Package admin is the operator control plane of named caches.
//
// A Registry records which caches may be cleared entirely and which items can be recomputed, then clears
// and refreshes them by name through a namedcache.Locator. Every rejected operation returns a *CacheError.
package admin
