// Package locator resolves logical cache names to live caches.
package locator
