// Package adminhttp exposes an admin.Registry over HTTP with a JSON API, and provides a client for it.
package adminhttp
