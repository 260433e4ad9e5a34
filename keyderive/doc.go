// Package keyderive derives deterministic cache item keys from method references.
package keyderive
