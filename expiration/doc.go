// Package expiration resolves cache expiration policies.
//
// A Policy describes how long entries of a logical cache live (sliding, from-add or absolute).
// Resolve turns it into an ItemPolicy, the absolute-instant and sliding-duration pair a storage
// primitive applies to a single entry. Checker implementations decide whether a deadline has passed.
package expiration
