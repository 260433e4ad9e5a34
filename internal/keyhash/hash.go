package keyhash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// String returns the xxhash64 digest of s folded into an int.
func String(s string) int {
	return int(xxhash.Sum64String(s))
}

// Bucket returns the index in [0, n) that s is assigned to.
// n must be positive.
func Bucket(s string, n int) int {
	if n == 1 {
		return 0
	}
	return int(xxhash.Sum64String(s) % uint64(n))
}

// BucketFunc returns the bucket index of s in [0, n) using an arbitrary hash function.
// Negative hashes are folded into the range.
func BucketFunc(hash func(string) int, s string, n int) int {
	index := hash(s) % n
	if index < 0 {
		index *= -1
	}
	return index
}

// Digest returns the xxhash64 digest of b as 16 hex digits.
func Digest(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
