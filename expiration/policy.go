package expiration

import (
	"math"
	"time"
)

// MaxDuration is the largest representable duration.
// A duration equal to MaxDuration is treated as "not finite" and ignored.
const MaxDuration = time.Duration(math.MaxInt64)

// NoSlidingExpiration disables sliding expiration in an ItemPolicy.
const NoSlidingExpiration time.Duration = 0

// InfiniteAbsoluteExpiration is the absolute expiration of an entry that never expires at a fixed instant.
var InfiniteAbsoluteExpiration = time.Time{}

// Policy is the expiration rule set of a logical cache.
// At most one rule is expected to be set. When several are set the precedence is
// SlidingExpiration, then ExpirationFromAdd, then AbsoluteExpiration.
// A Policy with no rule set never expires its entries.
type Policy struct {
	// SlidingExpiration expires an entry when it has not been read or written for the duration.
	SlidingExpiration *time.Duration

	// ExpirationFromAdd expires an entry the given duration after it was written.
	ExpirationFromAdd *time.Duration

	// AbsoluteExpiration expires every entry at a fixed instant.
	AbsoluteExpiration *time.Time

	// SyncProvider is the name of the notifier used to synchronize clears across processes.
	// Empty means the cache is not synchronized.
	SyncProvider string
}

// Never returns a policy whose entries never expire.
func Never() Policy {
	return Policy{}
}

// Sliding returns a policy with sliding expiration.
func Sliding(d time.Duration) Policy {
	return Policy{SlidingExpiration: &d}
}

// FromAdd returns a policy that expires entries d after they are written.
func FromAdd(d time.Duration) Policy {
	return Policy{ExpirationFromAdd: &d}
}

// Absolute returns a policy that expires all entries at t.
func Absolute(t time.Time) Policy {
	return Policy{AbsoluteExpiration: &t}
}

// WithSyncProvider returns a copy of the policy synchronized through the named notifier.
func (p Policy) WithSyncProvider(name string) Policy {
	p.SyncProvider = name
	return p
}

// ItemPolicy is a resolved policy for a single entry, as understood by a storage primitive.
type ItemPolicy struct {
	// AbsoluteExpiration is the instant the entry expires.
	// InfiniteAbsoluteExpiration (the zero time) means no absolute expiration.
	AbsoluteExpiration time.Time

	// SlidingExpiration is the idle duration after which the entry expires.
	// NoSlidingExpiration means no sliding expiration.
	SlidingExpiration time.Duration
}

// IsSliding reports whether the entry uses sliding expiration.
func (p ItemPolicy) IsSliding() bool {
	return p.SlidingExpiration != NoSlidingExpiration
}

// IsInfinite reports whether the entry never expires.
func (p ItemPolicy) IsInfinite() bool {
	return !p.IsSliding() && p.AbsoluteExpiration.IsZero()
}

// Deadline returns the instant the entry expires given its last access time.
// The zero time means the entry never expires.
func (p ItemPolicy) Deadline(lastAccess time.Time) time.Time {
	if p.IsSliding() {
		return lastAccess.Add(p.SlidingExpiration)
	}
	return p.AbsoluteExpiration
}

// Resolve converts the policy into an ItemPolicy for an entry written at now.
func Resolve(p Policy, now time.Time) ItemPolicy {
	switch {
	case p.SlidingExpiration != nil && *p.SlidingExpiration < MaxDuration:
		return ItemPolicy{
			AbsoluteExpiration: InfiniteAbsoluteExpiration,
			SlidingExpiration:  *p.SlidingExpiration,
		}
	case p.ExpirationFromAdd != nil && *p.ExpirationFromAdd < MaxDuration:
		return ItemPolicy{
			AbsoluteExpiration: now.Add(*p.ExpirationFromAdd),
			SlidingExpiration:  NoSlidingExpiration,
		}
	case p.AbsoluteExpiration != nil && !p.AbsoluteExpiration.IsZero():
		return ItemPolicy{
			AbsoluteExpiration: *p.AbsoluteExpiration,
			SlidingExpiration:  NoSlidingExpiration,
		}
	default:
		return ItemPolicy{
			AbsoluteExpiration: InfiniteAbsoluteExpiration,
			SlidingExpiration:  NoSlidingExpiration,
		}
	}
}
