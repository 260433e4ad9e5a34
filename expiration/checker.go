package expiration

import (
	"math/rand/v2"
	"time"
)

// Checker decides whether an entry whose deadline is expiresAt is stale at now.
// Storage primitives consult a Checker only for entries with a finite deadline.
type Checker interface {
	IsExpired(now, expiresAt time.Time) bool
}

// GeneralChecker expires an entry once its deadline is reached.
type GeneralChecker struct{}

var _ Checker = GeneralChecker{}

// IsExpired returns true when now >= expiresAt.
func (GeneralChecker) IsExpired(now, expiresAt time.Time) bool {
	return !expiresAt.After(now)
}

// NeverChecker keeps every entry regardless of its deadline.
// Useful in tests that need stored entries to outlive the clock.
type NeverChecker struct{}

var _ Checker = NeverChecker{}

// IsExpired always returns false.
func (NeverChecker) IsExpired(now, expiresAt time.Time) bool {
	return false
}

// EarlyChecker may expire an entry up to Duration before its deadline.
// Processes sharing a from-add policy then repopulate at different times instead of all at once.
type EarlyChecker struct {
	// Duration is how much earlier an entry can expire.
	Duration time.Duration

	// Percentage is the chance, in [0, 1], that a check applies the early window.
	Percentage float64

	// Random decides whether the early window applies.
	// If nil, the default system random generator is used.
	Random *rand.Rand
}

var _ Checker = (*EarlyChecker)(nil)

// IsExpired reports whether now is past expiresAt, or with probability Percentage whether now+Duration is.
func (c *EarlyChecker) IsExpired(now, expiresAt time.Time) bool {
	if c.randFloat64() > c.Percentage {
		return now.After(expiresAt)
	}
	return now.Add(c.Duration).After(expiresAt)
}

func (c *EarlyChecker) randFloat64() float64 {
	if c.Random == nil {
		return rand.Float64()
	}
	return c.Random.Float64()
}
