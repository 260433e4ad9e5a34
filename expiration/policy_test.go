package expiration_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/karupanerura/named-cache/expiration"
)

func ptr[T any](v T) *T {
	return &v
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	absolute := now.Add(time.Hour)

	tests := []struct {
		name   string
		policy expiration.Policy
		want   expiration.ItemPolicy
	}{
		{
			name:   "empty policy never expires",
			policy: expiration.Never(),
			want:   expiration.ItemPolicy{},
		},
		{
			name:   "sliding",
			policy: expiration.Sliding(2 * time.Minute),
			want:   expiration.ItemPolicy{SlidingExpiration: 2 * time.Minute},
		},
		{
			name:   "from add",
			policy: expiration.FromAdd(30 * time.Second),
			want:   expiration.ItemPolicy{AbsoluteExpiration: now.Add(30 * time.Second)},
		},
		{
			name:   "absolute",
			policy: expiration.Absolute(absolute),
			want:   expiration.ItemPolicy{AbsoluteExpiration: absolute},
		},
		{
			name: "sliding wins over absolute",
			policy: expiration.Policy{
				SlidingExpiration:  ptr(2 * time.Minute),
				AbsoluteExpiration: ptr(absolute),
			},
			want: expiration.ItemPolicy{SlidingExpiration: 2 * time.Minute},
		},
		{
			name: "sliding wins over from add",
			policy: expiration.Policy{
				SlidingExpiration: ptr(time.Minute),
				ExpirationFromAdd: ptr(time.Hour),
			},
			want: expiration.ItemPolicy{SlidingExpiration: time.Minute},
		},
		{
			name: "from add wins over absolute",
			policy: expiration.Policy{
				ExpirationFromAdd:  ptr(time.Minute),
				AbsoluteExpiration: ptr(absolute),
			},
			want: expiration.ItemPolicy{AbsoluteExpiration: now.Add(time.Minute)},
		},
		{
			name: "infinite sliding falls through to from add",
			policy: expiration.Policy{
				SlidingExpiration: ptr(expiration.MaxDuration),
				ExpirationFromAdd: ptr(time.Minute),
			},
			want: expiration.ItemPolicy{AbsoluteExpiration: now.Add(time.Minute)},
		},
		{
			name: "infinite from add falls through to absolute",
			policy: expiration.Policy{
				ExpirationFromAdd:  ptr(expiration.MaxDuration),
				AbsoluteExpiration: ptr(absolute),
			},
			want: expiration.ItemPolicy{AbsoluteExpiration: absolute},
		},
		{
			name: "zero absolute is infinite",
			policy: expiration.Policy{
				AbsoluteExpiration: ptr(time.Time{}),
			},
			want: expiration.ItemPolicy{},
		},
		{
			name:   "sync provider does not affect resolution",
			policy: expiration.Sliding(time.Second).WithSyncProvider("redis"),
			want:   expiration.ItemPolicy{SlidingExpiration: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := expiration.Resolve(tt.policy, now)
			if df := cmp.Diff(tt.want, got); df != "" {
				t.Errorf("Resolve() diff=%s", df)
			}
		})
	}
}

func TestItemPolicy(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("infinite", func(t *testing.T) {
		t.Parallel()

		p := expiration.ItemPolicy{}
		if !p.IsInfinite() {
			t.Error("empty item policy must be infinite")
		}
		if !p.Deadline(now).IsZero() {
			t.Errorf("unexpected deadline: %v", p.Deadline(now))
		}
	})

	t.Run("sliding deadline follows last access", func(t *testing.T) {
		t.Parallel()

		p := expiration.ItemPolicy{SlidingExpiration: time.Minute}
		if p.IsInfinite() || !p.IsSliding() {
			t.Fatalf("unexpected flags: infinite=%v sliding=%v", p.IsInfinite(), p.IsSliding())
		}
		if got, want := p.Deadline(now), now.Add(time.Minute); !got.Equal(want) {
			t.Errorf("Deadline() = %v, want %v", got, want)
		}
	})

	t.Run("absolute deadline ignores last access", func(t *testing.T) {
		t.Parallel()

		at := now.Add(time.Hour)
		p := expiration.ItemPolicy{AbsoluteExpiration: at}
		if got := p.Deadline(now.Add(30 * time.Minute)); !got.Equal(at) {
			t.Errorf("Deadline() = %v, want %v", got, at)
		}
	})
}
