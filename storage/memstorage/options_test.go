package memstorage_test

import (
	"testing"
	"time"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/storage/memstorage"
)

func TestWithBucketsSize(t *testing.T) {
	t.Parallel()

	t.Run("panic on negative buckets", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic for negative buckets, but did not panic")
			}
		}()
		memstorage.WithBucketsSize(-1)
	})

	t.Run("panic on zero buckets", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic for zero buckets, but did not panic")
			}
		}()
		memstorage.WithBucketsSize(0)
	})
}

func TestWithChecker(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := namedcache.NewManualClock(base)
	s := memstorage.New(memstorage.WithClock(clock), memstorage.WithChecker(expiration.NeverChecker{}))

	s.Set("key", 1, expiration.ItemPolicy{AbsoluteExpiration: base.Add(time.Minute)})
	clock.Advance(time.Hour)
	if _, ok := s.Get("key"); !ok {
		t.Error("NeverChecker must keep entries")
	}
}

func TestWithKeyHash(t *testing.T) {
	t.Parallel()

	var called []string
	s := memstorage.New(memstorage.WithBucketsSize(4), memstorage.WithKeyHash(func(key string) int {
		called = append(called, key)
		return -len(key)
	}))

	s.Set("abc", 1, expiration.ItemPolicy{})
	if v, ok := s.Get("abc"); !ok || v != 1 {
		t.Errorf("Get() = (%v, %v), want (1, true)", v, ok)
	}
	if len(called) != 2 {
		t.Errorf("key hash called %d times, want 2", len(called))
	}
}
