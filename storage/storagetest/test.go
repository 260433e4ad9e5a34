// storagetest package provides generic test cases for namedcache.Storage implementations.
package storagetest

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/expiration"
)

var infinite = expiration.ItemPolicy{
	AbsoluteExpiration: expiration.InfiniteAbsoluteExpiration,
	SlidingExpiration:  expiration.NoSlidingExpiration,
}

// BenchmarkSet benchmarks the Set method of the storage.
func BenchmarkSet(b *testing.B, storage namedcache.Storage, keys []string) {
	policy := expiration.ItemPolicy{AbsoluteExpiration: time.Now().Add(time.Hour)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Set(keys[i%len(keys)], i, policy)
	}
}

// BenchmarkGet benchmarks the Get method of the storage on stored keys.
func BenchmarkGet(b *testing.B, storage namedcache.Storage, keys []string) {
	for i, key := range keys {
		storage.Set(key, i, infinite)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Get(keys[i%len(keys)])
	}
}

type TestClonerStruct struct {
	value int8
}

func (s *TestClonerStruct) Clone() *TestClonerStruct {
	return &TestClonerStruct{value: s.value}
}

// TestCloneStruct tests that the storage never hands out the value it was given.
func TestCloneStruct(t *testing.T, provider func() (namedcache.Storage, func())) {
	t.Run("CloneStruct", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		original := &TestClonerStruct{value: 1}
		storage.Set("1", original, infinite)

		v, ok := storage.Get("1")
		if !ok {
			t.Fatal("should exist")
		}
		got := v.(*TestClonerStruct)
		if original == got {
			t.Error("struct must be cloned, but got same that")
		}
		if df := cmp.Diff(original, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}

		before := got
		v, _ = storage.Get("1")
		got = v.(*TestClonerStruct)
		if before == got {
			t.Error("struct must be cloned, but got same that")
		}
		if df := cmp.Diff(before, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}
	})
}

type pair struct {
	Key   string
	Value int8
}

// TestConsistency tests concurrent Set, Get and Remove on distinct keys.
func TestConsistency(t *testing.T, provider func() (namedcache.Storage, func())) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		t.Run("SetAndGet", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			patterns := []pair{
				{"0", 1},
				{"1", 2},
				{"2", 3},
				{"3", 4},
				{"4", 5},
				{"251", 124},
				{"252", 125},
				{"253", 126},
				{"254", 127},
				{"255", -128},
			}
			rand.Shuffle(len(patterns), func(i, j int) {
				patterns[i], patterns[j] = patterns[j], patterns[i]
			})

			var eg errgroup.Group
			for _, pattern := range patterns {
				eg.Go(func() error {
					if _, ok := storage.Get(pattern.Key); ok {
						return fmt.Errorf("unexpected exists value for key %s", pattern.Key)
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			for _, pattern := range patterns {
				eg.Go(func() error {
					storage.Set(pattern.Key, pattern.Value, infinite)
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			results := make([]pair, len(patterns))
			for i, pattern := range patterns {
				eg.Go(func() error {
					v, ok := storage.Get(pattern.Key)
					if !ok {
						return fmt.Errorf("missing value for key %s", pattern.Key)
					}
					results[i] = pair{Key: pattern.Key, Value: v.(int8)}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			if df := cmp.Diff(patterns, results); df != "" {
				t.Errorf("entries diff=%s", df)
			}
		})

		t.Run("Overwrite", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			storage.Set("key", 1, infinite)
			storage.Set("key", "two", infinite)

			v, ok := storage.Get("key")
			if !ok {
				t.Fatal("should exist")
			}
			if v != "two" {
				t.Errorf("value = %v, want two", v)
			}
		})

		t.Run("Remove", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			const n = 64
			var eg errgroup.Group
			for i := range n {
				eg.Go(func() error {
					storage.Set(strconv.Itoa(i), i, infinite)
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			for i := 0; i < n; i += 2 {
				eg.Go(func() error {
					storage.Remove(strconv.Itoa(i))
					return nil
				})
			}
			eg.Go(func() error {
				storage.Remove("missing")
				return nil
			})
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			for i := range n {
				_, ok := storage.Get(strconv.Itoa(i))
				if want := i%2 == 1; ok != want {
					t.Errorf("key %d exists=%v, want %v", i, ok, want)
				}
			}
		})

		t.Run("NilValue", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			storage.Set("nil", nil, infinite)
			v, ok := storage.Get("nil")
			if !ok {
				t.Error("a nil value must be found")
			}
			if v != nil {
				t.Errorf("value = %v, want nil", v)
			}
		})
	})
}

// TestExpiration tests absolute and sliding expiration against a manual clock.
func TestExpiration(t *testing.T, provider func(namedcache.Clock) (namedcache.Storage, func())) {
	t.Run("Expiration", func(t *testing.T) {
		t.Parallel()

		t.Run("Absolute", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := namedcache.NewManualClock(base)
			storage, release := provider(clock)
			defer release()

			if _, ok := storage.Get("1"); ok {
				t.Error("should not exist")
			}

			storage.Set("1", int8(1), expiration.ItemPolicy{AbsoluteExpiration: base.Add(time.Hour)})

			v, ok := storage.Get("1")
			if !ok || v != int8(1) {
				t.Errorf("Get() = (%v, %v), want (1, true)", v, ok)
			}

			clock.Set(base.Add(time.Hour - time.Second))
			if _, ok := storage.Get("1"); !ok {
				t.Error("should exist just before expiration")
			}

			clock.Set(base.Add(time.Hour))
			if _, ok := storage.Get("1"); ok {
				t.Error("should be expired at exactly expiration time")
			}

			clock.Set(base.Add(time.Hour + time.Second))
			if _, ok := storage.Get("1"); ok {
				t.Error("should be expired after expiration time")
			}
		})

		t.Run("Sliding", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := namedcache.NewManualClock(base)
			storage, release := provider(clock)
			defer release()

			storage.Set("1", int8(1), expiration.ItemPolicy{SlidingExpiration: time.Minute})

			for range 5 {
				clock.Advance(59 * time.Second)
				if _, ok := storage.Get("1"); !ok {
					t.Fatalf("should be renewed by access at %v", clock.Now().Sub(base))
				}
			}

			clock.Advance(time.Minute)
			if _, ok := storage.Get("1"); ok {
				t.Error("should be expired after an idle minute")
			}
		})

		t.Run("Infinite", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := namedcache.NewManualClock(base)
			storage, release := provider(clock)
			defer release()

			storage.Set("1", int8(1), infinite)
			clock.Advance(100 * 365 * 24 * time.Hour)
			if _, ok := storage.Get("1"); !ok {
				t.Error("should never expire")
			}
		})

		t.Run("Overwrite resets the deadline", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := namedcache.NewManualClock(base)
			storage, release := provider(clock)
			defer release()

			storage.Set("1", int8(1), expiration.ItemPolicy{AbsoluteExpiration: base.Add(time.Minute)})
			storage.Set("1", int8(2), expiration.ItemPolicy{AbsoluteExpiration: base.Add(time.Hour)})

			clock.Advance(30 * time.Minute)
			v, ok := storage.Get("1")
			if !ok || v != int8(2) {
				t.Errorf("Get() = (%v, %v), want (2, true)", v, ok)
			}
		})
	})
}
