package storage

import (
	"github.com/goccy/go-reflect"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/expiration"
)

var _ namedcache.Storage = (*FunctionsStorage)(nil)

// FunctionsStorage is a namedcache.Storage implementation that uses functions to perform the storage operations.
type FunctionsStorage struct {
	// GetFunc retrieves a value by its key.
	// If the key is not found or expired, it should report false.
	GetFunc func(key string) (any, bool)

	// SetFunc stores a value with the given key and item policy.
	// If the key already exists, it should overwrite the existing value.
	SetFunc func(key string, value any, policy expiration.ItemPolicy)

	// RemoveFunc deletes a key.
	RemoveFunc func(key string)
}

// Get calls the GetFunc function to retrieve the value associated with the given key.
func (s *FunctionsStorage) Get(key string) (any, bool) {
	return s.GetFunc(key)
}

// Set calls the SetFunc function to store the given key-value pair.
func (s *FunctionsStorage) Set(key string, value any, policy expiration.ItemPolicy) {
	s.SetFunc(key, value, policy)
}

// Remove calls the RemoveFunc function to delete the given key.
func (s *FunctionsStorage) Remove(key string) {
	s.RemoveFunc(key)
}

var _ namedcache.Storage = (*CloningStorage)(nil)

// CloningStorage is a decorator for a namedcache.Storage that copies values on the way in and out,
// so callers never share a mutable value with the cache.
//
// A value is copied with its Clone or DeepCopy method when it has one returning its own type.
// Other values are stored as is.
type CloningStorage struct {
	// Storage is the underlying storage that this decorator wraps.
	Storage namedcache.Storage
}

// Get retrieves a copy of the value stored under key.
func (s *CloningStorage) Get(key string) (any, bool) {
	v, ok := s.Storage.Get(key)
	if !ok {
		return nil, false
	}
	return CloneValue(v), true
}

// Set stores a copy of value under key.
func (s *CloningStorage) Set(key string, value any, policy expiration.ItemPolicy) {
	s.Storage.Set(key, CloneValue(value), policy)
}

// Remove deletes key from the underlying storage.
func (s *CloningStorage) Remove(key string) {
	s.Storage.Remove(key)
}

// CloningFactory wraps every storage created by factory in a CloningStorage.
func CloningFactory(factory namedcache.StorageFactory) namedcache.StorageFactory {
	return func(cacheName string) namedcache.Storage {
		return &CloningStorage{Storage: factory(cacheName)}
	}
}

// CloneValue returns a copy of v made by its Clone or DeepCopy method, or v itself when it has neither.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	typ := rv.Type()
	for _, name := range []string{"Clone", "DeepCopy"} {
		m := rv.MethodByName(name)
		if !m.IsValid() {
			continue
		}
		mt := m.Type()
		if mt.NumIn() != 0 || mt.NumOut() != 1 || mt.Out(0) != typ {
			continue
		}
		if typ.Kind() == reflect.Ptr && rv.IsNil() {
			return v
		}
		return m.Call(nil)[0].Interface()
	}
	return v
}
