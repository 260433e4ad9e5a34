// Package storage provides namedcache.Storage adapters.
//
// FunctionsStorage builds a storage from function callbacks, which is mostly useful in tests.
// CloningStorage copies values with their Clone or DeepCopy method so that cached values are never shared.
package storage
