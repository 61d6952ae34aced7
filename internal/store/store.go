// Package store defines the narrow hash/counter contract the catalog needs
// from its backing key-value store, plus the Redis implementation.
package store

import "context"

// Store is the backing-store contract. Keys are opaque strings; logical
// shards are expressed through key prefixes chosen by the constructor.
type Store interface {
	// HashGetAll returns all fields of the hash at key. A missing key yields
	// an empty map, not an error.
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	// HashSetMap writes all given fields to the hash at key.
	HashSetMap(ctx context.Context, key string, fields map[string]string) error
	// HashSetIfAbsent writes field only when it does not exist yet and
	// reports whether the write happened. This is the compare-and-set
	// primitive first-login provisioning relies on.
	HashSetIfAbsent(ctx context.Context, key, field, value string) (bool, error)
	// HashDelete removes the given fields from the hash at key. Missing
	// fields are ignored.
	HashDelete(ctx context.Context, key string, fields ...string) error
	// Incr atomically increments the integer at key and returns the new
	// value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)
}
