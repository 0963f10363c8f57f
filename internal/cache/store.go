package cache

import "context"

// Store is a persistent key/value backing for the result cache. In-memory
// and PostgreSQL implementations are provided; the cache works without one.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores or replaces the value for a key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists all keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
