package common

import "time"

// CacheInterface defines the contract for cache implementations.
// Values round-trip through Redis as raw bytes, so callers that need both
// backends store []byte (see GetOrSetJSON).
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Flush drops every entry owned by stride
	Flush()

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
