package redis

import (
	"context"
	"time"
)

// Client represents a Redis client interface for testing and abstraction.
// The stats service only needs the plain key/value subset: computed
// aggregates are cached as JSON blobs under a TTL.
type Client interface {
	// Set sets a key to a value with an optional TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get gets the value of a key; ErrCacheMiss when the key does not exist
	Get(ctx context.Context, key string) (string, error)

	// Del removes keys
	Del(ctx context.Context, keys ...string) error

	// TTL returns the remaining time to live of a key
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping checks the connection to Redis
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}
