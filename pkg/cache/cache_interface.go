package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used for cache-aside reads and token revocation.
// Values are JSON encoded by implementations.
type Cache interface {
	// Get decodes the cached value into dest. The bool reports a hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern such as "property:*".
	DeletePattern(ctx context.Context, pattern string) error

	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error
}
