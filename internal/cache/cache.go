// Package cache provides a small string cache for computed revenue payloads.
// Caching happens at the application layer, never inside the revenue engine.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized payloads under string keys. Implementations must be
// safe for concurrent use. A cache miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
