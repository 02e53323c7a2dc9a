package provider

import (
	"context"
	"time"
)

// ContextStore persists typed values under opaque string keys. The analysis
// cache uses it with either MemoryStore or redis.TypedStore.
//
// TTL of 0 means no expiration.
type ContextStore[C any] interface {
	// Load retrieves a value. Returns (nil, nil) if the key doesn't exist.
	Load(ctx context.Context, key string) (*C, error)
	// Save persists a value with optional TTL.
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	// Delete removes a value.
	Delete(ctx context.Context, key string) error
}
