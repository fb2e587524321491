package ports

import (
	"context"
	"time"
)

// Cache is a key/value cache port, implemented by cache.RedisCache. No
// scheduling path reads through it; cmd/server uses it only to hand the
// Redis client to the health checks.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
