package rankcache

import (
	"context"
	"time"

	"github.com/wonny/scout/pkg/redis"
)

// Store is the opaque key/value store behind the cache.
// Satisfied by *redis.Cache and *MemoryStore.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// Lease is a held exclusive lock
type Lease interface {
	Release(ctx context.Context) error
}

// Locker provides the cross-instance lease keyed by fingerprint
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, bool, error)
	Held(ctx context.Context, name string) (bool, error)
}

var (
	_ Store = (*redis.Cache)(nil)
	_ Store = (*MemoryStore)(nil)
)

// redisLocker adapts *redis.Locker to Locker
type redisLocker struct {
	locker *redis.Locker
}

// NewRedisLocker wraps a redis lease manager
func NewRedisLocker(l *redis.Locker) Locker {
	return &redisLocker{locker: l}
}

func (r *redisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (Lease, bool, error) {
	lease, ok, err := r.locker.Acquire(ctx, name, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return lease, true, nil
}

func (r *redisLocker) Held(ctx context.Context, name string) (bool, error) {
	return r.locker.Held(ctx, name)
}
