package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only if the caller still owns it
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker hands out short-lived exclusive leases keyed by name
// ⭐ SSOT: 분산 상호배제(리스)는 여기서만
type Locker struct {
	client *Client
	prefix string
}

// Lease is an acquired lock; Release is idempotent
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// NewLocker creates a lease manager. Keys are stored as "<prefix>:lease:<name>".
func NewLocker(client *Client, prefix string) *Locker {
	return &Locker{client: client, prefix: strings.TrimRight(prefix, ":")}
}

func (l *Locker) fullKey(name string) string {
	return fmt.Sprintf("%s:lease:%s", l.prefix, name)
}

// Acquire tries once to take the lease. ok=false means another holder owns it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, bool, error) {
	key := l.fullKey(name)
	token := uuid.NewString()

	if !l.client.Enabled() {
		// Redis 비활성: 단일 인스턴스 가정, 항상 획득
		return &Lease{locker: l, key: key, token: token}, true, nil
	}

	ok, err := l.client.Redis().SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("lease acquire %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	return &Lease{locker: l, key: key, token: token}, true, nil
}

// Held reports whether anyone currently owns the named lease
func (l *Locker) Held(ctx context.Context, name string) (bool, error) {
	if !l.client.Enabled() {
		return false, nil
	}

	err := l.client.Redis().Get(ctx, l.fullKey(name)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lease check %s: %w", name, err)
	}
	return true, nil
}

// Release gives the lease back if it is still ours
func (ls *Lease) Release(ctx context.Context) error {
	if ls == nil || !ls.locker.client.Enabled() {
		return nil
	}

	if err := releaseScript.Run(ctx, ls.locker.client.Redis(), []string{ls.key}, ls.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lease release: %w", err)
	}
	return nil
}
