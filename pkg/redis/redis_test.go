package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", []byte("v"), time.Minute))

	n, err := cache.DeleteByPrefix(ctx, "ranking:")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLocker_DisabledAlwaysAcquires(t *testing.T) {
	locker := NewLocker(disabledClient(t), "test")
	ctx := context.Background()

	lease, ok, err := locker.Acquire(ctx, "fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, lease.Release(ctx))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `ranking:a\*b\?\[x\]`, escapeGlob("ranking:a*b?[x]"))
	assert.Equal(t, "plain", escapeGlob("plain"))
}

func TestKeyLayout(t *testing.T) {
	client := disabledClient(t)

	tests := []struct {
		prefix    string
		wantCache string
		wantLease string
	}{
		{KeyPrefix, "scout:cache:ranking:fresh:x", "scout:lease:fp"},
		{"scout:", "scout:cache:ranking:fresh:x", "scout:lease:fp"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.wantCache, NewCache(client, tt.prefix).fullKey("ranking:fresh:x"))
			assert.Equal(t, tt.wantLease, NewLocker(client, tt.prefix).fullKey("fp"))
		})
	}
}

// Redis-backed tests run only when REDIS_ADDR is set
func liveClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(rdb)
}

func TestCache_DeleteByPrefix_Live(t *testing.T) {
	client := liveClient(t)
	cache := NewCache(client, "scout-test-"+time.Now().Format("150405.000"))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "ranking:cfgA:1", []byte("a1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "ranking:cfgA:2", []byte("a2"), time.Minute))
	require.NoError(t, cache.Set(ctx, "ranking:cfgB:1", []byte("b1"), time.Minute))

	n, err := cache.DeleteByPrefix(ctx, "ranking:cfgA:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, err := cache.Get(ctx, "ranking:cfgB:1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLocker_Exclusive_Live(t *testing.T) {
	client := liveClient(t)
	locker := NewLocker(client, "scout-test-"+time.Now().Format("150405.000"))
	ctx := context.Background()

	first, ok, err := locker.Acquire(ctx, "fp", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "fp", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not get the lease")

	require.NoError(t, first.Release(ctx))

	held, err := locker.Held(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, held)
}
