package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localBackends(t *testing.T) map[string]Cache {
	t.Helper()
	config := LocalConfig{
		MaxSize:           100,
		DefaultExpiration: 5 * time.Minute,
		CleanupInterval:   10 * time.Minute,
	}
	backends := map[string]Cache{
		"local":   NewLocalCache(config),
		"gocache": NewGoCache(config),
	}
	t.Cleanup(func() {
		for _, c := range backends {
			_ = c.Close()
		}
	})
	return backends
}

func TestLocalBackends(t *testing.T) {
	ctx := context.Background()

	for name, c := range localBackends(t) {
		t.Run(name+"/set and get", func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))

			v, found, err := c.Get(ctx, "k1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("v1"), v)
		})

		t.Run(name+"/values are copied", func(t *testing.T) {
			in := []byte("abc")
			require.NoError(t, c.Set(ctx, "k2", in, time.Minute))
			in[0] = 'z'

			v, _, _ := c.Get(ctx, "k2")
			assert.Equal(t, []byte("abc"), v)
			v[1] = 'z'

			again, _, _ := c.Get(ctx, "k2")
			assert.Equal(t, []byte("abc"), again)
		})

		t.Run(name+"/delete", func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k3", []byte("v"), time.Minute))
			require.NoError(t, c.Delete(ctx, "k3"))
			require.NoError(t, c.Delete(ctx, "never-set"))

			_, found, err := c.Get(ctx, "k3")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLocalCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{MaxSize: 2, DefaultExpiration: time.Minute})
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, found, _ := c.Get(ctx, "b")
	assert.False(t, found, "b should have been evicted")
	_, found, _ = c.Get(ctx, "a")
	assert.True(t, found)
	assert.Equal(t, 2, c.(*localCache).Len())
}

func TestLocalCacheUnboundedIgnoresMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{MaxSize: 2, Unbounded: true, DefaultExpiration: time.Minute})
	defer c.Close()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	_, found, _ := c.Get(ctx, "a")
	assert.True(t, found)
	assert.Equal(t, 4, c.(*localCache).Len())
}

func TestGoCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewGoCache(LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 20*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, found, _ := c.Get(ctx, "short")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestNewCache(t *testing.T) {
	cfg := DefaultConfig()

	c, err := NewCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &localCache{}, c)

	cfg.Type = "gocache"
	c, err = NewCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &goCacheWrapper{}, c)

	cfg.Type = "memcached"
	_, err = NewCache(cfg)
	assert.Error(t, err)
}
