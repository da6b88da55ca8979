package services

import (
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pooledCache struct {
	*MemoryCache
}

func (pooledCache) GetConnectionStats() map[string]any {
	return map[string]any{"total_conns": uint32(3)}
}

func TestCacheHealthIncludesPoolStats(t *testing.T) {
	env := newTestEnv(t)
	hs := NewHealthService(gecho.NewDefaultLogger(), env.store, pooledCache{NewMemoryCache()})

	status, err := hs.GetCacheHealthStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, uint32(3), status.Pool["total_conns"])
}

func TestCacheHealthWithoutPool(t *testing.T) {
	env := newTestEnv(t)

	status, err := env.sm.HealthService.GetCacheHealthStatus()
	require.NoError(t, err)
	assert.Nil(t, status.Pool)
}

func TestRedisConnectionStatsKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	cs := &CacheService{client: client}

	stats := cs.GetConnectionStats()
	for _, key := range []string{"hits", "misses", "timeouts", "total_conns", "idle_conns", "stale_conns"} {
		assert.Contains(t, stats, key)
	}
	assert.Equal(t, uint32(0), stats["total_conns"])
}
