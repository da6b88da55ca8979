package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"storefront_server/structs"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

// Cache is the key/value store behind product and user caching, session
// revocation and rate limiting. Get returns "" with a nil error on a miss.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value any, ttl time.Duration) error
	Delete(keys ...string) error
	DeletePattern(pattern string) error
	IncrementRateLimit(ip, endpoint string, ttl time.Duration) (int, error)
	Ping() error
	Close() error
}

var redisCtx = context.Background()

// CacheService is the Redis backed Cache, with connection pooling and retry
// on transient network errors.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

var _ Cache = (*CacheService)(nil)

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: newRedisClient(cfg.Cache),
	}
}

func newRedisClient(cfg *structs.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
}

func (cs *CacheService) Close() error {
	return cs.client.Close()
}

// withRetry runs operation up to maxRetries+1 times with exponential backoff
// and jitter, retrying only connection level failures.
func (cs *CacheService) withRetry(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxRetries || !isRetryableCacheError(err) {
			break
		}

		backoff := min(100*(1<<attempt), 2000) // ms
		var jitterBytes [4]byte
		if _, err := rand.Read(jitterBytes[:]); err != nil {
			time.Sleep(time.Duration(backoff) * time.Millisecond)
			continue
		}
		jitter := int(binary.BigEndian.Uint32(jitterBytes[:]) % uint32(backoff/2+1))
		time.Sleep(time.Duration(backoff/2+jitter) * time.Millisecond)
	}

	if !isRetryableCacheError(lastErr) {
		return lastErr
	}
	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

func isRetryableCacheError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	errStr := err.Error()
	for _, retryable := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}
	return false
}

func (cs *CacheService) Set(key string, value any, ttl time.Duration) error {
	return cs.withRetry(func() error {
		return cs.client.Set(redisCtx, key, value, ttl).Err()
	}, 3)
}

func (cs *CacheService) Get(key string) (string, error) {
	var result string
	err := cs.withRetry(func() error {
		val, err := cs.client.Get(redisCtx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)
	if err != nil {
		return "", err
	}
	return result, nil
}

func (cs *CacheService) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return cs.withRetry(func() error {
		return cs.client.Del(redisCtx, keys...).Err()
	}, 3)
}

// DeletePattern removes every key matching a glob pattern using SCAN, so the
// server is never blocked the way KEYS would.
func (cs *CacheService) DeletePattern(pattern string) error {
	return cs.withRetry(func() error {
		var cursor uint64
		for {
			keys, next, err := cs.client.Scan(redisCtx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			if len(keys) > 0 {
				if err := cs.client.Del(redisCtx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
			}
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	}, 3)
}

// IncrementRateLimit bumps the counter for ip on endpoint. The window
// starts with the first hit.
func (cs *CacheService) IncrementRateLimit(ip, endpoint string, ttl time.Duration) (int, error) {
	key := rateLimitKey(ip, endpoint)

	var result int64
	err := cs.withRetry(func() error {
		val, err := cs.client.Incr(redisCtx, key).Result()
		if err != nil {
			return err
		}
		result = val
		if val == 1 {
			return cs.client.Expire(redisCtx, key, ttl).Err()
		}
		return nil
	}, 3)

	return int(result), err
}

func (cs *CacheService) Ping() error {
	return cs.withRetry(func() error {
		return cs.client.Ping(redisCtx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

// Keys

func rateLimitKey(ip, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
}

func productKey(id int64) string {
	return fmt.Sprintf("product:id:%d", id)
}

func productListKey() string {
	return "products:all"
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func revokedSessionKey(jti string) string {
	return fmt.Sprintf("session:revoked:%s", jti)
}

// fillGuard stops a cache fill from restoring data that was invalidated while
// the fill was loading it. Take a token before reading the store, and call
// invalidate before deleting keys.
type fillGuard struct {
	gen atomic.Uint64
}

func (g *fillGuard) token() uint64 {
	return g.gen.Load()
}

func (g *fillGuard) invalidate() {
	g.gen.Add(1)
}

// fill caches value unless an invalidation happened since token. An
// invalidation landing between the check and the Set is caught by the second
// check, which drops the key again.
func fill[T any](g *fillGuard, c Cache, key string, value T, ttl time.Duration, token uint64) error {
	if g.token() != token {
		return nil
	}
	if err := setJSON(c, key, value, ttl); err != nil {
		return err
	}
	if g.token() != token {
		return c.Delete(key)
	}
	return nil
}

func setJSON[T any](c Cache, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(key, string(data), ttl)
}

// getJSON returns nil, nil on a cache miss.
func getJSON[T any](c Cache, key string) (*T, error) {
	val, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	if val == "" {
		return nil, nil
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
