package services

import (
	"fmt"
	"path"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is the in-process Cache used when Redis is disabled. Expired
// entries are dropped lazily on access.
type MemoryCache struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: xsync.NewMapOf[string, memoryEntry](),
		now:     time.Now,
	}
}

func (mc *MemoryCache) entry(value any, ttl time.Duration) memoryEntry {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	e := memoryEntry{value: s}
	if ttl > 0 {
		e.expiresAt = mc.now().Add(ttl)
	}
	return e
}

func (mc *MemoryCache) Get(key string) (string, error) {
	e, ok := mc.entries.Load(key)
	if !ok {
		return "", nil
	}
	if e.expired(mc.now()) {
		mc.entries.Delete(key)
		return "", nil
	}
	return e.value, nil
}

func (mc *MemoryCache) Set(key string, value any, ttl time.Duration) error {
	mc.entries.Store(key, mc.entry(value, ttl))
	return nil
}

func (mc *MemoryCache) Delete(keys ...string) error {
	for _, key := range keys {
		mc.entries.Delete(key)
	}
	return nil
}

// DeletePattern accepts the same glob syntax as Redis SCAN MATCH for the
// patterns this package uses (*, ?, [...]).
func (mc *MemoryCache) DeletePattern(pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	mc.entries.Range(func(key string, _ memoryEntry) bool {
		if ok, _ := path.Match(pattern, key); ok {
			mc.entries.Delete(key)
		}
		return true
	})
	return nil
}

func (mc *MemoryCache) IncrementRateLimit(ip, endpoint string, ttl time.Duration) (int, error) {
	now := mc.now()
	var count int
	mc.entries.Compute(rateLimitKey(ip, endpoint), func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if !loaded || old.expired(now) {
			count = 1
			return memoryEntry{value: "1", expiresAt: now.Add(ttl)}, false
		}
		fmt.Sscan(old.value, &count)
		count++
		old.value = fmt.Sprint(count)
		return old, false
	})
	return count, nil
}

func (mc *MemoryCache) Ping() error {
	return nil
}

func (mc *MemoryCache) Close() error {
	mc.entries.Clear()
	return nil
}
