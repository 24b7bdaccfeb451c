package cache

import (
	"encoding/json"
	"time"

	"design-system-api/internal/kvstore"
)

// entry is the stored form of a cached value. Timestamps are Unix milliseconds.
type entry struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"createdAt"`
	ExpiresAt int64           `json:"expiresAt"`
}

// Expiring is a TTL cache over a kvstore.Store, confined to one key prefix.
// Expired entries are removed lazily when read.
type Expiring struct {
	namespace
	ttl time.Duration
}

// NewExpiring constructs an Expiring cache. Zero options fall back to
// DefaultCachePrefix and DefaultTTL.
func NewExpiring(store kvstore.Store, opts Options) *Expiring {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Expiring{
		namespace: newNamespace(store, opts, DefaultCachePrefix, "cache"),
		ttl:       ttl,
	}
}

// Prefix returns the namespace prefix.
func (c *Expiring) Prefix() string { return c.prefix }

// TTL returns the default entry lifetime.
func (c *Expiring) TTL() time.Duration { return c.ttl }

// Get implements Cache.Get. Expired and unreadable entries are deleted and
// reported as absent.
func (c *Expiring) Get(key string) ([]byte, bool) {
	e, result := c.read(key)
	switch result {
	case "hit":
		c.metrics.CacheLookup(c.prefix, result)
		return e.Data, true
	case "expired", "corrupt":
		c.remove(key)
	}
	c.metrics.CacheLookup(c.prefix, result)
	return nil, false
}

// Set implements Cache.Set. Errors are logged and swallowed.
func (c *Expiring) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.writeFailed(key, err)
		return
	}
	created := now()
	raw, err := json.Marshal(entry{
		Data:      data,
		CreatedAt: created.UnixMilli(),
		ExpiresAt: created.Add(ttl).UnixMilli(),
	})
	if err != nil {
		c.writeFailed(key, err)
		return
	}
	if err := c.store.Set(c.key(key), string(raw)); err != nil {
		c.writeFailed(key, err)
	}
}

// Remove implements Cache.Remove.
func (c *Expiring) Remove(key string) {
	c.remove(key)
}

// RemovePrefix implements Cache.RemovePrefix.
func (c *Expiring) RemovePrefix(prefix string) {
	c.removePrefix(prefix)
}

// Clear implements Cache.Clear.
func (c *Expiring) Clear() {
	c.removePrefix("")
}

// IsExpired implements Cache.IsExpired. It does not delete anything.
func (c *Expiring) IsExpired(key string) bool {
	_, result := c.read(key)
	return result != "hit"
}

// read loads and classifies an entry as hit, miss, expired or corrupt.
func (c *Expiring) read(key string) (entry, string) {
	raw, ok, err := c.store.Get(c.key(key))
	if err != nil {
		c.logger.Warn("read failed", "key", key, "error", err)
		return entry{}, "miss"
	}
	if !ok {
		return entry{}, "miss"
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Data == nil {
		return entry{}, "corrupt"
	}
	if now().UnixMilli() > e.ExpiresAt {
		return entry{}, "expired"
	}
	return e, "hit"
}

func (c *Expiring) writeFailed(key string, err error) {
	c.metrics.CacheWriteFailure(c.prefix)
	c.logger.Warn("cache write failed", "key", key, "error", err)
}

// Lookup decodes a cached value into T. Entries that no longer decode into T
// are dropped and reported as a miss.
func Lookup[T any](c Cache, key string) (T, bool) {
	var out T
	data, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.Remove(key)
		var zero T
		return zero, false
	}
	return out, true
}

var _ Cache = (*Expiring)(nil)
