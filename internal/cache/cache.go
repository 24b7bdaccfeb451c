// Package cache implements namespaced caches over a kvstore.Store: an
// expiring cache for remote API responses and an indefinite store for
// persisted application state.
package cache

import (
	"log/slog"
	"strings"
	"time"

	"design-system-api/internal/kvstore"
	"design-system-api/internal/logging"
	"design-system-api/internal/metrics"
)

// DefaultTTL is how long remote API responses stay fresh.
const DefaultTTL = 10 * time.Minute

// Default namespace prefixes. Neither may be a prefix of the other.
const (
	DefaultCachePrefix = "dsm_cache:"
	DefaultStatePrefix = "dsm_state:"
)

// Cache defines the API response cache contract used by the remote clients.
// Failures never surface: a failed write shows up as a miss on the next read.
type Cache interface {
	// Get returns the stored JSON value if present and not expired.
	Get(key string) ([]byte, bool)

	// Set stores value with the given TTL. If ttl <= 0 the cache default applies.
	Set(key string, value any, ttl time.Duration)

	// Remove deletes a key if present.
	Remove(key string)

	// RemovePrefix deletes every key that starts with prefix.
	RemovePrefix(prefix string)

	// Clear removes every entry in this cache's namespace and nothing else.
	Clear()

	// IsExpired reports whether a key is absent or past its expiry.
	IsExpired(key string) bool
}

// Options controls construction of the namespaced caches.
type Options struct {
	// Prefix is prepended to every key written to the store.
	Prefix string

	// TTL is the default entry lifetime. Only Expiring uses it.
	TTL time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Overlaps reports whether two namespace prefixes would collide on Clear.
func Overlaps(a, b string) bool {
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// namespace is the prefix bookkeeping shared by Expiring and State.
type namespace struct {
	store   kvstore.Store
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newNamespace(store kvstore.Store, opts Options, fallbackPrefix, component string) namespace {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = fallbackPrefix
	}
	return namespace{
		store:   store,
		prefix:  prefix,
		logger:  logging.Component(opts.Logger, component).With("namespace", prefix),
		metrics: opts.Metrics,
	}
}

func (n namespace) key(k string) string {
	return n.prefix + k
}

func (n namespace) remove(k string) {
	if err := n.store.Delete(n.key(k)); err != nil {
		n.logger.Warn("remove failed", "key", k, "error", err)
	}
}

func (n namespace) removePrefix(sub string) {
	keys, err := n.store.Keys(n.key(sub))
	if err != nil {
		n.logger.Warn("list keys failed", "prefix", sub, "error", err)
		return
	}
	for _, k := range keys {
		if err := n.store.Delete(k); err != nil {
			n.logger.Warn("remove failed", "key", k, "error", err)
		}
	}
}
