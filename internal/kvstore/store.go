// Package kvstore provides the persistent key/value store that the caches
// and persisted application state sit on. It plays the role browser local
// storage plays for a single-page app: one flat string namespace shared by
// every caller, with prefixes left to the caller.
package kvstore

import "errors"

// ErrQuotaExceeded is returned when a write of a new key would exceed the
// store's entry quota.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// Store is a flat string key/value store.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes a key if present.
	Delete(key string) error

	// Keys returns every key starting with prefix, in ascending order.
	Keys(prefix string) ([]string, error)
}
