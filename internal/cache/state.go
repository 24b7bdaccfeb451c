package cache

import (
	"encoding/json"

	"design-system-api/internal/kvstore"
)

// State persists application state without expiry: audit fix/ignore marks,
// votes, submitted requests, dismissed alerts and the issue and contribution
// boards. Values are JSON encoded.
type State struct {
	namespace
}

// Keys of the persisted application state.
const (
	KeyAuditIssues     = "audit_issues"
	KeyUserVotes       = "user_votes"
	KeyRequests        = "requests"
	KeyDismissedAlerts = "dismissed_alerts"
	KeyIssues          = "issues"
	KeyBranches        = "branches"
	KeyContributions   = "contributions"
)

// NewState constructs a State store. An empty prefix falls back to DefaultStatePrefix.
func NewState(store kvstore.Store, opts Options) *State {
	return &State{namespace: newNamespace(store, opts, DefaultStatePrefix, "state")}
}

// Prefix returns the namespace prefix.
func (s *State) Prefix() string { return s.prefix }

// Get decodes the value under key into out. It reports false when the key
// is missing or the stored value does not decode.
func (s *State) Get(key string, out any) bool {
	raw, ok, err := s.store.Get(s.key(key))
	if err != nil {
		s.logger.Error("read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Error("stored value unreadable", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key. Errors are logged and swallowed.
func (s *State) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err == nil {
		err = s.store.Set(s.key(key), string(data))
	}
	if err != nil {
		s.metrics.CacheWriteFailure(s.prefix)
		s.logger.Error("write failed", "key", key, "error", err)
	}
}

// Remove deletes key.
func (s *State) Remove(key string) {
	s.remove(key)
}

// Clear removes every key in this namespace and nothing else.
func (s *State) Clear() {
	s.removePrefix("")
}
