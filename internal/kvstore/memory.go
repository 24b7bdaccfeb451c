package kvstore

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a map-backed Store. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]string
	maxEntries int

	// failWrites makes every Set fail; tests use it to simulate an unavailable store.
	failWrites error
}

// NewMemoryStore returns an empty store. maxEntries <= 0 means no quota.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]string),
		maxEntries: maxEntries,
	}
}

// FailWrites makes subsequent writes return err; nil restores normal writes.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

// Get implements Store.Get.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	if _, exists := s.items[key]; !exists && s.maxEntries > 0 && len(s.items) >= s.maxEntries {
		return ErrQuotaExceeded
	}
	s.items[key] = value
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Keys implements Store.Keys.
func (s *MemoryStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ Store = (*MemoryStore)(nil)
