package kvstore

import (
	"errors"
	"fmt"
	"strings"

	"design-system-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore is a Store persisted in a gorm database (SQLite in practice).
type SQLStore struct {
	db         *gorm.DB
	maxEntries int
}

// NewSQLStore wraps db. The kv_entries table must already be migrated.
// maxEntries <= 0 means no quota.
func NewSQLStore(db *gorm.DB, maxEntries int) *SQLStore {
	return &SQLStore{db: db, maxEntries: maxEntries}
}

// Get implements Store.Get.
func (s *SQLStore) Get(key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.Where("entry_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kvstore get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set implements Store.Set.
func (s *SQLStore) Set(key, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if s.maxEntries > 0 {
			var exists int64
			if err := tx.Model(&models.KVEntry{}).Where("entry_key = ?", key).Count(&exists).Error; err != nil {
				return fmt.Errorf("kvstore set %q: %w", key, err)
			}
			if exists == 0 {
				var total int64
				if err := tx.Model(&models.KVEntry{}).Count(&total).Error; err != nil {
					return fmt.Errorf("kvstore set %q: %w", key, err)
				}
				if total >= int64(s.maxEntries) {
					return ErrQuotaExceeded
				}
			}
		}

		entry := models.KVEntry{Key: key, Value: value}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("kvstore set %q: %w", key, err)
		}
		return nil
	})
}

// Delete implements Store.Delete.
func (s *SQLStore) Delete(key string) error {
	if err := s.db.Where("entry_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("kvstore delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Store.Keys.
func (s *SQLStore) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.Model(&models.KVEntry{}).
		Where("entry_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("entry_key asc").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("kvstore keys %q: %w", prefix, err)
	}
	// SQLite LIKE folds ASCII case
	matched := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// escapeLike escapes LIKE wildcards so prefixes such as "dsm_cache:" match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var _ Store = (*SQLStore)(nil)
