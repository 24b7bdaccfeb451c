package models

import "time"

// KVEntry is one row of the persistent key/value store
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for KVEntry Model
func (KVEntry) TableName() string {
	return "kv_entries"
}
