package configstore

import "gorm.io/gorm"

// kvRow is a single namespaced scalar setting: the admin password hash,
// the trigger key, the fallback key, and the retry budget each occupy
// one row keyed by a fixed name.
type kvRow struct {
	Name  string `gorm:"primaryKey;type:varchar(64)"`
	Value string `gorm:"type:text"`
}

func (kvRow) TableName() string { return "gateway_settings" }

const (
	kvAdminHash     = "admin_hash"
	kvTriggerKey    = "trigger_key"
	kvFallbackKey   = "fallback_key"
	kvRetryBudget   = "retry_budget"
	kvFallbackModel = "fallback_model_set" // JSON array, single row
)

// poolEntryRow is one primary-pool credential.
type poolEntryRow struct {
	ID         string `gorm:"primaryKey;type:varchar(64)"`
	Credential string `gorm:"type:text"`
}

func (poolEntryRow) TableName() string { return "gateway_pool_entries" }

// cursorRow holds the rotation cursor as a single counter row, updated
// under an optimistic version check (spec.md §5's CAS requirement).
type cursorRow struct {
	ID      int   `gorm:"primaryKey"`
	Cursor  int64 `gorm:"bigint"`
	Version int64 `gorm:"bigint"`
}

func (cursorRow) TableName() string { return "gateway_cursor" }

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&kvRow{}, &poolEntryRow{}, &cursorRow{})
}
