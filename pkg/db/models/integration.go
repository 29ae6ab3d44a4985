package models

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Integration is a connected external store. Credentials hold the sealed JSON
// blob produced by pkg/security and are never serialized to clients.
type Integration struct {
	ID             int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	Platform       enums.IntegrationPlatform `gorm:"column:platform;not null"`
	StoreName      string                    `gorm:"column:store_name;not null"`
	StoreURL       string                    `gorm:"column:store_url;not null"`
	Credentials    *string                   `gorm:"column:credentials"`
	SyncStatus     enums.SyncStatus          `gorm:"column:sync_status;not null;default:pending"`
	SyncError      *string                   `gorm:"column:sync_error"`
	IsActive       bool                      `gorm:"column:is_active;not null"`
	LastSyncAt     *time.Time                `gorm:"column:last_sync_at"`
	ProductsSynced int                       `gorm:"column:products_synced;not null;default:0"`
	OrdersSynced   int                       `gorm:"column:orders_synced;not null;default:0"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
