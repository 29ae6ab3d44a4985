package integrations

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/security"
)

// Sync scopes.
const (
	SyncAll      = "all"
	SyncProducts = "products"
	SyncOrders   = "orders"
)

// ConnectInput registers a store.
type ConnectInput struct {
	Platform    enums.IntegrationPlatform `json:"platform" validate:"required"`
	StoreName   string                    `json:"store_name" validate:"required,min=1,max=255"`
	StoreURL    string                    `json:"store_url" validate:"required,max=500"`
	AccessToken *string                   `json:"access_token" validate:"omitempty,max=500"`
	APIKey      *string                   `json:"api_key" validate:"omitempty,max=500"`
	APISecret   *string                   `json:"api_secret" validate:"omitempty,max=500"`
}

func (in ConnectInput) credentials() map[string]string {
	return credentialMap(in.AccessToken, in.APIKey, in.APISecret)
}

// UpdateInput patches an integration. Credentials given here replace the
// stored ones key by key.
type UpdateInput struct {
	StoreName   *string `json:"store_name" validate:"omitempty,min=1,max=255"`
	IsActive    *bool   `json:"is_active"`
	AccessToken *string `json:"access_token" validate:"omitempty,max=500"`
	APIKey      *string `json:"api_key" validate:"omitempty,max=500"`
	APISecret   *string `json:"api_secret" validate:"omitempty,max=500"`
}

func (in UpdateInput) credentials() map[string]string {
	return credentialMap(in.AccessToken, in.APIKey, in.APISecret)
}

func credentialMap(accessToken, apiKey, apiSecret *string) map[string]string {
	out := map[string]string{}
	for key, v := range map[string]*string{CredAccessToken: accessToken, CredAPIKey: apiKey, CredAPISecret: apiSecret} {
		if v != nil && *v != "" {
			out[key] = *v
		}
	}
	return out
}

// IntegrationDTO is the client view of an integration. Secrets are masked.
type IntegrationDTO struct {
	ID             int64                     `json:"id"`
	Platform       enums.IntegrationPlatform `json:"platform"`
	StoreName      string                    `json:"store_name"`
	StoreURL       string                    `json:"store_url"`
	IsActive       bool                      `json:"is_active"`
	IsConnected    bool                      `json:"is_connected"`
	SyncStatus     enums.SyncStatus          `json:"sync_status"`
	SyncError      *string                   `json:"sync_error"`
	LastSyncAt     *time.Time                `json:"last_sync_at"`
	ProductsSynced int                       `json:"products_synced"`
	OrdersSynced   int                       `json:"orders_synced"`
	Credentials    map[string]string         `json:"credentials"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// TestResult reports a connection test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SyncResult reports a completed sync.
type SyncResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ProductsSynced int    `json:"products_synced"`
	OrdersSynced   int    `json:"orders_synced"`
}

// ActionResult is a generic success message.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Stats is the sync summary of one integration.
type Stats struct {
	Platform       enums.IntegrationPlatform `json:"platform"`
	IsConnected    bool                      `json:"is_connected"`
	SyncStatus     enums.SyncStatus          `json:"sync_status"`
	LastSyncAt     *time.Time                `json:"last_sync_at"`
	ProductsSynced int                       `json:"products_synced"`
	OrdersSynced   int                       `json:"orders_synced"`
	SyncError      *string                   `json:"sync_error"`
}

func isConnected(row *models.Integration) bool {
	if !row.IsActive {
		return false
	}
	switch row.SyncStatus {
	case enums.SyncStatusSynced, enums.SyncStatusReady, enums.SyncStatusSyncing:
		return true
	}
	return false
}

func toDTO(row *models.Integration, creds map[string]string) IntegrationDTO {
	masked := make(map[string]string, len(creds))
	for k, v := range creds {
		masked[k] = security.Mask(v)
	}
	return IntegrationDTO{
		ID:             row.ID,
		Platform:       row.Platform,
		StoreName:      row.StoreName,
		StoreURL:       row.StoreURL,
		IsActive:       row.IsActive,
		IsConnected:    isConnected(row),
		SyncStatus:     row.SyncStatus,
		SyncError:      row.SyncError,
		LastSyncAt:     row.LastSyncAt,
		ProductsSynced: row.ProductsSynced,
		OrdersSynced:   row.OrdersSynced,
		Credentials:    masked,
		CreatedAt:      row.CreatedAt,
	}
}
