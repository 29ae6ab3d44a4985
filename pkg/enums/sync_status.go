package enums

import "fmt"

// SyncStatus tracks the connection/sync state of an integration.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
	SyncStatusReady   SyncStatus = "ready"
)

var validSyncStatuses = []SyncStatus{
	SyncStatusPending,
	SyncStatusSyncing,
	SyncStatusSynced,
	SyncStatusError,
	SyncStatusReady,
}

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncStatus.
func (s SyncStatus) IsValid() bool {
	for _, candidate := range validSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// SyncStatuses lists the accepted values, in declaration order.
func SyncStatuses() []string {
	out := make([]string, 0, len(validSyncStatuses))
	for _, v := range validSyncStatuses {
		out = append(out, string(v))
	}
	return out
}

// ParseSyncStatus converts raw input into a SyncStatus.
func ParseSyncStatus(value string) (SyncStatus, error) {
	for _, candidate := range validSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync status %q", value)
}
