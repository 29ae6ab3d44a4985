package notifications

import (
	"context"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
)

// MaxPerUser caps the stored list; the oldest entries fall off.
const MaxPerUser = 100

// Notification is one in-app message. Lists are stored newest first.
type Notification struct {
	ID        string                     `json:"id"`
	Type      enums.NotificationType     `json:"type"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	Priority  enums.NotificationPriority `json:"priority"`
	Read      bool                       `json:"read"`
	ActionURL *string                    `json:"action_url,omitempty"`
	Metadata  map[string]any             `json:"metadata,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	ReadAt    *time.Time                 `json:"read_at,omitempty"`
}

func listKey(userID string) string {
	return "notifications:" + userID
}

func loadList(ctx context.Context, store kvstore.Store, userID string) ([]Notification, error) {
	var items []Notification
	if _, err := kvstore.GetJSON(ctx, store, listKey(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveList(ctx context.Context, store kvstore.Store, userID string, items []Notification) error {
	if len(items) > MaxPerUser {
		items = items[:MaxPerUser]
	}
	return kvstore.SetJSON(ctx, store, listKey(userID), items, 0)
}
