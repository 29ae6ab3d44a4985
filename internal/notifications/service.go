package notifications

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"github.com/google/uuid"
)

// Service defines notification list/read operations for the store operator.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Stats(ctx context.Context) (*Stats, error)
	Create(ctx context.Context, input CreateInput) (*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	MarkAllRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
	GenerateDemo(ctx context.Context) ([]Notification, error)
}

// ListParams filters the notification list.
type ListParams struct {
	UnreadOnly bool
	Type       *enums.NotificationType
	Limit      int
}

// ListResult wraps returned notifications with counts.
type ListResult struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	UnreadCount   int            `json:"unread_count"`
}

// Stats summarizes the stored notifications.
type Stats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByType     map[string]int `json:"by_type"`
	ByPriority map[string]int `json:"by_priority"`
}

// CreateInput is the payload for a new notification.
type CreateInput struct {
	Type      enums.NotificationType
	Title     string
	Message   string
	Priority  enums.NotificationPriority
	ActionURL *string
	Metadata  map[string]any
}

type service struct {
	store  kvstore.Store
	userID string
	now    func() time.Time
	mu     sync.Mutex
}

// NewService wires notifications for a single recipient.
func NewService(store kvstore.Store, userID string) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification store required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification recipient required")
	}
	return &service{store: store, userID: userID, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}

	filtered := make([]Notification, 0, len(items))
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
		if params.UnreadOnly && n.Read {
			continue
		}
		if params.Type != nil && n.Type != *params.Type {
			continue
		}
		filtered = append(filtered, n)
	}
	total := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return &ListResult{Notifications: filtered, Total: total, UnreadCount: unread}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Total: len(items), ByType: map[string]int{}, ByPriority: map[string]int{}}
	for _, n := range items {
		if !n.Read {
			stats.Unread++
		}
		stats.ByType[n.Type.String()]++
		stats.ByPriority[n.Priority.String()]++
	}
	return stats, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Notification, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid notification type '%s'", input.Type).
			WithDetails(map[string]any{"valid_types": enums.NotificationTypes()})
	}
	if input.Priority == "" {
		input.Priority = enums.NotificationPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid notification priority '%s'", input.Priority).
			WithDetails(map[string]any{"valid_priorities": enums.NotificationPriorities()})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	n := Notification{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Title:     title,
		Message:   strings.TrimSpace(input.Message),
		Priority:  input.Priority,
		ActionURL: input.ActionURL,
		Metadata:  input.Metadata,
		CreatedAt: s.now().UTC(),
	}

	err := s.mutate(ctx, func(items []Notification) ([]Notification, error) {
		return append([]Notification{n}, items...), nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	var updated *Notification
	err := s.mutate(ctx, func(items []Notification) ([]Notification, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if !items[i].Read {
				now := s.now().UTC()
				items[i].Read = true
				items[i].ReadAt = &now
			}
			copied := items[i]
			updated = &copied
			return items, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Notification not found")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkAllRead(ctx context.Context) (int, error) {
	count := 0
	err := s.mutate(ctx, func(items []Notification) ([]Notification, error) {
		now := s.now().UTC()
		for i := range items {
			if !items[i].Read {
				items[i].Read = true
				items[i].ReadAt = &now
				count++
			}
		}
		return items, nil
	})
	return count, err
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(items []Notification) ([]Notification, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Notification not found")
	})
}

func (s *service) UnreadCount(ctx context.Context) (int, error) {
	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *service) GenerateDemo(ctx context.Context) ([]Notification, error) {
	created := make([]Notification, 0, len(demoNotifications))
	for _, input := range demoNotifications {
		n, err := s.Create(ctx, input)
		if err != nil {
			return nil, err
		}
		created = append(created, *n)
	}
	return created, nil
}

func (s *service) load(ctx context.Context) ([]Notification, error) {
	items, err := loadList(ctx, s.store, s.userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notifications")
	}
	return items, nil
}

// mutate serializes read-modify-write cycles within this process.
func (s *service) mutate(ctx context.Context, fn func([]Notification) ([]Notification, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	if err := saveList(ctx, s.store, s.userID, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notifications")
	}
	return nil
}

var demoNotifications = []CreateInput{
	{
		Type:     enums.NotificationTypeOrder,
		Title:    "New order received",
		Message:  "Order #1042 for LED Sunset Lamp ($29.99) was just paid.",
		Priority: enums.NotificationPriorityHigh,
	},
	{
		Type:     enums.NotificationTypeAlert,
		Title:    "Low inventory",
		Message:  "Mini Projector has only 3 units left.",
		Priority: enums.NotificationPriorityUrgent,
	},
	{
		Type:     enums.NotificationTypeInsight,
		Title:    "Trending product detected",
		Message:  "Cloud Slides trend score jumped to 91.",
		Priority: enums.NotificationPriorityMedium,
	},
	{
		Type:     enums.NotificationTypeIntegration,
		Title:    "Shopify sync complete",
		Message:  "Synced 24 products and 8 orders.",
		Priority: enums.NotificationPriorityLow,
	},
	{
		Type:     enums.NotificationTypeSystem,
		Title:    "Weekly report ready",
		Message:  "Your weekly performance summary is ready to review.",
		Priority: enums.NotificationPriorityLow,
	},
}
