package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

const (
	minTrackingLen = 5
	maxTrackingLen = 100
)

// Service defines the admin order operations. Every status change goes through the transition allow-list.
type Service interface {
	List(ctx context.Context, input ListInput) ([]OrderDTO, error)
	Get(ctx context.Context, id int64) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (*StatusUpdateResult, error)
	AddTracking(ctx context.Context, id int64, trackingNumber string, trackingURL *string) (*TrackingResult, error)
	MarkDelivered(ctx context.Context, id int64) (*DeliveryResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx, input.Status, pagination.Params{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	row, err := s.repo.FindWithProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (*StatusUpdateResult, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, status); err != nil {
		return nil, err
	}
	result := &StatusUpdateResult{OrderID: id, PreviousStatus: order.Status, Status: status}
	if order.Status == status {
		return result, nil
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	result.Changed = true
	return result, nil
}

func (s *service) AddTracking(ctx context.Context, id int64, trackingNumber string, trackingURL *string) (*TrackingResult, error) {
	number := strings.TrimSpace(trackingNumber)
	if len(number) < minTrackingLen || len(number) > maxTrackingLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking_number must be 5-100 characters").
			WithDetails(map[string]any{"field": "tracking_number"})
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, enums.OrderStatusShipped); err != nil {
		return nil, err
	}
	shippedAt := s.now().UTC()
	updates := map[string]any{
		"tracking_number": number,
		"status":          enums.OrderStatusShipped,
		"shipped_at":      shippedAt,
	}
	if trackingURL != nil {
		updates["tracking_url"] = *trackingURL
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tracking")
	}
	return &TrackingResult{
		Success:        true,
		OrderID:        id,
		TrackingNumber: number,
		TrackingURL:    trackingURL,
		Status:         enums.OrderStatusShipped,
		ShippedAt:      shippedAt,
	}, nil
}

func (s *service) MarkDelivered(ctx context.Context, id int64) (*DeliveryResult, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, enums.OrderStatusDelivered); err != nil {
		return nil, err
	}
	deliveredAt := s.now().UTC()
	if err := s.repo.Update(ctx, id, map[string]any{
		"status":       enums.OrderStatusDelivered,
		"delivered_at": deliveredAt,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark delivered")
	}
	return &DeliveryResult{Success: true, OrderID: id, Status: enums.OrderStatusDelivered, DeliveredAt: deliveredAt}, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	return order, nil
}

func notFoundOr(err error, msg string) error {
	return pkgerrors.FromStore(err, "Order not found", msg)
}
