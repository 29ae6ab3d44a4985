package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/checkout"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

type notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

type ServiceParams struct {
	Orders   orders.Repository
	Products products.Repository
	Notifier notifier
	Logger   *logger.Logger
}

type Service struct {
	orders   orders.Repository
	products products.Repository
	notifier notifier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repo required")
	}
	return &Service{
		orders:   params.Orders,
		products: params.Products,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		return s.handleCompleted(ctx, &sess)
	case stripe.EventTypeCheckoutSessionExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		return s.handleExpired(ctx, &sess)
	default:
		return nil
	}
}

// handleCompleted creates the paid order once per checkout session. A replay
// returns early on the session lookup; a concurrent insert trips the unique index.
func (s *Service) handleCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	if sess.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	existing, err := s.orders.FindByStripeSessionID(ctx, sess.ID)
	if err == nil && existing != nil {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order by session")
	}

	var productID *int64
	if slug := strings.TrimSpace(sess.Metadata[checkout.MetadataProductSlug]); slug != "" {
		product, err := s.products.FindBySlug(ctx, slug)
		switch {
		case err == nil:
			productID = &product.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.warn(ctx, "stripe.webhook.product_missing", map[string]any{"product_slug": slug})
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
	}

	sessionID := sess.ID
	order := &models.Order{
		ProductID:       productID,
		Email:           customerEmail(sess),
		AmountCents:     sess.AmountTotal,
		Status:          enums.OrderStatusPaid,
		StripeSessionID: &sessionID,
	}
	if _, err := s.orders.Create(ctx, order); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	s.notifyOrder(ctx, order)
	return nil
}

func (s *Service) handleExpired(ctx context.Context, sess *stripe.CheckoutSession) error {
	if sess.ID == "" {
		return nil
	}
	order, err := s.orders.FindByStripeSessionID(ctx, sess.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order by session")
	}
	if order.Status == enums.OrderStatusAbandoned {
		return nil
	}
	if !orders.CanTransition(order.Status, enums.OrderStatusAbandoned) {
		s.warn(ctx, "stripe.webhook.expired_ignored", map[string]any{
			"order_id": order.ID,
			"status":   order.Status.String(),
		})
		return nil
	}
	if err := s.orders.Update(ctx, order.ID, map[string]any{"status": enums.OrderStatusAbandoned}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "abandon order")
	}
	return nil
}

func (s *Service) notifyOrder(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Create(ctx, notifications.CreateInput{
		Type:     enums.NotificationTypeOrder,
		Title:    "New order received",
		Message:  fmt.Sprintf("Order #%d paid for %s by %s", order.ID, types.Dollars(order.AmountCents), order.Email),
		Priority: enums.NotificationPriorityHigh,
		Metadata: map[string]any{"order_id": order.ID},
	})
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "stripe.webhook.notify_failed", err)
	}
}

func (s *Service) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}

func customerEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	return "unknown@checkout.local"
}
