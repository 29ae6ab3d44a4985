package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubNotifier struct {
	created []notifications.CreateInput
}

func (s *stubNotifier) Create(_ context.Context, input notifications.CreateInput) (*notifications.Notification, error) {
	s.created = append(s.created, input)
	return &notifications.Notification{ID: uuid.NewString(), Type: input.Type, Title: input.Title}, nil
}

func setup(t *testing.T) (*Service, *gorm.DB, *stubNotifier) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:stripewebhook_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}))
	notifier := &stubNotifier{}
	svc, err := NewService(ServiceParams{
		Orders:   orders.NewRepository(db),
		Products: products.NewRepository(db),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return svc, db, notifier
}

func checkoutEvent(t *testing.T, eventType stripe.EventType, payload map[string]any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &stripe.Event{ID: "evt_" + uuid.NewString(), Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func completedPayload(sessionID string) map[string]any {
	return map[string]any{
		"id":               sessionID,
		"object":           "checkout.session",
		"amount_total":     2999,
		"customer_details": map[string]any{"email": "buyer@example.com"},
		"metadata":         map[string]any{"product_slug": "led-lamp"},
	}
}

func TestCheckoutCompletedCreatesPaidOrder(t *testing.T) {
	svc, db, notifier := setup(t)
	product := &models.Product{Slug: "led-lamp", Name: "LED Lamp", PriceCents: 2999}
	require.NoError(t, db.Create(product).Error)

	err := svc.HandleEvent(context.Background(), checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, completedPayload("cs_test_1")))
	require.NoError(t, err)

	var rows []models.Order
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.OrderStatusPaid, rows[0].Status)
	assert.Equal(t, "buyer@example.com", rows[0].Email)
	assert.Equal(t, int64(2999), rows[0].AmountCents)
	require.NotNil(t, rows[0].ProductID)
	assert.Equal(t, product.ID, *rows[0].ProductID)
	assert.Len(t, notifier.created, 1)
}

func TestCheckoutCompletedReplayKeepsOneOrder(t *testing.T) {
	svc, db, notifier := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		// distinct event ids, same session: the event-id guard cannot catch this one
		err := svc.HandleEvent(ctx, checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, completedPayload("cs_test_replay")))
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, notifier.created, 1)
}

func TestCheckoutCompletedWithoutKnownProduct(t *testing.T) {
	svc, db, _ := setup(t)
	payload := completedPayload("cs_test_orphan")
	payload["metadata"] = map[string]any{"product_slug": "gone-product"}
	delete(payload, "customer_details")
	payload["customer_email"] = "fallback@example.com"

	require.NoError(t, svc.HandleEvent(context.Background(), checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, payload)))

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Nil(t, order.ProductID)
	assert.Equal(t, "fallback@example.com", order.Email)
}

func TestCheckoutExpiredAbandonsPendingOrder(t *testing.T) {
	svc, db, _ := setup(t)
	sessionID := "cs_test_expired"
	order := &models.Order{Email: "buyer@example.com", AmountCents: 100, Status: enums.OrderStatusPending, StripeSessionID: &sessionID}
	require.NoError(t, db.Create(order).Error)

	payload := map[string]any{"id": sessionID, "object": "checkout.session"}
	require.NoError(t, svc.HandleEvent(context.Background(), checkoutEvent(t, stripe.EventTypeCheckoutSessionExpired, payload)))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, enums.OrderStatusAbandoned, stored.Status)
}

func TestCheckoutExpiredIgnoresMissingAndPaidOrders(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()

	missing := map[string]any{"id": "cs_unknown", "object": "checkout.session"}
	require.NoError(t, svc.HandleEvent(ctx, checkoutEvent(t, stripe.EventTypeCheckoutSessionExpired, missing)))

	sessionID := "cs_paid"
	order := &models.Order{Email: "buyer@example.com", AmountCents: 100, Status: enums.OrderStatusPaid, StripeSessionID: &sessionID}
	require.NoError(t, db.Create(order).Error)
	paid := map[string]any{"id": sessionID, "object": "checkout.session"}
	require.NoError(t, svc.HandleEvent(ctx, checkoutEvent(t, stripe.EventTypeCheckoutSessionExpired, paid)))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
}

func TestUnknownEventIgnored(t *testing.T) {
	svc, _, _ := setup(t)
	event := checkoutEvent(t, stripe.EventTypeInvoicePaid, map[string]any{"id": "in_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	require.Error(t, svc.HandleEvent(context.Background(), &stripe.Event{}))
}
