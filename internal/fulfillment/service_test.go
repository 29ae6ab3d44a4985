package fulfillment

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubNotifier struct {
	created []notifications.CreateInput
}

func (s *stubNotifier) Create(_ context.Context, input notifications.CreateInput) (*notifications.Notification, error) {
	s.created = append(s.created, input)
	return &notifications.Notification{Title: input.Title}, nil
}

type fixture struct {
	svc      Service
	rules    RulesService
	conn     *gorm.DB
	notifier *stubNotifier
	reg      *prometheus.Registry
}

func setup(t *testing.T, cfg config.FulfillmentConfig) fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:fulfillment_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.Supplier{}, &models.ProductSupplier{}, &models.FulfillmentRule{},
	))

	ordersRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(ordersRepo)
	require.NoError(t, err)
	productsRepo := products.NewRepository(conn)
	repo := NewRepository(conn)
	notifier := &stubNotifier{}
	reg := prometheus.NewRegistry()

	svc, err := NewService(ServiceParams{
		Config:       cfg,
		Repo:         repo,
		Orders:       ordersRepo,
		OrderService: orderSvc,
		Products:     productsRepo,
		Tx:           db.NewFromConn(conn),
		Notifier:     notifier,
		Metrics:      metrics.NewFulfillmentMetrics(reg),
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC) }

	rules, err := NewRulesService(repo, ordersRepo, productsRepo)
	require.NoError(t, err)
	return fixture{svc: svc, rules: rules, conn: conn, notifier: notifier, reg: reg}
}

func enabledConfig() config.FulfillmentConfig {
	return config.FulfillmentConfig{AutoFulfillEnabled: true, MaxAutoOrderValueCents: 10000}
}

func strPtr(v string) *string { return &v }

func seedProduct(t *testing.T, conn *gorm.DB, slug string, supplierURL *string) *models.Product {
	t.Helper()
	p := &models.Product{Slug: slug, Name: slug, PriceCents: 2500, Status: enums.ProductStatusLive, SupplierURL: supplierURL}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, conn *gorm.DB, productID *int64, status enums.OrderStatus, cents int64, email string) *models.Order {
	t.Helper()
	o := &models.Order{ProductID: productID, Email: email, AmountCents: cents, Status: status}
	require.NoError(t, conn.Create(o).Error)
	return o
}

func TestCheckEligibilityMissingOrder(t *testing.T) {
	f := setup(t, enabledConfig())

	got, err := f.svc.CheckEligibility(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, got.Eligible)
	assert.Equal(t, []string{"Order not found"}, got.Reasons)
}

func TestCheckEligibilityListsEveryReason(t *testing.T) {
	f := setup(t, config.FulfillmentConfig{AutoFulfillEnabled: false, MaxAutoOrderValueCents: 10000})
	p := seedProduct(t, f.conn, "no-supplier", nil)
	o := seedOrder(t, f.conn, &p.ID, enums.OrderStatusPaid, 12500, "a@example.com")

	got, err := f.svc.CheckEligibility(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, got.Eligible)
	assert.Equal(t, []string{
		"Auto-fulfillment is disabled",
		"Order status is 'paid', must be 'pending'",
		"Order value $125.00 exceeds auto-fulfill limit $100.00",
		"Product does not have supplier information",
	}, got.Reasons)
}

func TestCheckEligibilityWithoutProduct(t *testing.T) {
	f := setup(t, enabledConfig())
	o := seedOrder(t, f.conn, nil, enums.OrderStatusPending, 1000, "a@example.com")

	got, err := f.svc.CheckEligibility(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order has no associated product"}, got.Reasons)
}

func TestAutoOrderPlacesSupplierOrder(t *testing.T) {
	f := setup(t, enabledConfig())
	p := seedProduct(t, f.conn, "desk-fan", strPtr("https://supplier.example/fan"))
	supplier := &models.Supplier{Name: "FanCo", Platform: "aliexpress", IsActive: true, MaxOrderValueCents: 10000}
	require.NoError(t, f.conn.Create(supplier).Error)
	require.NoError(t, f.conn.Create(&models.ProductSupplier{
		ProductID: p.ID, SupplierID: supplier.ID, SupplierProductURL: "https://supplier.example/fan",
		SupplierPriceCents: 800, IsPrimary: true, IsAvailable: true,
	}).Error)
	o := seedOrder(t, f.conn, &p.ID, enums.OrderStatusPending, 2500, "a@example.com")

	result := f.svc.AutoOrder(context.Background(), o.ID)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Order placed with FanCo", result.Message)
	require.NotNil(t, result.SupplierOrderID)
	assert.Equal(t, "SUP-"+strconv.FormatInt(o.ID, 10)+"-20260315093000", *result.SupplierOrderID)

	var stored models.Order
	require.NoError(t, f.conn.First(&stored, o.ID).Error)
	assert.Equal(t, enums.OrderStatusProcessing, stored.Status)
	require.NotNil(t, stored.SupplierOrderID)

	var storedSupplier models.Supplier
	require.NoError(t, f.conn.First(&storedSupplier, supplier.ID).Error)
	assert.Equal(t, int64(1), storedSupplier.TotalOrders)
	assert.Equal(t, int64(1), storedSupplier.SuccessfulOrders)

	require.Len(t, f.notifier.created, 1)
	assert.Equal(t, enums.NotificationTypeOrder, f.notifier.created[0].Type)
	assert.Equal(t, 1.0, counterValue(t, f.reg, "urgency_auto_orders_placed_total"))
}

func TestAutoOrderFallsBackToUnknownSupplierName(t *testing.T) {
	f := setup(t, enabledConfig())
	p := seedProduct(t, f.conn, "lamp", strPtr("https://supplier.example/lamp"))
	o := seedOrder(t, f.conn, &p.ID, enums.OrderStatusPending, 1500, "a@example.com")

	result := f.svc.AutoOrder(context.Background(), o.ID)
	require.True(t, result.Success)
	assert.Equal(t, "Order placed with Unknown Supplier", result.Message)
}

func TestAutoOrderNeverErrors(t *testing.T) {
	f := setup(t, enabledConfig())
	p := seedProduct(t, f.conn, "mug", nil)
	o := seedOrder(t, f.conn, &p.ID, enums.OrderStatusPending, 1500, "a@example.com")

	missing := f.svc.AutoOrder(context.Background(), 404)
	assert.False(t, missing.Success)
	assert.Equal(t, "Order not found", missing.Message)

	ineligible := f.svc.AutoOrder(context.Background(), o.ID)
	assert.False(t, ineligible.Success)
	assert.Equal(t, "Not eligible: Product does not have supplier information", ineligible.Message)
	assert.Nil(t, ineligible.SupplierOrderID)
}

func TestProcessQueueHandlesOrdersIndependently(t *testing.T) {
	f := setup(t, enabledConfig())
	good := seedProduct(t, f.conn, "good", strPtr("https://supplier.example/good"))
	bad := seedProduct(t, f.conn, "bad", nil)
	first := seedOrder(t, f.conn, &good.ID, enums.OrderStatusPending, 1000, "a@example.com")
	second := seedOrder(t, f.conn, &bad.ID, enums.OrderStatusPending, 1000, "b@example.com")
	seedOrder(t, f.conn, &good.ID, enums.OrderStatusPending, 20000, "c@example.com")
	seedOrder(t, f.conn, &good.ID, enums.OrderStatusPaid, 1000, "d@example.com")

	results, err := f.svc.ProcessQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].OrderID)
	assert.True(t, results[0].Success)
	assert.Equal(t, second.ID, results[1].OrderID)
	assert.False(t, results[1].Success)
}

func TestUpdateTrackingGoesThroughStateMachine(t *testing.T) {
	f := setup(t, enabledConfig())
	o := seedOrder(t, f.conn, nil, enums.OrderStatusProcessing, 1000, "a@example.com")

	tracked, err := f.svc.UpdateTracking(context.Background(), o.ID, "TRACK12345", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, tracked.Status)

	delivered, err := f.svc.MarkDelivered(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)

	cancelled := seedOrder(t, f.conn, nil, enums.OrderStatusCancelled, 1000, "a@example.com")
	_, err = f.svc.MarkDelivered(context.Background(), cancelled.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestSupplierAvailability(t *testing.T) {
	f := setup(t, enabledConfig())
	p := seedProduct(t, f.conn, "fan", strPtr("https://supplier.example/fan"))
	o := seedOrder(t, f.conn, &p.ID, enums.OrderStatusPending, 1000, "a@example.com")

	got, err := f.svc.SupplierAvailability(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, 100, got.Quantity)
	assert.Equal(t, int64(1000), got.PriceCents)
	assert.Equal(t, 7, got.ShippingDays)
	assert.Equal(t, "Default Supplier", got.SupplierName)

	orphan := seedOrder(t, f.conn, nil, enums.OrderStatusPending, 1000, "a@example.com")
	_, err = f.svc.SupplierAvailability(context.Background(), orphan.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSupplierCRUD(t *testing.T) {
	f := setup(t, enabledConfig())
	ctx := context.Background()

	created, err := f.svc.CreateSupplier(ctx, SupplierInput{Name: " CJ ", Platform: "CJDropshipping"})
	require.NoError(t, err)
	assert.Equal(t, "CJ", created.Name)
	assert.Equal(t, "cjdropshipping", created.Platform)
	assert.True(t, created.IsActive)
	assert.Equal(t, int64(10000), created.MaxOrderValueCents)

	_, err = f.svc.CreateSupplier(ctx, SupplierInput{Name: " ", Platform: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	limit := int64(5000)
	updated, err := f.svc.UpdateSupplier(ctx, created.ID, SupplierInput{Name: "CJ Drop", Platform: "cj", MaxOrderValueCents: &limit, AutoOrderEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), updated.MaxOrderValueCents)
	assert.True(t, updated.AutoOrderEnabled)

	_, err = f.svc.DeactivateSupplier(ctx, created.ID)
	require.NoError(t, err)

	active, err := f.svc.ListSuppliers(ctx, SupplierListInput{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.ListSuppliers(ctx, SupplierListInput{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	_, err = f.svc.GetSupplier(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLinkSupplierKeepsSinglePrimary(t *testing.T) {
	f := setup(t, enabledConfig())
	ctx := context.Background()
	p := seedProduct(t, f.conn, "fan", nil)
	a, err := f.svc.CreateSupplier(ctx, SupplierInput{Name: "A", Platform: "aliexpress"})
	require.NoError(t, err)
	b, err := f.svc.CreateSupplier(ctx, SupplierInput{Name: "B", Platform: "aliexpress"})
	require.NoError(t, err)

	_, err = f.svc.LinkSupplier(ctx, p.ID, LinkInput{ProductID: p.ID + 1, SupplierID: a.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.LinkSupplier(ctx, p.ID, LinkInput{ProductID: p.ID, SupplierID: 999})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	first, err := f.svc.LinkSupplier(ctx, p.ID, LinkInput{ProductID: p.ID, SupplierID: a.ID, SupplierPriceCents: 700, ShippingCostCents: 150})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, int64(850), first.TotalCostCents)

	_, err = f.svc.LinkSupplier(ctx, p.ID, LinkInput{ProductID: p.ID, SupplierID: b.ID, SupplierPriceCents: 650})
	require.NoError(t, err)

	links, err := f.svc.ListProductSuppliers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].SupplierID)
	assert.True(t, links[0].IsPrimary)
	assert.False(t, links[1].IsPrimary)
	require.NotNil(t, links[0].SupplierName)
	assert.Equal(t, "B", *links[0].SupplierName)

	_, err = f.svc.UnlinkSupplier(ctx, p.ID, a.ID)
	require.NoError(t, err)
	_, err = f.svc.UnlinkSupplier(ctx, p.ID, a.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRulesSeedAndEvaluate(t *testing.T) {
	f := setup(t, enabledConfig())
	ctx := context.Background()

	seeded, err := f.rules.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)
	again, err := f.rules.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	rules, err := f.rules.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.False(t, rules[2].IsEnabled)

	low := seedOrder(t, f.conn, nil, enums.OrderStatusPending, 2000, "new@example.com")
	eval, err := f.rules.EvaluateOrder(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentActionAutoFulfill, eval.Action)
	assert.Equal(t, []string{"auto_fulfill_low_value"}, eval.MatchedRules)

	toggled, err := f.rules.Toggle(ctx, rules[2].ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsEnabled)

	eval, err = f.rules.EvaluateOrder(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentActionHoldForReview, eval.Action)
	assert.Equal(t, []string{"auto_fulfill_low_value", "hold_first_time"}, eval.MatchedRules)

	repeat := seedOrder(t, f.conn, nil, enums.OrderStatusPending, 2000, "NEW@example.com")
	eval, err = f.rules.EvaluateOrder(ctx, repeat.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentActionAutoFulfill, eval.Action)

	_, err = f.rules.EvaluateOrder(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRulesCRUDValidates(t *testing.T) {
	f := setup(t, enabledConfig())
	ctx := context.Background()

	_, err := f.rules.Create(ctx, RuleInput{Name: "bad", ConditionType: "weight", ConditionOperator: "<", ConditionValue: "1", Action: "process"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.rules.Create(ctx, RuleInput{Name: "bad", ConditionType: "order_value", ConditionOperator: "<", ConditionValue: "1", Action: "ship"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	disabled := false
	created, err := f.rules.Create(ctx, RuleInput{
		Name: "block_test_domain", ConditionType: "email_domain", ConditionOperator: "contains",
		ConditionValue: "test", Action: "cancel", IsEnabled: &disabled,
	})
	require.NoError(t, err)
	assert.False(t, created.IsEnabled)
	assert.Equal(t, 1, created.Priority)

	priority := 9
	updated, err := f.rules.Update(ctx, created.ID, RuleInput{
		Name: "block_test_domain", ConditionType: "email_domain", ConditionOperator: "==",
		ConditionValue: "test.com", Action: "cancel", Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Priority)
	assert.Equal(t, "==", updated.ConditionOperator)

	_, err = f.rules.Delete(ctx, created.ID)
	require.NoError(t, err)
	_, err = f.rules.Toggle(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}
