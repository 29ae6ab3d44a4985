package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}))
	return db
}

func newTestService(t *testing.T) (*service, Repository, *gorm.DB) {
	t.Helper()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return impl, repo, db
}

func seedOrder(t *testing.T, repo Repository, status enums.OrderStatus, productID *int64) *models.Order {
	t.Helper()
	order, err := repo.Create(context.Background(), &models.Order{
		ProductID:   productID,
		Email:       "buyer@example.com",
		AmountCents: 2999,
		Status:      status,
	})
	require.NoError(t, err)
	return order
}

func TestGetIncludesProductName(t *testing.T) {
	svc, repo, db := newTestService(t)
	product := &models.Product{Slug: "led-lamp", Name: "LED Lamp", PriceCents: 2999}
	require.NoError(t, db.Create(product).Error)
	order := seedOrder(t, repo, enums.OrderStatusPaid, &product.ID)

	dto, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.ProductName)
	assert.Equal(t, "LED Lamp", *dto.ProductName)

	_, err = svc.Get(context.Background(), 9999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedOrder(t, repo, enums.OrderStatusPaid, nil)
	seedOrder(t, repo, enums.OrderStatusPending, nil)
	seedOrder(t, repo, enums.OrderStatusPaid, nil)

	paid := enums.OrderStatusPaid
	rows, err := svc.List(context.Background(), ListInput{Status: &paid})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, enums.OrderStatusPaid, row.Status)
	}
}

func TestUpdateStatusFollowsAllowList(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	order := seedOrder(t, repo, enums.OrderStatusCancelled, nil)

	_, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	res, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	pending := seedOrder(t, repo, enums.OrderStatusPending, nil)
	res, err = svc.UpdateStatus(ctx, pending.ID, enums.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	stored, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
}

func TestAddTrackingShipsOrder(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	order := seedOrder(t, repo, enums.OrderStatusProcessing, nil)
	url := "https://track.example.com/1Z999"

	res, err := svc.AddTracking(ctx, order.ID, " 1Z999AA1 ", &url)
	require.NoError(t, err)
	assert.Equal(t, "1Z999AA1", res.TrackingNumber)

	stored, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, stored.Status)
	require.NotNil(t, stored.ShippedAt)
	require.NotNil(t, stored.TrackingURL)

	_, err = svc.AddTracking(ctx, order.ID, "abc", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddTrackingRejectsTerminalOrder(t *testing.T) {
	svc, repo, _ := newTestService(t)
	order := seedOrder(t, repo, enums.OrderStatusRefunded, nil)
	_, err := svc.AddTracking(context.Background(), order.ID, "1Z999AA1", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestMarkDelivered(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	shipped := seedOrder(t, repo, enums.OrderStatusShipped, nil)

	res, err := svc.MarkDelivered(ctx, shipped.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, res.Status)

	pending := seedOrder(t, repo, enums.OrderStatusPending, nil)
	_, err = svc.MarkDelivered(ctx, pending.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestHasEarlierOrderIgnoresCase(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()
	first := seedOrder(t, repo, enums.OrderStatusPaid, nil)
	second, err := repo.Create(ctx, &models.Order{Email: "BUYER@example.com", AmountCents: 100, Status: enums.OrderStatusPending})
	require.NoError(t, err)

	earlier, err := repo.HasEarlierOrder(ctx, second.Email, second.ID)
	require.NoError(t, err)
	assert.True(t, earlier)

	earlier, err = repo.HasEarlierOrder(ctx, first.Email, first.ID)
	require.NoError(t, err)
	assert.False(t, earlier)
}
