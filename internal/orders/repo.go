package orders

import (
	"context"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for storefront orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindWithProduct(ctx context.Context, id int64) (*OrderRow, error)
	List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]OrderRow, error)
	ListPendingUpTo(ctx context.Context, maxAmountCents int64) ([]models.Order, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	HasEarlierOrder(ctx context.Context, email string, beforeID int64) (bool, error)
}

// OrderRow is an order joined with its product name.
type OrderRow struct {
	models.Order
	ProductName *string `gorm:"column:product_name"`
}

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) withProduct(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("orders").
		Select("orders.*, products.name AS product_name").
		Joins("LEFT JOIN products ON products.id = orders.product_id")
}

func (r *repository) FindWithProduct(ctx context.Context, id int64) (*OrderRow, error) {
	var row OrderRow
	err := r.withProduct(ctx).Where("orders.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]OrderRow, error) {
	query := r.withProduct(ctx)
	if status != nil {
		query = query.Where("orders.status = ?", *status)
	}
	var rows []OrderRow
	err := query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Scopes(repo.Paginate(params)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListPendingUpTo(ctx context.Context, maxAmountCents int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Where("status = ? AND amount_cents <= ?", enums.OrderStatusPending, maxAmountCents).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) HasEarlierOrder(ctx context.Context, email string, beforeID int64) (bool, error) {
	return repo.Exists(r.DB(ctx).
		Model(&models.Order{}).
		Where("LOWER(email) = LOWER(?) AND id < ?", email, beforeID))
}
