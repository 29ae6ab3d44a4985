package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"gorm.io/gorm"
)

// Window bounds a query by created_at: Since inclusive, Until exclusive. Zero values are open.
type Window struct {
	Since time.Time
	Until time.Time
}

// OrderFilter narrows order aggregates.
type OrderFilter struct {
	Window
	Statuses  []enums.OrderStatus
	Exclude   []enums.OrderStatus
	ProductID *int64
}

// OrderPoint is the slice of an order the time series need.
type OrderPoint struct {
	CreatedAt   time.Time
	Status      enums.OrderStatus
	AmountCents int64
}

// ProductRevenue aggregates paid orders per product.
type ProductRevenue struct {
	ProductID    int64
	Name         string
	Slug         string
	MainImageURL *string
	Orders       int64
	RevenueCents int64
}

// Repository runs the read-side aggregates over orders, views, products and suggestions.
type Repository interface {
	CountOrders(ctx context.Context, filter OrderFilter) (int64, error)
	SumOrderAmount(ctx context.Context, filter OrderFilter) (int64, error)
	ListOrderPoints(ctx context.Context, filter OrderFilter) ([]OrderPoint, error)
	CountViews(ctx context.Context, window Window, productID *int64) (int64, error)
	TopProducts(ctx context.Context, filter OrderFilter, limit int) ([]ProductRevenue, error)
	CountProducts(ctx context.Context, status *enums.ProductStatus) (int64, error)
	CountSuggestions(ctx context.Context, status enums.SuggestionStatus) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds the analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) orders(ctx context.Context, filter OrderFilter) *gorm.DB {
	query := r.DB(ctx).Model(&models.Order{})
	query = applyWindow(query, "orders.created_at", filter.Window)
	if len(filter.Statuses) > 0 {
		query = query.Where("orders.status IN ?", filter.Statuses)
	}
	if len(filter.Exclude) > 0 {
		query = query.Where("orders.status NOT IN ?", filter.Exclude)
	}
	if filter.ProductID != nil {
		query = query.Where("orders.product_id = ?", *filter.ProductID)
	}
	return query
}

func (r *repository) CountOrders(ctx context.Context, filter OrderFilter) (int64, error) {
	var count int64
	err := r.orders(ctx, filter).Count(&count).Error
	return count, err
}

func (r *repository) SumOrderAmount(ctx context.Context, filter OrderFilter) (int64, error) {
	var total int64
	err := r.orders(ctx, filter).Select("COALESCE(SUM(orders.amount_cents), 0)").Scan(&total).Error
	return total, err
}

func (r *repository) ListOrderPoints(ctx context.Context, filter OrderFilter) ([]OrderPoint, error) {
	var rows []OrderPoint
	err := r.orders(ctx, filter).
		Select("orders.created_at AS created_at, orders.status AS status, orders.amount_cents AS amount_cents").
		Order("orders.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountViews(ctx context.Context, window Window, productID *int64) (int64, error) {
	query := applyWindow(r.DB(ctx).Model(&models.ProductView{}), "created_at", window)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repository) TopProducts(ctx context.Context, filter OrderFilter, limit int) ([]ProductRevenue, error) {
	var rows []ProductRevenue
	err := r.orders(ctx, filter).
		Select(`orders.product_id AS product_id, products.name AS name, products.slug AS slug,
			products.main_image_url AS main_image_url, COUNT(orders.id) AS orders,
			COALESCE(SUM(orders.amount_cents), 0) AS revenue_cents`).
		Joins("JOIN products ON products.id = orders.product_id").
		Group("orders.product_id, products.name, products.slug, products.main_image_url").
		Order("revenue_cents DESC").
		Order("orders.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountProducts(ctx context.Context, status *enums.ProductStatus) (int64, error) {
	query := r.DB(ctx).Model(&models.Product{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repository) CountSuggestions(ctx context.Context, status enums.SuggestionStatus) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.TrendSuggestion{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func applyWindow(query *gorm.DB, column string, window Window) *gorm.DB {
	if !window.Since.IsZero() {
		query = query.Where(column+" >= ?", window.Since)
	}
	if !window.Until.IsZero() {
		query = query.Where(column+" < ?", window.Until)
	}
	return query
}
