package fulfillment

import (
	"context"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists suppliers, product-supplier links and fulfillment rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListSuppliers(ctx context.Context, platform *string, activeOnly bool) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	FindSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	SaveSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	RecordSupplierOrder(ctx context.Context, supplierID int64, success bool) error

	ListLinks(ctx context.Context, productID int64) ([]models.ProductSupplier, error)
	PrimaryLink(ctx context.Context, productID int64) (*models.ProductSupplier, error)
	CreateLink(ctx context.Context, link *models.ProductSupplier) (*models.ProductSupplier, error)
	ClearPrimary(ctx context.Context, productID int64) error
	FindLink(ctx context.Context, productID, supplierID int64) (*models.ProductSupplier, error)
	DeleteLink(ctx context.Context, id int64) error

	ListRules(ctx context.Context, enabledOnly bool) ([]models.FulfillmentRule, error)
	CountRules(ctx context.Context) (int64, error)
	CreateRule(ctx context.Context, rule *models.FulfillmentRule) (*models.FulfillmentRule, error)
	FindRule(ctx context.Context, id int64) (*models.FulfillmentRule, error)
	SaveRule(ctx context.Context, rule *models.FulfillmentRule) (*models.FulfillmentRule, error)
	DeleteRule(ctx context.Context, id int64) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) ListSuppliers(ctx context.Context, platform *string, activeOnly bool) ([]models.Supplier, error) {
	query := r.DB(ctx).Model(&models.Supplier{})
	if platform != nil {
		query = query.Where("platform = ?", *platform)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Supplier
	err := query.Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.DB(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) FindSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.DB(ctx).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) SaveSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.DB(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) RecordSupplierOrder(ctx context.Context, supplierID int64, success bool) error {
	updates := map[string]any{"total_orders": gorm.Expr("total_orders + 1")}
	if success {
		updates["successful_orders"] = gorm.Expr("successful_orders + 1")
	}
	return r.DB(ctx).Model(&models.Supplier{}).Where("id = ?", supplierID).Updates(updates).Error
}

func (r *repository) ListLinks(ctx context.Context, productID int64) ([]models.ProductSupplier, error) {
	var rows []models.ProductSupplier
	err := r.DB(ctx).
		Preload("Supplier").
		Where("product_id = ?", productID).
		Order("is_primary DESC").
		Order("priority ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) PrimaryLink(ctx context.Context, productID int64) (*models.ProductSupplier, error) {
	var link models.ProductSupplier
	err := r.DB(ctx).
		Preload("Supplier").
		Where("product_id = ? AND is_primary = ?", productID, true).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) CreateLink(ctx context.Context, link *models.ProductSupplier) (*models.ProductSupplier, error) {
	if err := r.DB(ctx).Omit("Supplier").Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *repository) ClearPrimary(ctx context.Context, productID int64) error {
	return r.DB(ctx).
		Model(&models.ProductSupplier{}).
		Where("product_id = ?", productID).
		Update("is_primary", false).Error
}

func (r *repository) FindLink(ctx context.Context, productID, supplierID int64) (*models.ProductSupplier, error) {
	var link models.ProductSupplier
	err := r.DB(ctx).
		Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) DeleteLink(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.ProductSupplier{}, id).Error
}

func (r *repository) ListRules(ctx context.Context, enabledOnly bool) ([]models.FulfillmentRule, error) {
	query := r.DB(ctx).Model(&models.FulfillmentRule{})
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	var rows []models.FulfillmentRule
	err := query.Order("priority ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountRules(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.FulfillmentRule{}).Count(&count).Error
	return count, err
}

func (r *repository) CreateRule(ctx context.Context, rule *models.FulfillmentRule) (*models.FulfillmentRule, error) {
	if err := r.DB(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) FindRule(ctx context.Context, id int64) (*models.FulfillmentRule, error) {
	var rule models.FulfillmentRule
	if err := r.DB(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) SaveRule(ctx context.Context, rule *models.FulfillmentRule) (*models.FulfillmentRule, error) {
	if err := r.DB(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) DeleteRule(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.FulfillmentRule{}, id).Error
}
