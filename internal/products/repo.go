package products

import (
	"context"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for storefront products and views.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error)
	ListByStatus(ctx context.Context, status enums.ProductStatus, limit int) ([]models.Product, error)
	Count(ctx context.Context, status *enums.ProductStatus) (int64, error)
	RecordView(ctx context.Context, view *models.ProductView) error
}

// ListFilters narrows the storefront listing.
type ListFilters struct {
	Status        *enums.ProductStatus
	MinTrendScore *float64
}

type repository struct {
	repo.Base
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return repo.Exists(r.DB(ctx).Model(&models.Product{}).Where("slug = ?", slug))
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, error) {
	query := r.DB(ctx).Model(&models.Product{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.MinTrendScore != nil {
		query = query.Where("trend_score >= ?", *filters.MinTrendScore)
	}
	var rows []models.Product
	err := query.
		Order("trend_score DESC").
		Order("id ASC").
		Scopes(repo.Paginate(params)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ProductStatus, limit int) ([]models.Product, error) {
	query := r.DB(ctx).Where("status = ?", status).Order("trend_score DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Product
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) Count(ctx context.Context, status *enums.ProductStatus) (int64, error) {
	query := r.DB(ctx).Model(&models.Product{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repository) RecordView(ctx context.Context, view *models.ProductView) error {
	return r.DB(ctx).Create(view).Error
}
