package integrations

import (
	"context"
	"errors"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists connected stores.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, integration *models.Integration) (*models.Integration, error)
	Save(ctx context.Context, integration *models.Integration) error
	FindByID(ctx context.Context, id int64) (*models.Integration, error)
	FindActiveByStore(ctx context.Context, platform enums.IntegrationPlatform, storeURL string) (*models.Integration, error)
	ListActive(ctx context.Context) ([]models.Integration, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an integrations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	if err := r.DB(ctx).Create(integration).Error; err != nil {
		return nil, err
	}
	return integration, nil
}

func (r *repository) Save(ctx context.Context, integration *models.Integration) error {
	return r.DB(ctx).Save(integration).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Integration, error) {
	var row models.Integration
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveByStore returns nil when no active integration uses the store.
func (r *repository) FindActiveByStore(ctx context.Context, platform enums.IntegrationPlatform, storeURL string) (*models.Integration, error) {
	var row models.Integration
	err := r.DB(ctx).
		Where("platform = ? AND store_url = ? AND is_active = ?", platform, storeURL, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Integration, error) {
	var rows []models.Integration
	if err := r.DB(ctx).Where("is_active = ?", true).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
