package settings

import (
	"context"
	"errors"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the singleton storefront settings row.
type Repository interface {
	GetOrCreate(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) (*models.StoreSettings, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) GetOrCreate(ctx context.Context) (*models.StoreSettings, error) {
	var row models.StoreSettings
	err := r.DB(ctx).Order("id ASC").First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	row = models.StoreSettings{
		StoreName:      DefaultStoreName,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
	}
	if err := r.DB(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Save(ctx context.Context, settings *models.StoreSettings) (*models.StoreSettings, error) {
	if err := r.DB(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
