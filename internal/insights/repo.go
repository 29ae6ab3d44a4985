package insights

import (
	"context"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"gorm.io/gorm"
)

// TrendScoreMetric is the signal metric name recorded for product trend scores.
const TrendScoreMetric = "trend_score"

// Repository reads trend signals used for momentum estimates.
type Repository interface {
	LatestSignals(ctx context.Context, productID int64, metric string, limit int) ([]models.TrendSignal, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds the insights repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// LatestSignals returns the newest signals first.
func (r *repository) LatestSignals(ctx context.Context, productID int64, metric string, limit int) ([]models.TrendSignal, error) {
	var rows []models.TrendSignal
	err := r.DB(ctx).
		Where("product_id = ? AND metric = ?", productID, metric).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
