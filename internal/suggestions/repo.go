package suggestions

import (
	"context"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists trend suggestions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, suggestion *models.TrendSuggestion) (*models.TrendSuggestion, error)
	Save(ctx context.Context, suggestion *models.TrendSuggestion) error
	FindByID(ctx context.Context, id int64) (*models.TrendSuggestion, error)
	List(ctx context.Context, status *enums.SuggestionStatus, params pagination.Params) ([]models.TrendSuggestion, error)
	CountByStatus(ctx context.Context, status enums.SuggestionStatus) (int64, error)
	HashtagExists(ctx context.Context, hashtag string) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a suggestions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, suggestion *models.TrendSuggestion) (*models.TrendSuggestion, error) {
	if err := r.DB(ctx).Create(suggestion).Error; err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (r *repository) Save(ctx context.Context, suggestion *models.TrendSuggestion) error {
	return r.DB(ctx).Save(suggestion).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.TrendSuggestion, error) {
	var row models.TrendSuggestion
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, status *enums.SuggestionStatus, params pagination.Params) ([]models.TrendSuggestion, error) {
	query := r.DB(ctx).Model(&models.TrendSuggestion{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.TrendSuggestion
	err := query.Order("trend_score DESC").Order("id ASC").
		Scopes(repo.Paginate(params)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context, status enums.SuggestionStatus) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.TrendSuggestion{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *repository) HashtagExists(ctx context.Context, hashtag string) (bool, error) {
	return repo.Exists(r.DB(ctx).Model(&models.TrendSuggestion{}).
		Where("LOWER(hashtag) = ?", strings.ToLower(strings.TrimPrefix(hashtag, "#"))))
}
