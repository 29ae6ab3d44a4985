package trends

import (
	"context"

	"github.com/angelmondragon/urgency-engine/internal/repo"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists discovered trend products and raw trend signals.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.TrendProduct, int64, error)
	FindByID(ctx context.Context, id int64) (*models.TrendProduct, error)
	Create(ctx context.Context, product *models.TrendProduct) error
	Save(ctx context.Context, product *models.TrendProduct) error
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Stats(ctx context.Context) (*Stats, error)
	CreateSignal(ctx context.Context, signal *models.TrendSignal) error
}

// ListFilters narrows the trend product listing. Prices are suggested prices in cents.
type ListFilters struct {
	Category   *string
	MinPrice   *int64
	MaxPrice   *int64
	MinScore   *float64
	Velocities []enums.TrendVelocity
	Sort       string
}

// CategoryCount is one distinct category with its product count.
type CategoryCount struct {
	Category string `gorm:"column:category"`
	Count    int64  `gorm:"column:count"`
}

type recommendationCount struct {
	Recommendation *string `gorm:"column:ai_recommendation"`
	Count          int64   `gorm:"column:count"`
}

var sortOrders = map[string]string{
	SortTrendScore: "trend_score DESC",
	SortPriceLow:   "suggested_price_cents ASC",
	SortPriceHigh:  "suggested_price_cents DESC",
	SortNewest:     "discovered_at DESC",
	SortMargin:     "estimated_margin DESC",
}

type repository struct {
	repo.Base
}

// NewRepository builds a trends repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.TrendProduct, int64, error) {
	query := r.DB(ctx).Model(&models.TrendProduct{})
	if filters.Category != nil && *filters.Category != "" && *filters.Category != "all" {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.MinPrice != nil {
		query = query.Where("suggested_price_cents >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("suggested_price_cents <= ?", *filters.MaxPrice)
	}
	if filters.MinScore != nil {
		query = query.Where("trend_score >= ?", *filters.MinScore)
	}
	if len(filters.Velocities) > 0 {
		query = query.Where("trend_velocity IN ?", filters.Velocities)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := sortOrders[filters.Sort]
	if !ok {
		order = sortOrders[SortTrendScore]
	}
	var rows []models.TrendProduct
	err := query.
		Order(order).
		Order("id ASC").
		Scopes(repo.Paginate(params)).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.TrendProduct, error) {
	var row models.TrendProduct
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, product *models.TrendProduct) error {
	return r.DB(ctx).Create(product).Error
}

func (r *repository) Save(ctx context.Context, product *models.TrendProduct) error {
	return r.DB(ctx).Save(product).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.TrendProduct{}).Count(&count).Error
	return count, err
}

func (r *repository) Categories(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.DB(ctx).
		Model(&models.TrendProduct{}).
		Select("category, COUNT(*) AS count").
		Where("category IS NOT NULL AND category <> ''").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var agg struct {
		Total    int64    `gorm:"column:total"`
		Imported int64    `gorm:"column:imported"`
		Rising   int64    `gorm:"column:rising"`
		AvgScore *float64 `gorm:"column:avg_score"`
	}
	err := r.DB(ctx).
		Model(&models.TrendProduct{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN is_imported THEN 1 ELSE 0 END), 0) AS imported, "+
				"COALESCE(SUM(CASE WHEN trend_velocity = ? THEN 1 ELSE 0 END), 0) AS rising, "+
				"AVG(trend_score) AS avg_score",
			enums.TrendVelocityRising,
		).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	var recs []recommendationCount
	err = r.DB(ctx).
		Model(&models.TrendProduct{}).
		Select("ai_recommendation, COUNT(*) AS count").
		Group("ai_recommendation").
		Scan(&recs).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalProducts:    agg.Total,
		ImportedProducts: agg.Imported,
		RisingTrends:     agg.Rising,
		ByRecommendation: map[string]int64{},
	}
	if agg.AvgScore != nil {
		stats.AvgTrendScore = *agg.AvgScore
	}
	for _, rec := range recs {
		if rec.Recommendation == nil || *rec.Recommendation == "" {
			continue
		}
		stats.ByRecommendation[*rec.Recommendation] = rec.Count
		if *rec.Recommendation == string(enums.AIRecommendationImport) {
			stats.AIRecommended = rec.Count
		}
	}
	return stats, nil
}

func (r *repository) CreateSignal(ctx context.Context, signal *models.TrendSignal) error {
	return r.DB(ctx).Create(signal).Error
}
