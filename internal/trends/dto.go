package trends

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Sort keys accepted by the trend product listing.
const (
	SortTrendScore = "trend_score"
	SortPriceLow   = "price_low"
	SortPriceHigh  = "price_high"
	SortNewest     = "newest"
	SortMargin     = "margin"
)

// SortKeys lists the accepted sort keys.
func SortKeys() []string {
	return []string{SortTrendScore, SortPriceLow, SortPriceHigh, SortNewest, SortMargin}
}

// TrendProductDTO is the API shape of a discovered trend product.
type TrendProductDTO struct {
	ID                  int64                   `json:"id"`
	ExternalID          *string                 `json:"external_id"`
	Title               string                  `json:"title"`
	Description         *string                 `json:"description"`
	ImageURL            *string                 `json:"image_url"`
	VideoURL            *string                 `json:"video_url"`
	Source              string                  `json:"source"`
	Category            *string                 `json:"category"`
	TrendScore          float64                 `json:"trend_score"`
	TrendVelocity       enums.TrendVelocity     `json:"trend_velocity"`
	ViewCount           int64                   `json:"view_count"`
	LikeCount           int64                   `json:"like_count"`
	SupplierURL         *string                 `json:"supplier_url"`
	SupplierPriceCents  *int64                  `json:"supplier_price_cents"`
	SuggestedPriceCents *int64                  `json:"suggested_price_cents"`
	EstimatedMargin     *float64                `json:"estimated_margin"`
	AIRecommendation    *enums.AIRecommendation `json:"ai_recommendation"`
	AIReasoning         *string                 `json:"ai_reasoning"`
	IsImported          bool                    `json:"is_imported"`
	ImportedProductID   *int64                  `json:"imported_product_id,omitempty"`
	DiscoveredAt        time.Time               `json:"discovered_at"`
}

func toDTO(p models.TrendProduct) TrendProductDTO {
	return TrendProductDTO{
		ID:                  p.ID,
		ExternalID:          p.ExternalID,
		Title:               p.Title,
		Description:         p.Description,
		ImageURL:            p.ImageURL,
		VideoURL:            p.VideoURL,
		Source:              p.Source,
		Category:            p.Category,
		TrendScore:          p.TrendScore,
		TrendVelocity:       p.TrendVelocity,
		ViewCount:           p.ViewCount,
		LikeCount:           p.LikeCount,
		SupplierURL:         p.SupplierURL,
		SupplierPriceCents:  p.SupplierPriceCents,
		SuggestedPriceCents: p.SuggestedPriceCents,
		EstimatedMargin:     p.EstimatedMargin,
		AIRecommendation:    p.AIRecommendation,
		AIReasoning:         p.AIReasoning,
		IsImported:          p.IsImported,
		ImportedProductID:   p.ImportedProductID,
		DiscoveredAt:        p.DiscoveredAt,
	}
}

// ListInput is the paged, filtered listing request.
type ListInput struct {
	Page     int
	PageSize int
	Filters  ListFilters
}

// ListResult is one page of trend products.
type ListResult struct {
	Products []TrendProductDTO `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

// ImportInput copies a trend product into the catalogue with optional overrides.
type ImportInput struct {
	TrendProductID    int64   `json:"trend_product_id" validate:"required,min=1"`
	CustomName        *string `json:"custom_name" validate:"omitempty,min=2,max=255"`
	CustomDescription *string `json:"custom_description" validate:"omitempty,max=10000"`
	CustomPriceCents  *int64  `json:"custom_price_cents" validate:"omitempty,gt=0,lte=1000000000"`
}

// ImportResult reports the created product.
type ImportResult struct {
	Success   bool   `json:"success"`
	ProductID *int64 `json:"product_id"`
	Message   string `json:"message"`
}

// SeedResult reports how many demo products were inserted.
type SeedResult struct {
	Message string `json:"message"`
	Seeded  int    `json:"seeded"`
}

// Category is a selectable category filter.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Stats summarizes the trend catalogue.
type Stats struct {
	TotalProducts    int64            `json:"total_products"`
	ImportedProducts int64            `json:"imported_products"`
	RisingTrends     int64            `json:"rising_trends"`
	AIRecommended    int64            `json:"ai_recommended"`
	AvgTrendScore    float64          `json:"avg_trend_score"`
	ByRecommendation map[string]int64 `json:"by_recommendation"`
}
