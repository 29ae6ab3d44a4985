package models

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// TrendSignal is a raw metric observation from a trend source.
type TrendSignal struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID *int64    `gorm:"column:product_id;index"`
	Source    string    `gorm:"column:source;not null"`
	Metric    string    `gorm:"column:metric;not null"`
	Value     float64   `gorm:"column:value;not null"`
	RawData   *string   `gorm:"column:raw_data"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TrendSuggestion is a scored product candidate awaiting admin review.
type TrendSuggestion struct {
	ID                   int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	Hashtag              string                 `gorm:"column:hashtag;not null"`
	SuggestedName        *string                `gorm:"column:suggested_name"`
	SuggestedDescription *string                `gorm:"column:suggested_description"`
	SuggestedPriceCents  *int64                 `gorm:"column:suggested_price_cents"`
	TrendScore           float64                `gorm:"column:trend_score;not null;default:0"`
	UrgencyScore         float64                `gorm:"column:urgency_score;not null;default:0"`
	Reasoning            *string                `gorm:"column:reasoning"`
	Views                int64                  `gorm:"column:views;not null;default:0"`
	VideoCount           int64                  `gorm:"column:video_count;not null;default:0"`
	GrowthRate           float64                `gorm:"column:growth_rate;not null;default:0"`
	Status               enums.SuggestionStatus `gorm:"column:status;not null;default:pending"`
	ProductID            *int64                 `gorm:"column:product_id"`
	ReviewedAt           *time.Time             `gorm:"column:reviewed_at"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// TrendProduct is a discovered product from a trend feed that can be imported.
type TrendProduct struct {
	ID                  int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID          *string                 `gorm:"column:external_id"`
	Title               string                  `gorm:"column:title;not null"`
	Description         *string                 `gorm:"column:description"`
	ImageURL            *string                 `gorm:"column:image_url"`
	VideoURL            *string                 `gorm:"column:video_url"`
	Source              string                  `gorm:"column:source;not null;default:tiktok"`
	Category            *string                 `gorm:"column:category"`
	TrendScore          float64                 `gorm:"column:trend_score;not null;default:0"`
	TrendVelocity       enums.TrendVelocity     `gorm:"column:trend_velocity;not null;default:stable"`
	ViewCount           int64                   `gorm:"column:view_count;not null;default:0"`
	LikeCount           int64                   `gorm:"column:like_count;not null;default:0"`
	SupplierURL         *string                 `gorm:"column:supplier_url"`
	SupplierPriceCents  *int64                  `gorm:"column:supplier_price_cents"`
	SuggestedPriceCents *int64                  `gorm:"column:suggested_price_cents"`
	EstimatedMargin     *float64                `gorm:"column:estimated_margin"`
	AIRecommendation    *enums.AIRecommendation `gorm:"column:ai_recommendation"`
	AIReasoning         *string                 `gorm:"column:ai_reasoning"`
	IsImported          bool                    `gorm:"column:is_imported;not null;default:false"`
	ImportedProductID   *int64                  `gorm:"column:imported_product_id"`
	DiscoveredAt        time.Time               `gorm:"column:discovered_at;autoCreateTime"`
}
