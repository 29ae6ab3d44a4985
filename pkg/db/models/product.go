package models

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Product is a storefront listing. InventoryQuantity is nil when stock is not tracked.
type Product struct {
	ID                int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Slug              string              `gorm:"column:slug;uniqueIndex;not null"`
	Name              string              `gorm:"column:name;not null"`
	Description       *string             `gorm:"column:description"`
	PriceCents        int64               `gorm:"column:price_cents;not null"`
	CostCents         *int64              `gorm:"column:cost_cents"`
	MainImageURL      *string             `gorm:"column:main_image_url"`
	VideoURL          *string             `gorm:"column:video_url"`
	Status            enums.ProductStatus `gorm:"column:status;not null;default:testing"`
	TrendScore        float64             `gorm:"column:trend_score;not null;default:0"`
	UrgencyScore      float64             `gorm:"column:urgency_score;not null;default:0"`
	SupplierInfo      *string             `gorm:"column:supplier_info"`
	SupplierURL       *string             `gorm:"column:supplier_url"`
	SupplierName      *string             `gorm:"column:supplier_name"`
	SupplierCostCents *int64              `gorm:"column:supplier_cost_cents"`
	ProfitMargin      *float64            `gorm:"column:profit_margin"`
	ImportSource      *enums.ImportSource `gorm:"column:import_source"`
	InventoryQuantity *int                `gorm:"column:inventory_quantity"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// HasSupplier reports whether a supplier URL is on file.
func (p Product) HasSupplier() bool {
	return p.SupplierURL != nil && *p.SupplierURL != ""
}

// ProductView records a single storefront page view.
type ProductView struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null;index"`
	SessionID *string   `gorm:"column:session_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
