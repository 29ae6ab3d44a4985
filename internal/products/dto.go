package products

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// ProductDTO is the API shape of a product.
type ProductDTO struct {
	ID                int64               `json:"id"`
	Slug              string              `json:"slug"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	PriceCents        int64               `json:"price_cents"`
	CostCents         *int64              `json:"cost_cents,omitempty"`
	MainImageURL      *string             `json:"main_image_url,omitempty"`
	VideoURL          *string             `json:"video_url,omitempty"`
	Status            enums.ProductStatus `json:"status"`
	TrendScore        float64             `json:"trend_score"`
	UrgencyScore      float64             `json:"urgency_score"`
	SupplierInfo      *string             `json:"supplier_info,omitempty"`
	SupplierURL       *string             `json:"supplier_url,omitempty"`
	SupplierName      *string             `json:"supplier_name,omitempty"`
	SupplierCostCents *int64              `json:"supplier_cost_cents,omitempty"`
	ProfitMargin      *float64            `json:"profit_margin,omitempty"`
	ImportSource      *enums.ImportSource `json:"import_source,omitempty"`
	InventoryQuantity *int                `json:"inventory_quantity,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// FromModel maps a product row to its DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:                p.ID,
		Slug:              p.Slug,
		Name:              p.Name,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		CostCents:         p.CostCents,
		MainImageURL:      p.MainImageURL,
		VideoURL:          p.VideoURL,
		Status:            p.Status,
		TrendScore:        p.TrendScore,
		UrgencyScore:      p.UrgencyScore,
		SupplierInfo:      p.SupplierInfo,
		SupplierURL:       p.SupplierURL,
		SupplierName:      p.SupplierName,
		SupplierCostCents: p.SupplierCostCents,
		ProfitMargin:      p.ProfitMargin,
		ImportSource:      p.ImportSource,
		InventoryQuantity: p.InventoryQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// FromModels maps a slice of rows.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Slug              string
	Name              string
	Description       *string
	PriceCents        int64
	CostCents         *int64
	MainImageURL      *string
	VideoURL          *string
	Status            enums.ProductStatus
	TrendScore        float64
	UrgencyScore      float64
	SupplierInfo      *string
	SupplierURL       *string
	SupplierName      *string
	SupplierCostCents *int64
	ProfitMargin      *float64
	ImportSource      *enums.ImportSource
	InventoryQuantity *int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	PriceCents        *int64
	CostCents         *int64
	MainImageURL      *string
	VideoURL          *string
	Status            *enums.ProductStatus
	TrendScore        *float64
	UrgencyScore      *float64
	SupplierInfo      *string
	SupplierURL       *string
	SupplierName      *string
	SupplierCostCents *int64
	ProfitMargin      *float64
	InventoryQuantity *int
}

// ListInput captures the storefront listing query.
type ListInput struct {
	Status        *enums.ProductStatus
	MinTrendScore *float64
	Limit         int
	Offset        int
}
