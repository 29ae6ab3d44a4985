package fulfillment

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Eligibility explains whether an order can be auto-ordered from its supplier.
type Eligibility struct {
	OrderID      int64    `json:"order_id"`
	Eligible     bool     `json:"eligible"`
	Reasons      []string `json:"reasons"`
	OrderValue   *int64   `json:"order_value,omitempty"`
	ProductID    *int64   `json:"product_id,omitempty"`
	SupplierName *string  `json:"supplier_name,omitempty"`
}

// AutoOrderResult reports a single supplier order attempt.
type AutoOrderResult struct {
	Success         bool    `json:"success"`
	OrderID         int64   `json:"order_id"`
	SupplierOrderID *string `json:"supplier_order_id"`
	Message         string  `json:"message"`
}

// Availability is the simulated supplier stock check.
type Availability struct {
	Available    bool    `json:"available"`
	Quantity     int     `json:"quantity"`
	PriceCents   int64   `json:"price_cents,omitempty"`
	ShippingDays int     `json:"estimated_shipping_days,omitempty"`
	SupplierName string  `json:"supplier_name,omitempty"`
	Message      *string `json:"message,omitempty"`
	OrderID      int64   `json:"order_id"`
	ProductID    int64   `json:"product_id"`
}

// ActionResult is the generic acknowledgement for fulfillment mutations.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SupplierDTO is the admin API shape of a supplier.
type SupplierDTO struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Platform           string    `json:"platform"`
	WebsiteURL         *string   `json:"website_url"`
	ContactEmail       *string   `json:"contact_email"`
	IsActive           bool      `json:"is_active"`
	AutoOrderEnabled   bool      `json:"auto_order_enabled"`
	MaxOrderValueCents int64     `json:"max_order_value_cents"`
	ReliabilityScore   float64   `json:"reliability_score"`
	TotalOrders        int64     `json:"total_orders"`
	SuccessfulOrders   int64     `json:"successful_orders"`
	CreatedAt          time.Time `json:"created_at"`
}

func supplierDTO(s models.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:                 s.ID,
		Name:               s.Name,
		Platform:           s.Platform,
		WebsiteURL:         s.WebsiteURL,
		ContactEmail:       s.ContactEmail,
		IsActive:           s.IsActive,
		AutoOrderEnabled:   s.AutoOrderEnabled,
		MaxOrderValueCents: s.MaxOrderValueCents,
		ReliabilityScore:   s.ReliabilityScore,
		TotalOrders:        s.TotalOrders,
		SuccessfulOrders:   s.SuccessfulOrders,
		CreatedAt:          s.CreatedAt,
	}
}

// SupplierInput creates or replaces a supplier.
type SupplierInput struct {
	Name               string  `json:"name" validate:"required,min=1,max=200"`
	Platform           string  `json:"platform" validate:"required,min=1,max=50"`
	WebsiteURL         *string `json:"website_url" validate:"omitempty,url"`
	ContactEmail       *string `json:"contact_email" validate:"omitempty,email"`
	AutoOrderEnabled   bool    `json:"auto_order_enabled"`
	MaxOrderValueCents *int64  `json:"max_order_value_cents" validate:"omitempty,min=0"`
}

// SupplierListInput filters the supplier list.
type SupplierListInput struct {
	Platform        *string
	IncludeInactive bool
}

// LinkDTO is a product-supplier link with its landed cost.
type LinkDTO struct {
	ID                 int64   `json:"id"`
	ProductID          int64   `json:"product_id"`
	SupplierID         int64   `json:"supplier_id"`
	SupplierName       *string `json:"supplier_name,omitempty"`
	SupplierProductURL string  `json:"supplier_product_url"`
	SupplierSKU        *string `json:"supplier_sku"`
	SupplierPriceCents int64   `json:"supplier_price_cents"`
	ShippingCostCents  int64   `json:"shipping_cost_cents"`
	TotalCostCents     int64   `json:"total_cost_cents"`
	ShippingDays       int     `json:"shipping_days"`
	IsPrimary          bool    `json:"is_primary"`
	IsAvailable        bool    `json:"is_available"`
	Priority           int     `json:"priority"`
}

func linkDTO(l models.ProductSupplier) LinkDTO {
	dto := LinkDTO{
		ID:                 l.ID,
		ProductID:          l.ProductID,
		SupplierID:         l.SupplierID,
		SupplierProductURL: l.SupplierProductURL,
		SupplierSKU:        l.SupplierSKU,
		SupplierPriceCents: l.SupplierPriceCents,
		ShippingCostCents:  l.ShippingCostCents,
		TotalCostCents:     l.SupplierPriceCents + l.ShippingCostCents,
		ShippingDays:       l.ShippingDays,
		IsPrimary:          l.IsPrimary,
		IsAvailable:        l.IsAvailable,
		Priority:           l.Priority,
	}
	if l.Supplier != nil {
		name := l.Supplier.Name
		dto.SupplierName = &name
	}
	return dto
}

// LinkInput attaches a supplier to a product.
type LinkInput struct {
	ProductID          int64   `json:"product_id" validate:"required,min=1"`
	SupplierID         int64   `json:"supplier_id" validate:"required,min=1"`
	SupplierProductURL string  `json:"supplier_product_url" validate:"omitempty,url"`
	SupplierSKU        *string `json:"supplier_sku"`
	SupplierPriceCents int64   `json:"supplier_price_cents" validate:"min=0"`
	ShippingCostCents  int64   `json:"shipping_cost_cents" validate:"min=0"`
	ShippingDays       *int    `json:"shipping_days" validate:"omitempty,min=0"`
	IsPrimary          *bool   `json:"is_primary"`
	Priority           int     `json:"priority"`
}

// RuleDTO is the admin API shape of a fulfillment rule.
type RuleDTO struct {
	ID                int64                   `json:"id"`
	Name              string                  `json:"name"`
	Description       *string                 `json:"description"`
	ConditionType     string                  `json:"condition_type"`
	ConditionOperator string                  `json:"condition_operator"`
	ConditionValue    string                  `json:"condition_value"`
	Action            enums.FulfillmentAction `json:"action"`
	Priority          int                     `json:"priority"`
	IsEnabled         bool                    `json:"is_enabled"`
}

func ruleDTO(r models.FulfillmentRule) RuleDTO {
	return RuleDTO{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		ConditionType:     r.ConditionType,
		ConditionOperator: r.ConditionOperator,
		ConditionValue:    r.ConditionValue,
		Action:            enums.FulfillmentAction(r.Action),
		Priority:          r.Priority,
		IsEnabled:         r.IsEnabled,
	}
}

// RuleInput creates or replaces a rule.
type RuleInput struct {
	Name              string  `json:"name" validate:"required,min=1,max=100"`
	Description       *string `json:"description"`
	ConditionType     string  `json:"condition_type" validate:"required"`
	ConditionOperator string  `json:"condition_operator" validate:"required"`
	ConditionValue    string  `json:"condition_value" validate:"required"`
	Action            string  `json:"action" validate:"required"`
	Priority          *int    `json:"priority"`
	IsEnabled         *bool   `json:"is_enabled"`
}

// ToggleResult reports a rule's new enabled flag.
type ToggleResult struct {
	Success   bool  `json:"success"`
	ID        int64 `json:"id"`
	IsEnabled bool  `json:"is_enabled"`
}

// Evaluation is the action the rules pick for an order.
type Evaluation struct {
	OrderID      int64                   `json:"order_id"`
	OrderValue   int64                   `json:"order_value"`
	Action       enums.FulfillmentAction `json:"action"`
	MatchedRules []string                `json:"matched_rules"`
}
