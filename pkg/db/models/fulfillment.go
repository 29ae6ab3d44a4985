package models

import "time"

// Supplier is a dropshipping vendor.
type Supplier struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name               string    `gorm:"column:name;not null"`
	Platform           string    `gorm:"column:platform;not null;default:aliexpress"`
	WebsiteURL         *string   `gorm:"column:website_url"`
	ContactEmail       *string   `gorm:"column:contact_email"`
	AutoOrderEnabled   bool      `gorm:"column:auto_order_enabled;not null;default:false"`
	MaxOrderValueCents int64     `gorm:"column:max_order_value_cents;not null;default:10000"`
	IsActive           bool      `gorm:"column:is_active;not null"`
	ReliabilityScore   float64   `gorm:"column:reliability_score;not null;default:0"`
	TotalOrders        int64     `gorm:"column:total_orders;not null;default:0"`
	SuccessfulOrders   int64     `gorm:"column:successful_orders;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductSupplier links a product to a supplier listing. At most one link per
// product is primary; the repository unsets siblings when a new primary lands.
type ProductSupplier struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID          int64     `gorm:"column:product_id;not null;index"`
	SupplierID         int64     `gorm:"column:supplier_id;not null;index"`
	SupplierProductURL string    `gorm:"column:supplier_product_url;not null"`
	SupplierSKU        *string   `gorm:"column:supplier_sku"`
	SupplierPriceCents int64     `gorm:"column:supplier_price_cents;not null"`
	ShippingCostCents  int64     `gorm:"column:shipping_cost_cents;not null;default:0"`
	ShippingDays       int       `gorm:"column:shipping_days;not null;default:14"`
	IsPrimary          bool      `gorm:"column:is_primary;not null;default:false"`
	IsAvailable        bool      `gorm:"column:is_available;not null"`
	Priority           int       `gorm:"column:priority;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// FulfillmentRule is a single (field, operator, literal) condition and the action it selects.
type FulfillmentRule struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name              string    `gorm:"column:name;not null"`
	Description       *string   `gorm:"column:description"`
	ConditionType     string    `gorm:"column:condition_type;not null"`
	ConditionOperator string    `gorm:"column:condition_operator;not null"`
	ConditionValue    string    `gorm:"column:condition_value;not null"`
	Action            string    `gorm:"column:action;not null"`
	Priority          int       `gorm:"column:priority;not null;default:0"`
	IsEnabled         bool      `gorm:"column:is_enabled;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}
