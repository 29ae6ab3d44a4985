package models

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Order is a single-product storefront purchase.
type Order struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID       *int64            `gorm:"column:product_id;index"`
	Email           string            `gorm:"column:email;not null"`
	AmountCents     int64             `gorm:"column:amount_cents;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:pending"`
	StripeSessionID *string           `gorm:"column:stripe_session_id;uniqueIndex"`
	TrackingNumber  *string           `gorm:"column:tracking_number"`
	TrackingURL     *string           `gorm:"column:tracking_url"`
	ShippedAt       *time.Time        `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time        `gorm:"column:delivered_at"`
	SupplierOrderID *string           `gorm:"column:supplier_order_id"`
	ShippingAddress *string           `gorm:"column:shipping_address"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
