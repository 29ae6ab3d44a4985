package orders

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// OrderDTO is the admin API shape of an order.
type OrderDTO struct {
	ID              int64             `json:"id"`
	ProductID       *int64            `json:"product_id"`
	ProductName     *string           `json:"product_name"`
	Email           string            `json:"email"`
	AmountCents     int64             `json:"amount_cents"`
	Status          enums.OrderStatus `json:"status"`
	StripeSessionID *string           `json:"stripe_session_id,omitempty"`
	TrackingNumber  *string           `json:"tracking_number,omitempty"`
	TrackingURL     *string           `json:"tracking_url,omitempty"`
	ShippedAt       *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	SupplierOrderID *string           `json:"supplier_order_id,omitempty"`
	ShippingAddress *string           `json:"shipping_address,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toDTO(row OrderRow) OrderDTO {
	o := row.Order
	return OrderDTO{
		ID:              o.ID,
		ProductID:       o.ProductID,
		ProductName:     row.ProductName,
		Email:           o.Email,
		AmountCents:     o.AmountCents,
		Status:          o.Status,
		StripeSessionID: o.StripeSessionID,
		TrackingNumber:  o.TrackingNumber,
		TrackingURL:     o.TrackingURL,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		SupplierOrderID: o.SupplierOrderID,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ListInput captures the admin order list query.
type ListInput struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

// StatusUpdateResult reports the outcome of a status change.
type StatusUpdateResult struct {
	OrderID        int64             `json:"order_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
	Changed        bool              `json:"changed"`
}

// TrackingResult reports the outcome of attaching tracking information.
type TrackingResult struct {
	Success        bool              `json:"success"`
	OrderID        int64             `json:"order_id"`
	TrackingNumber string            `json:"tracking_number"`
	TrackingURL    *string           `json:"tracking_url,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	ShippedAt      time.Time         `json:"shipped_at"`
}

// DeliveryResult reports the outcome of marking an order delivered.
type DeliveryResult struct {
	Success     bool              `json:"success"`
	OrderID     int64             `json:"order_id"`
	Status      enums.OrderStatus `json:"status"`
	DeliveredAt time.Time         `json:"delivered_at"`
}
