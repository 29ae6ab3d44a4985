package enums

import "fmt"

// OrderStatus is the storefront order lifecycle. Allowed moves live in internal/orders.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusFulfilled  OrderStatus = "fulfilled"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusAbandoned  OrderStatus = "abandoned"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusFulfilled,
	OrderStatusCancelled,
	OrderStatusRefunded,
	OrderStatusAbandoned,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// OrderStatuses lists the accepted values, in declaration order.
func OrderStatuses() []string {
	out := make([]string, 0, len(validOrderStatuses))
	for _, v := range validOrderStatuses {
		out = append(out, string(v))
	}
	return out
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// PaidOrderStatuses are the statuses that count toward revenue.
var PaidOrderStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusFulfilled,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// IsPaid reports whether the status counts as collected revenue.
func (o OrderStatus) IsPaid() bool {
	for _, candidate := range PaidOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}
