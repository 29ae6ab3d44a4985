package analytics

// AdminStats is the dashboard header.
type AdminStats struct {
	OrdersToday        int64   `json:"orders_today"`
	RevenueTodayCents  int64   `json:"revenue_today_cents"`
	TotalProducts      int64   `json:"total_products"`
	LiveProducts       int64   `json:"live_products"`
	PendingSuggestions int64   `json:"pending_suggestions"`
	ViewsToday         int64   `json:"views_today"`
	ConversionRate     float64 `json:"conversion_rate"`
}

// Overview compares the window against the preceding window of equal length.
type Overview struct {
	TotalRevenueCents  int64   `json:"total_revenue_cents"`
	TotalOrders        int64   `json:"total_orders"`
	ConversionRate     float64 `json:"conversion_rate"`
	AvgOrderValueCents int64   `json:"avg_order_value_cents"`
	RevenueChange      float64 `json:"revenue_change"`
	OrdersChange       float64 `json:"orders_change"`
}

// RevenuePoint is one calendar day of paid revenue, in dollars.
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// OrdersPoint buckets one calendar day of orders by outcome.
type OrdersPoint struct {
	Date      string `json:"date"`
	Paid      int64  `json:"paid"`
	Pending   int64  `json:"pending"`
	Cancelled int64  `json:"cancelled"`
}

// TopProduct ranks a product by paid revenue.
type TopProduct struct {
	ProductID    int64   `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	MainImageURL *string `json:"main_image_url"`
	UnitsSold    int64   `json:"units_sold"`
	RevenueCents int64   `json:"revenue"`
}

// Funnel approximates cart adds with all orders created in the window.
type Funnel struct {
	Views              int64   `json:"views"`
	CartAdds           int64   `json:"cart_adds"`
	Purchases          int64   `json:"purchases"`
	ViewToCartRate     float64 `json:"view_to_cart_rate"`
	CartToPurchaseRate float64 `json:"cart_to_purchase_rate"`
	OverallConversion  float64 `json:"overall_conversion"`
}
