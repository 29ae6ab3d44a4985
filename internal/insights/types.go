package insights

import "time"

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	RecommendKeep    = "keep"
	RecommendPromote = "promote"
	RecommendReprice = "reprice"
	RecommendDrop    = "drop"
)

// PeriodMetrics summarizes non-cancelled orders in a window. Traffic is
// estimated as 50 visits per order until storefront sessions are tracked.
type PeriodMetrics struct {
	RevenueCents       int64   `json:"revenue_cents"`
	Orders             int64   `json:"orders"`
	ConversionRate     float64 `json:"conversion_rate"`
	AvgOrderValueCents int64   `json:"avg_order_value_cents"`
}

// DailyDigest compares today against yesterday.
type DailyDigest struct {
	Summary         string        `json:"summary"`
	KeyMetrics      PeriodMetrics `json:"key_metrics"`
	Highlights      []string      `json:"highlights"`
	Concerns        []string      `json:"concerns"`
	Recommendations []string      `json:"recommendations"`
	Source          string        `json:"source"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// ProductMetrics are the trailing 30-day numbers behind a product insight.
type ProductMetrics struct {
	Views          int64   `json:"views"`
	AddToCart      int64   `json:"add_to_cart"`
	Purchases      int64   `json:"purchases"`
	RevenueCents   int64   `json:"revenue_cents"`
	PriceCents     int64   `json:"price_cents"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ProductInsight is a keep/promote/reprice/drop call for one product.
type ProductInsight struct {
	ProductID      int64          `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Summary        string         `json:"summary"`
	Metrics        ProductMetrics `json:"metrics"`
	Recommendation string         `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Source         string         `json:"source"`
}

// Anomaly is a detected deviation worth an operator's attention.
type Anomaly struct {
	Type            string    `json:"type"`
	Severity        string    `json:"severity"`
	Message         string    `json:"message"`
	ProductID       *int64    `json:"product_id"`
	SuggestedAction string    `json:"suggested_action"`
	DetectedAt      time.Time `json:"detected_at"`
}

// TrendPrediction projects a product's trend score one week out.
type TrendPrediction struct {
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	CurrentScore   float64 `json:"current_score"`
	Velocity       float64 `json:"velocity"`
	PredictedScore float64 `json:"predicted_score"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// PricingSuggestion proposes a new price for an under- or over-converting product.
type PricingSuggestion struct {
	ProductID           int64  `json:"product_id"`
	ProductName         string `json:"product_name"`
	CurrentPriceCents   int64  `json:"current_price_cents"`
	SuggestedPriceCents int64  `json:"suggested_price_cents"`
	ExpectedImpact      string `json:"expected_impact"`
	Reasoning           string `json:"reasoning"`
}

// AlertCounts groups anomalies by severity.
type AlertCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// PredictionCounts summarizes the top predictions.
type PredictionCounts struct {
	TrendingUp    int `json:"trending_up"`
	TotalAnalyzed int `json:"total_analyzed"`
}

// OptimizationCounts summarizes pricing suggestions.
type OptimizationCounts struct {
	PriceSuggestions int `json:"price_suggestions"`
}

// Summary is the insights dashboard badge payload.
type Summary struct {
	Alerts        AlertCounts        `json:"alerts"`
	Predictions   PredictionCounts   `json:"predictions"`
	Optimizations OptimizationCounts `json:"optimizations"`
	LastUpdated   time.Time          `json:"last_updated"`
}
