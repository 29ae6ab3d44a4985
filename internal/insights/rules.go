package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	visitsPerOrder    = 50
	visitsWithoutData = 100

	lowStockThreshold  = 5
	trendingScoreFloor = 85
	predictionHorizon  = 7
)

// Change is the percent change from previous to current. A move off zero
// counts as +100.
func Change(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// NewPeriodMetrics derives rates from raw order totals.
func NewPeriodMetrics(revenueCents, orders int64) PeriodMetrics {
	visits := int64(visitsWithoutData)
	var aov int64
	if orders > 0 {
		visits = orders * visitsPerOrder
		aov = revenueCents / orders
	}
	return PeriodMetrics{
		RevenueCents:       revenueCents,
		Orders:             orders,
		ConversionRate:     types.Percent(float64(orders), float64(visits), 2),
		AvgOrderValueCents: aov,
	}
}

// FallbackDigest writes the digest from the numbers alone.
func FallbackDigest(today, yesterday PeriodMetrics, topSeller string) (string, []string, []string, []string) {
	revenue := types.Dollars(today.RevenueCents)
	change := Change(float64(today.RevenueCents), float64(yesterday.RevenueCents))

	var summary string
	switch {
	case change > 10:
		summary = fmt.Sprintf("Great day! Revenue of %s is up %.0f%% from yesterday.", revenue, change)
	case change < -10:
		summary = fmt.Sprintf("Revenue of %s is down %.0f%% from yesterday. Worth investigating.", revenue, math.Abs(change))
	default:
		summary = fmt.Sprintf("Steady performance with %s in revenue and %d orders.", revenue, today.Orders)
	}

	highlights := make([]string, 0, 3)
	if today.Orders > 0 {
		highlights = append(highlights, fmt.Sprintf("Received %d orders today", today.Orders))
	}
	if topSeller != "" {
		highlights = append(highlights, "Top seller: "+topSeller)
	}
	if change > 0 {
		highlights = append(highlights, fmt.Sprintf("Revenue trending up %.0f%%", change))
	}
	if len(highlights) == 0 {
		highlights = append(highlights, "No notable highlights today")
	}

	concerns := make([]string, 0, 2)
	if change < -20 {
		concerns = append(concerns, "Significant revenue decline - check traffic and conversions")
	}
	if today.ConversionRate < 1 {
		concerns = append(concerns, "Conversion rate below 1% - review product pages and pricing")
	}

	recommendations := []string{
		"Review your top performing products for upsell opportunities",
		"Consider A/B testing your checkout flow",
	}
	return summary, highlights, concerns, recommendations
}

// FallbackRecommendation classifies a product by conversion and traffic.
func FallbackRecommendation(conversion float64, views int64) (string, string) {
	switch {
	case conversion > 3:
		return RecommendPromote, "Strong conversion rate above industry average. Consider increasing ad spend."
	case conversion < 1 && views > 50:
		return RecommendReprice, "Low conversion despite traffic suggests pricing issues. Test lower price point."
	case views < 10:
		return RecommendPromote, "Low visibility. Increase marketing to gather more data."
	default:
		return RecommendKeep, "Performance is average. Continue monitoring."
	}
}

// ParseRecommendation reads a RECOMMENDATION/REASONING reply.
func ParseRecommendation(reply string) (string, string) {
	recommendation := RecommendKeep
	upper := strings.ToUpper(reply)
	switch {
	case strings.Contains(upper, "PROMOTE"):
		recommendation = RecommendPromote
	case strings.Contains(upper, "REPRICE"):
		recommendation = RecommendReprice
	case strings.Contains(upper, "DROP"):
		recommendation = RecommendDrop
	}
	reasoning := reply
	if idx := strings.LastIndex(reply, "REASONING:"); idx >= 0 {
		reasoning = strings.TrimSpace(reply[idx+len("REASONING:"):])
	}
	if len(reasoning) > 300 {
		reasoning = reasoning[:300]
	}
	return recommendation, reasoning
}

// DetectAnomalies compares today against the trailing daily average and
// scans the live catalogue for stock and trend outliers.
func DetectAnomalies(current, average PeriodMetrics, live []models.Product, now time.Time) []Anomaly {
	out := make([]Anomaly, 0)
	add := func(kind, severity, message, action string, productID *int64) {
		out = append(out, Anomaly{
			Type:            kind,
			Severity:        severity,
			Message:         message,
			ProductID:       productID,
			SuggestedAction: action,
			DetectedAt:      now,
		})
	}

	revenueChange := Change(float64(current.RevenueCents), float64(average.RevenueCents))
	switch {
	case revenueChange < -30:
		severity := SeverityWarning
		if revenueChange < -50 {
			severity = SeverityCritical
		}
		add("revenue_drop", severity,
			fmt.Sprintf("Revenue is down %.0f%% compared to average", math.Abs(revenueChange)),
			"Review traffic sources and conversion funnel", nil)
	case revenueChange > 50:
		add("revenue_spike", SeverityInfo,
			fmt.Sprintf("Revenue is up %.0f%% - great performance!", revenueChange),
			"Identify what's working and double down", nil)
	}

	if ordersChange := Change(float64(current.Orders), float64(average.Orders)); ordersChange < -40 {
		add("orders_drop", SeverityWarning,
			fmt.Sprintf("Orders are down %.0f%% from average", math.Abs(ordersChange)),
			"Check site performance and marketing campaigns", nil)
	}

	for i := range live {
		p := live[i]
		if p.InventoryQuantity == nil {
			continue
		}
		id := p.ID
		switch stock := *p.InventoryQuantity; {
		case stock <= 0:
			add("out_of_stock", SeverityCritical, "Out of stock: "+p.Name,
				"Restock immediately or pause advertising", &id)
		case stock <= lowStockThreshold:
			add("low_inventory", SeverityWarning,
				fmt.Sprintf("Low stock alert: %s has only %d units left", p.Name, stock),
				"Reorder inventory or mark as limited edition", &id)
		}
	}

	for i := range live {
		p := live[i]
		if p.TrendScore <= trendingScoreFloor {
			continue
		}
		id := p.ID
		add("trending_product", SeverityInfo,
			fmt.Sprintf("Product trending: %s has a trend score of %.1f", p.Name, p.TrendScore),
			"Increase ad spend and ensure adequate inventory", &id)
	}
	return out
}

// Predict projects score one week out at the given daily velocity.
func Predict(product models.Product, velocity float64) TrendPrediction {
	predicted := math.Min(100, product.TrendScore+velocity*predictionHorizon)
	confidence := 0.5
	if math.Abs(velocity) > 2 {
		confidence = 0.7
	}

	var reasoning string
	switch {
	case velocity > 3:
		reasoning = fmt.Sprintf("Strong upward momentum (+%.1f/day). Expect continued growth.", velocity)
	case velocity > 0:
		reasoning = "Moderate growth trend. Product is gaining traction."
	case velocity < -3:
		reasoning = fmt.Sprintf("Declining interest (-%.1f/day). Consider refreshing content.", math.Abs(velocity))
	default:
		reasoning = "Stable performance. Maintain current strategy."
	}

	return TrendPrediction{
		ProductID:      product.ID,
		ProductName:    product.Name,
		CurrentScore:   product.TrendScore,
		Velocity:       velocity,
		PredictedScore: types.Round(predicted, 1),
		Confidence:     confidence,
		Reasoning:      reasoning,
	}
}

// SortPredictions orders by predicted score, highest first.
func SortPredictions(predictions []TrendPrediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].PredictedScore > predictions[j].PredictedScore
	})
}

// Velocity is the per-day change between the two newest signals. Gaps under a
// day count as one day.
func Velocity(newestFirst []models.TrendSignal) float64 {
	if len(newestFirst) < 2 {
		return 0
	}
	latest, prev := newestFirst[0], newestFirst[1]
	days := latest.CreatedAt.Sub(prev.CreatedAt).Hours() / 24
	if days < 1 {
		days = 1
	}
	return types.Round((latest.Value-prev.Value)/days, 1)
}

// SuggestPrice applies the conversion bands; ok is false when the price should stay.
func SuggestPrice(priceCents, views, purchases int64) (suggested int64, impact, reasoning string, ok bool) {
	conversion := 0.0
	if views > 0 {
		conversion = float64(purchases) / float64(views) * 100
	}

	var factor decimal.Decimal
	switch {
	case views > 100 && conversion < 1:
		factor = decimal.RequireFromString("0.85")
		reasoning = "High traffic but low conversion suggests price sensitivity. A price reduction could boost sales."
		impact = "Expected 20-30% increase in conversion rate"
	case conversion > 5 && purchases > 10:
		factor = decimal.RequireFromString("1.10")
		reasoning = "Strong conversion rate indicates price is below market value. Test a higher price point."
		impact = "Expected 10% revenue increase with minimal volume impact"
	case conversion >= 2 && conversion <= 4 && purchases > 5:
		factor = decimal.RequireFromString("1.05")
		reasoning = "Healthy conversion rate. Small price increase could improve margins."
		impact = "Expected 5% margin improvement"
	default:
		return priceCents, "", "", false
	}

	suggested = decimal.NewFromInt(priceCents).Mul(factor).IntPart()
	if suggested == priceCents {
		return priceCents, "", "", false
	}
	return suggested, impact, reasoning, true
}
