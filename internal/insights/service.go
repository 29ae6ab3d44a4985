package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"gorm.io/gorm"
)

const (
	productWindowDays  = 30
	predictionLimit    = 10
	summaryPredictions = 5
	trendingUpScore    = 70
	digestTopProducts  = 5

	digestMaxTokens  = 1024
	insightMaxTokens = 512

	day = 24 * time.Hour
)

var excludedFromMetrics = []enums.OrderStatus{enums.OrderStatusCancelled}

// Service produces operator-facing insights on top of the analytics aggregates.
type Service interface {
	DailyDigest(ctx context.Context) (*DailyDigest, error)
	ProductInsight(ctx context.Context, productID int64) (*ProductInsight, error)
	Anomalies(ctx context.Context) ([]Anomaly, error)
	Predictions(ctx context.Context) ([]TrendPrediction, error)
	PriceOptimizations(ctx context.Context) ([]PricingSuggestion, error)
	Summary(ctx context.Context) (*Summary, error)
}

// ServiceParams wires the insights service.
type ServiceParams struct {
	Analytics analytics.Repository
	Products  products.Repository
	Signals   Repository
	Policy    *ai.Policy
}

type service struct {
	analytics analytics.Repository
	products  products.Repository
	signals   Repository
	policy    *ai.Policy
	now       func() time.Time
}

// NewService builds the insights service. A nil policy means heuristics only.
func NewService(params ServiceParams) (Service, error) {
	if params.Analytics == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "analytics repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if params.Signals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "signal repository required")
	}
	return &service{
		analytics: params.Analytics,
		products:  params.Products,
		signals:   params.Signals,
		policy:    params.Policy,
		now:       time.Now,
	}, nil
}

type digestReply struct {
	Summary         string   `json:"summary"`
	Highlights      []string `json:"highlights"`
	Concerns        []string `json:"concerns"`
	Recommendations []string `json:"recommendations"`
}

func (s *service) DailyDigest(ctx context.Context) (*DailyDigest, error) {
	now := s.now().UTC()
	today := startOfDay(now)

	current, err := s.period(ctx, analytics.Window{Since: today, Until: now})
	if err != nil {
		return nil, err
	}
	yesterday, err := s.period(ctx, analytics.Window{Since: today.Add(-day), Until: today})
	if err != nil {
		return nil, err
	}
	top, err := s.analytics.TopProducts(ctx, analytics.OrderFilter{
		Window:   analytics.Window{Since: today},
		Statuses: analytics.PaidStatuses,
	}, digestTopProducts)
	if err != nil {
		return nil, dependency(err, "top products")
	}

	digest := &DailyDigest{KeyMetrics: current, GeneratedAt: now}

	var reply digestReply
	if _, ok := s.policy.CompleteJSON(ctx, "insights.daily_digest", digestPrompt(current, yesterday, top), digestMaxTokens, &reply); ok {
		digest.Summary = reply.Summary
		if digest.Summary == "" {
			digest.Summary = "Business performance summary not available."
		}
		digest.Highlights = nonNil(reply.Highlights)
		digest.Concerns = nonNil(reply.Concerns)
		digest.Recommendations = nonNil(reply.Recommendations)
		digest.Source = ai.SourceAI
		return digest, nil
	}

	topSeller := ""
	if len(top) > 0 {
		topSeller = top[0].Name
	}
	digest.Summary, digest.Highlights, digest.Concerns, digest.Recommendations = FallbackDigest(current, yesterday, topSeller)
	digest.Source = ai.SourceHeuristic
	return digest, nil
}

func (s *service) ProductInsight(ctx context.Context, productID int64) (*ProductInsight, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, dependency(err, "load product")
	}

	metrics, err := s.productMetrics(ctx, product.ID, product.PriceCents)
	if err != nil {
		return nil, err
	}
	insight := &ProductInsight{
		ProductID:   product.ID,
		ProductName: product.Name,
		Summary:     fmt.Sprintf("Product has %d views with %.1f%% conversion", metrics.Views, metrics.ConversionRate),
		Metrics:     *metrics,
	}

	prompt := productPrompt(product.Name, product.PriceCents, costOf(product.PriceCents, product.CostCents), *metrics)
	if reply, ok := s.policy.CompleteText(ctx, "insights.product", ai.CompletionRequest{
		Messages:  []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens: insightMaxTokens,
	}); ok {
		insight.Recommendation, insight.Reasoning = ParseRecommendation(reply)
		insight.Source = ai.SourceAI
		return insight, nil
	}

	insight.Recommendation, insight.Reasoning = FallbackRecommendation(metrics.ConversionRate, metrics.Views)
	insight.Source = ai.SourceHeuristic
	return insight, nil
}

func (s *service) Anomalies(ctx context.Context) ([]Anomaly, error) {
	now := s.now().UTC()
	today := startOfDay(now)

	current, err := s.period(ctx, analytics.Window{Since: today, Until: now})
	if err != nil {
		return nil, err
	}
	week, err := s.period(ctx, analytics.Window{Since: today.Add(-7 * day), Until: today})
	if err != nil {
		return nil, err
	}
	average := PeriodMetrics{
		RevenueCents: week.RevenueCents / 7,
		Orders:       week.Orders / 7,
	}

	live, err := s.products.ListByStatus(ctx, enums.ProductStatusLive, 0)
	if err != nil {
		return nil, dependency(err, "list live products")
	}
	return DetectAnomalies(current, average, live, now), nil
}

func (s *service) Predictions(ctx context.Context) ([]TrendPrediction, error) {
	return s.predictions(ctx, predictionLimit)
}

func (s *service) predictions(ctx context.Context, limit int) ([]TrendPrediction, error) {
	live, err := s.products.ListByStatus(ctx, enums.ProductStatusLive, limit)
	if err != nil {
		return nil, dependency(err, "list live products")
	}
	out := make([]TrendPrediction, 0, len(live))
	for _, product := range live {
		signals, err := s.signals.LatestSignals(ctx, product.ID, TrendScoreMetric, 2)
		if err != nil {
			return nil, dependency(err, "load trend signals")
		}
		out = append(out, Predict(product, Velocity(signals)))
	}
	SortPredictions(out)
	return out, nil
}

func (s *service) PriceOptimizations(ctx context.Context) ([]PricingSuggestion, error) {
	live, err := s.products.ListByStatus(ctx, enums.ProductStatusLive, 0)
	if err != nil {
		return nil, dependency(err, "list live products")
	}
	out := make([]PricingSuggestion, 0)
	for _, product := range live {
		metrics, err := s.productMetrics(ctx, product.ID, product.PriceCents)
		if err != nil {
			return nil, err
		}
		suggested, impact, reasoning, ok := SuggestPrice(product.PriceCents, metrics.Views, metrics.Purchases)
		if !ok {
			continue
		}
		out = append(out, PricingSuggestion{
			ProductID:           product.ID,
			ProductName:         product.Name,
			CurrentPriceCents:   product.PriceCents,
			SuggestedPriceCents: suggested,
			ExpectedImpact:      impact,
			Reasoning:           reasoning,
		})
	}
	return out, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	anomalies, err := s.Anomalies(ctx)
	if err != nil {
		return nil, err
	}
	predictions, err := s.predictions(ctx, summaryPredictions)
	if err != nil {
		return nil, err
	}
	pricing, err := s.PriceOptimizations(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{LastUpdated: s.now().UTC()}
	for _, a := range anomalies {
		switch a.Severity {
		case SeverityCritical:
			summary.Alerts.Critical++
		case SeverityWarning:
			summary.Alerts.Warning++
		default:
			summary.Alerts.Info++
		}
	}
	for _, p := range predictions {
		if p.PredictedScore > trendingUpScore {
			summary.Predictions.TrendingUp++
		}
	}
	summary.Predictions.TotalAnalyzed = len(predictions)
	summary.Optimizations.PriceSuggestions = len(pricing)
	return summary, nil
}

func (s *service) period(ctx context.Context, window analytics.Window) (PeriodMetrics, error) {
	filter := analytics.OrderFilter{Window: window, Exclude: excludedFromMetrics}
	revenue, err := s.analytics.SumOrderAmount(ctx, filter)
	if err != nil {
		return PeriodMetrics{}, dependency(err, "sum revenue")
	}
	orders, err := s.analytics.CountOrders(ctx, filter)
	if err != nil {
		return PeriodMetrics{}, dependency(err, "count orders")
	}
	return NewPeriodMetrics(revenue, orders), nil
}

func (s *service) productMetrics(ctx context.Context, productID, priceCents int64) (*ProductMetrics, error) {
	window := analytics.Window{Since: s.now().UTC().Add(-productWindowDays * day)}
	id := productID

	views, err := s.analytics.CountViews(ctx, window, &id)
	if err != nil {
		return nil, dependency(err, "count product views")
	}
	carts, err := s.analytics.CountOrders(ctx, analytics.OrderFilter{Window: window, ProductID: &id})
	if err != nil {
		return nil, dependency(err, "count product orders")
	}
	paid := analytics.OrderFilter{Window: window, Statuses: analytics.PaidStatuses, ProductID: &id}
	purchases, err := s.analytics.CountOrders(ctx, paid)
	if err != nil {
		return nil, dependency(err, "count product purchases")
	}
	revenue, err := s.analytics.SumOrderAmount(ctx, paid)
	if err != nil {
		return nil, dependency(err, "sum product revenue")
	}
	return &ProductMetrics{
		Views:          views,
		AddToCart:      carts,
		Purchases:      purchases,
		RevenueCents:   revenue,
		PriceCents:     priceCents,
		ConversionRate: types.Percent(float64(purchases), float64(views), 2),
	}, nil
}

func digestPrompt(today, yesterday PeriodMetrics, top []analytics.ProductRevenue) string {
	var lines []string
	for i, p := range top {
		lines = append(lines, fmt.Sprintf("%d. %s - %d units, %s", i+1, p.Name, p.Orders, types.Dollars(p.RevenueCents)))
	}
	topText := "No sales data available"
	if len(lines) > 0 {
		topText = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(`Analyze this e-commerce data and provide a daily business digest.

Today's Metrics:
- Revenue: %s
- Orders: %d
- Conversion Rate: %.2f%%
- Average Order Value: %s

Yesterday's Metrics:
- Revenue: %s
- Orders: %d
- Conversion Rate: %.2f%%

Top Products Today:
%s

Respond with JSON containing "summary" (2-3 sentences), "highlights" (2-3 items),
"concerns" (0-2 items) and "recommendations" (2-3 actionable items).`,
		types.Dollars(today.RevenueCents), today.Orders, today.ConversionRate, types.Dollars(today.AvgOrderValueCents),
		types.Dollars(yesterday.RevenueCents), yesterday.Orders, yesterday.ConversionRate,
		topText)
}

func productPrompt(name string, priceCents, costCents int64, m ProductMetrics) string {
	return fmt.Sprintf(`Analyze this product's performance and provide a recommendation.

Product: %s
Price: %s
Cost: %s
Margin: %.1f%%

Last 30 Days Performance:
- Views: %d
- Add to Cart: %d
- Purchases: %d
- Revenue: %s
- Conversion Rate: %.2f%%

Industry average conversion is typically 2-3%%.

Should this product be: KEEP, PROMOTE, REPRICE, or DROP?

Respond with:
RECOMMENDATION: [one of KEEP/PROMOTE/REPRICE/DROP]
REASONING: [1-2 sentences explaining why]`,
		name, types.Dollars(priceCents), types.Dollars(costCents),
		types.Percent(float64(priceCents-costCents), float64(priceCents), 1),
		m.Views, m.AddToCart, m.Purchases, types.Dollars(m.RevenueCents), m.ConversionRate)
}

// costOf falls back to a 60% margin estimate when no cost is on file.
func costOf(priceCents int64, costCents *int64) int64 {
	if costCents != nil {
		return *costCents
	}
	return priceCents * 4 / 10
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func dependency(err error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
