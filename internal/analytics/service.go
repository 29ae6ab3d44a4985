package analytics

import (
	"context"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/types"
)

const (
	DefaultDays        = 30
	MaxDays            = 365
	DefaultFunnelDays  = 7
	MaxFunnelDays      = 90
	DefaultTopProducts = 10
	MaxTopProducts     = 50

	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// PaidStatuses are the order states that count as revenue.
var PaidStatuses = enums.PaidOrderStatuses

// Service provides dashboard aggregates over orders and product views.
type Service interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
	Overview(ctx context.Context, days int) (*Overview, error)
	RevenueSeries(ctx context.Context, days int) ([]RevenuePoint, error)
	OrdersSeries(ctx context.Context, days int) ([]OrdersPoint, error)
	TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error)
	Funnel(ctx context.Context, days int) (*Funnel, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an analytics service backed by the relational store.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) AdminStats(ctx context.Context) (*AdminStats, error) {
	now := s.now().UTC()
	today := startOfDay(now)
	weekAgo := today.Add(-7 * day)

	paidToday := OrderFilter{Window: Window{Since: today}, Statuses: PaidStatuses}
	ordersToday, err := s.repo.CountOrders(ctx, paidToday)
	if err != nil {
		return nil, dependency(err, "count orders today")
	}
	revenueToday, err := s.repo.SumOrderAmount(ctx, paidToday)
	if err != nil {
		return nil, dependency(err, "sum revenue today")
	}
	totalProducts, err := s.repo.CountProducts(ctx, nil)
	if err != nil {
		return nil, dependency(err, "count products")
	}
	live := enums.ProductStatusLive
	liveProducts, err := s.repo.CountProducts(ctx, &live)
	if err != nil {
		return nil, dependency(err, "count live products")
	}
	pending, err := s.repo.CountSuggestions(ctx, enums.SuggestionStatusPending)
	if err != nil {
		return nil, dependency(err, "count pending suggestions")
	}
	viewsToday, err := s.repo.CountViews(ctx, Window{Since: today}, nil)
	if err != nil {
		return nil, dependency(err, "count views today")
	}
	weekViews, err := s.repo.CountViews(ctx, Window{Since: weekAgo}, nil)
	if err != nil {
		return nil, dependency(err, "count weekly views")
	}
	weekOrders, err := s.repo.CountOrders(ctx, OrderFilter{Window: Window{Since: weekAgo}, Statuses: PaidStatuses})
	if err != nil {
		return nil, dependency(err, "count weekly orders")
	}

	return &AdminStats{
		OrdersToday:        ordersToday,
		RevenueTodayCents:  revenueToday,
		TotalProducts:      totalProducts,
		LiveProducts:       liveProducts,
		PendingSuggestions: pending,
		ViewsToday:         viewsToday,
		ConversionRate:     types.Percent(float64(weekOrders), float64(weekViews), 2),
	}, nil
}

func (s *service) Overview(ctx context.Context, days int) (*Overview, error) {
	days = clamp(days, DefaultDays, MaxDays)
	now := s.now().UTC()
	start := now.Add(-time.Duration(days) * day)
	prevStart := start.Add(-time.Duration(days) * day)

	current := OrderFilter{Window: Window{Since: start}, Statuses: PaidStatuses}
	previous := OrderFilter{Window: Window{Since: prevStart, Until: start}, Statuses: PaidStatuses}

	revenue, err := s.repo.SumOrderAmount(ctx, current)
	if err != nil {
		return nil, dependency(err, "sum revenue")
	}
	orders, err := s.repo.CountOrders(ctx, current)
	if err != nil {
		return nil, dependency(err, "count orders")
	}
	prevRevenue, err := s.repo.SumOrderAmount(ctx, previous)
	if err != nil {
		return nil, dependency(err, "sum previous revenue")
	}
	prevOrders, err := s.repo.CountOrders(ctx, previous)
	if err != nil {
		return nil, dependency(err, "count previous orders")
	}
	views, err := s.repo.CountViews(ctx, Window{Since: start}, nil)
	if err != nil {
		return nil, dependency(err, "count views")
	}

	var aov int64
	if orders > 0 {
		aov = revenue / orders
	}
	return &Overview{
		TotalRevenueCents:  revenue,
		TotalOrders:        orders,
		ConversionRate:     types.Percent(float64(orders), float64(views), 2),
		AvgOrderValueCents: aov,
		RevenueChange:      types.PercentChange(float64(revenue), float64(prevRevenue), 1),
		OrdersChange:       types.PercentChange(float64(orders), float64(prevOrders), 1),
	}, nil
}

func (s *service) RevenueSeries(ctx context.Context, days int) ([]RevenuePoint, error) {
	days = clamp(days, DefaultDays, MaxDays)
	now := s.now().UTC()
	start := now.Add(-time.Duration(days) * day)

	points, err := s.repo.ListOrderPoints(ctx, OrderFilter{Window: Window{Since: start}, Statuses: PaidStatuses})
	if err != nil {
		return nil, dependency(err, "list paid orders")
	}
	revenue := make(map[string]int64)
	counts := make(map[string]int64)
	for _, p := range points {
		key := p.CreatedAt.UTC().Format(dateLayout)
		revenue[key] += p.AmountCents
		counts[key]++
	}

	out := make([]RevenuePoint, 0, days+1)
	for _, date := range calendarDays(start, now) {
		out = append(out, RevenuePoint{
			Date:    date,
			Revenue: types.CentsToDollars(revenue[date]),
			Orders:  counts[date],
		})
	}
	return out, nil
}

func (s *service) OrdersSeries(ctx context.Context, days int) ([]OrdersPoint, error) {
	days = clamp(days, DefaultDays, MaxDays)
	now := s.now().UTC()
	start := now.Add(-time.Duration(days) * day)

	points, err := s.repo.ListOrderPoints(ctx, OrderFilter{Window: Window{Since: start}})
	if err != nil {
		return nil, dependency(err, "list orders")
	}
	byDate := make(map[string]*OrdersPoint)
	for _, p := range points {
		key := p.CreatedAt.UTC().Format(dateLayout)
		bucket, ok := byDate[key]
		if !ok {
			bucket = &OrdersPoint{Date: key}
			byDate[key] = bucket
		}
		switch p.Status {
		case enums.OrderStatusPaid, enums.OrderStatusFulfilled, enums.OrderStatusShipped, enums.OrderStatusDelivered:
			bucket.Paid++
		case enums.OrderStatusPending, enums.OrderStatusProcessing:
			bucket.Pending++
		case enums.OrderStatusCancelled, enums.OrderStatusRefunded, enums.OrderStatusAbandoned:
			bucket.Cancelled++
		}
	}

	out := make([]OrdersPoint, 0, days+1)
	for _, date := range calendarDays(start, now) {
		if bucket, ok := byDate[date]; ok {
			out = append(out, *bucket)
			continue
		}
		out = append(out, OrdersPoint{Date: date})
	}
	return out, nil
}

func (s *service) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	days = clamp(days, DefaultDays, MaxDays)
	limit = clamp(limit, DefaultTopProducts, MaxTopProducts)
	start := s.now().UTC().Add(-time.Duration(days) * day)

	rows, err := s.repo.TopProducts(ctx, OrderFilter{Window: Window{Since: start}, Statuses: PaidStatuses}, limit)
	if err != nil {
		return nil, dependency(err, "top products")
	}
	out := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopProduct{
			ProductID:    row.ProductID,
			Name:         row.Name,
			Slug:         row.Slug,
			MainImageURL: row.MainImageURL,
			UnitsSold:    row.Orders,
			RevenueCents: row.RevenueCents,
		})
	}
	return out, nil
}

func (s *service) Funnel(ctx context.Context, days int) (*Funnel, error) {
	days = clamp(days, DefaultFunnelDays, MaxFunnelDays)
	start := s.now().UTC().Add(-time.Duration(days) * day)
	window := Window{Since: start}

	views, err := s.repo.CountViews(ctx, window, nil)
	if err != nil {
		return nil, dependency(err, "count views")
	}
	carts, err := s.repo.CountOrders(ctx, OrderFilter{Window: window})
	if err != nil {
		return nil, dependency(err, "count orders")
	}
	purchases, err := s.repo.CountOrders(ctx, OrderFilter{Window: window, Statuses: PaidStatuses})
	if err != nil {
		return nil, dependency(err, "count paid orders")
	}
	return &Funnel{
		Views:              views,
		CartAdds:           carts,
		Purchases:          purchases,
		ViewToCartRate:     types.Percent(float64(carts), float64(views), 2),
		CartToPurchaseRate: types.Percent(float64(purchases), float64(carts), 2),
		OverallConversion:  types.Percent(float64(purchases), float64(views), 2),
	}, nil
}

func clamp(v, def, upper int) int {
	if v <= 0 {
		return def
	}
	if v > upper {
		return upper
	}
	return v
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// calendarDays lists every UTC date from start through end inclusive.
func calendarDays(start, end time.Time) []string {
	var out []string
	for cur := startOfDay(start); !cur.After(end); cur = cur.Add(day) {
		out = append(out, cur.Format(dateLayout))
	}
	return out
}

func dependency(err error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
