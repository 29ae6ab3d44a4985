package insights

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/analytics"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(context.Context, ai.CompletionRequest) (*ai.Completion, error) {
	return &ai.Completion{Text: s.reply}, nil
}

func setup(t *testing.T, remote ai.Completer) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:insights_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		NowFunc: func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.ProductView{}, &models.Order{}, &models.TrendSignal{}))

	var policy *ai.Policy
	if remote != nil {
		policy = ai.NewPolicy(remote, nil)
	}
	svc, err := NewService(ServiceParams{
		Analytics: analytics.NewRepository(conn),
		Products:  products.NewRepository(conn),
		Signals:   NewRepository(conn),
		Policy:    policy,
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return fixedNow }
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, slug string, price int64, score float64, stock *int) *models.Product {
	t.Helper()
	p := &models.Product{
		Slug:              slug,
		Name:              slug,
		PriceCents:        price,
		Status:            enums.ProductStatusLive,
		TrendScore:        score,
		InventoryQuantity: stock,
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, conn *gorm.DB, productID *int64, status enums.OrderStatus, cents int64, at time.Time) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Order{
		ProductID:   productID,
		Email:       "buyer@example.com",
		AmountCents: cents,
		Status:      status,
		CreatedAt:   at,
		UpdatedAt:   at,
	}).Error)
}

func seedViews(t *testing.T, conn *gorm.DB, productID int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, conn.Create(&models.ProductView{ProductID: productID, CreatedAt: fixedNow.Add(-time.Hour)}).Error)
	}
}

func TestProductInsightNotFound(t *testing.T) {
	svc, _ := setup(t, nil)

	_, err := svc.ProductInsight(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestProductInsightFallsBackToHeuristic(t *testing.T) {
	svc, conn := setup(t, nil)
	p := seedProduct(t, conn, "desk-lamp", 2000, 40, nil)
	seedViews(t, conn, p.ID, 60)
	seedOrder(t, conn, &p.ID, enums.OrderStatusPending, 2000, fixedNow.Add(-time.Hour))

	insight, err := svc.ProductInsight(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, RecommendReprice, insight.Recommendation)
	assert.Equal(t, ai.SourceHeuristic, insight.Source)
	assert.Equal(t, int64(60), insight.Metrics.Views)
	assert.Equal(t, int64(1), insight.Metrics.AddToCart)
	assert.Zero(t, insight.Metrics.Purchases)
	assert.Equal(t, "Product has 60 views with 0.0% conversion", insight.Summary)
}

func TestProductInsightUsesRemoteReply(t *testing.T) {
	svc, conn := setup(t, &stubCompleter{reply: "RECOMMENDATION: PROMOTE\nREASONING: Strong demand."})
	p := seedProduct(t, conn, "mini-fan", 1500, 70, nil)

	insight, err := svc.ProductInsight(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, RecommendPromote, insight.Recommendation)
	assert.Equal(t, "Strong demand.", insight.Reasoning)
	assert.Equal(t, ai.SourceAI, insight.Source)
}

func TestAnomaliesAgainstWeeklyAverage(t *testing.T) {
	svc, conn := setup(t, nil)
	for d := 1; d <= 7; d++ {
		seedOrder(t, conn, nil, enums.OrderStatusPaid, 7000, fixedNow.Add(-time.Duration(d)*24*time.Hour))
	}
	seedOrder(t, conn, nil, enums.OrderStatusCancelled, 9000, fixedNow.Add(-time.Hour))
	seedProduct(t, conn, "low-stock", 1000, 10, intPtr(2))

	anomalies, err := svc.Anomalies(context.Background())
	require.NoError(t, err)
	require.Len(t, anomalies, 3)
	assert.Equal(t, "revenue_drop", anomalies[0].Type)
	assert.Equal(t, SeverityCritical, anomalies[0].Severity)
	assert.Equal(t, "orders_drop", anomalies[1].Type)
	assert.Equal(t, "low_inventory", anomalies[2].Type)
}

func TestPredictionsUseSignalVelocity(t *testing.T) {
	svc, conn := setup(t, nil)
	rising := seedProduct(t, conn, "rising", 1000, 50, nil)
	seedProduct(t, conn, "steady", 1000, 80, nil)
	require.NoError(t, conn.Create(&models.TrendSignal{ProductID: &rising.ID, Source: "tiktok", Metric: TrendScoreMetric, Value: 40, CreatedAt: fixedNow.Add(-48 * time.Hour)}).Error)
	require.NoError(t, conn.Create(&models.TrendSignal{ProductID: &rising.ID, Source: "tiktok", Metric: TrendScoreMetric, Value: 50, CreatedAt: fixedNow}).Error)

	predictions, err := svc.Predictions(context.Background())
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, rising.ID, predictions[0].ProductID)
	assert.Equal(t, 5.0, predictions[0].Velocity)
	assert.Equal(t, 85.0, predictions[0].PredictedScore)
	assert.Equal(t, 80.0, predictions[1].PredictedScore)
}

func TestPriceOptimizations(t *testing.T) {
	svc, conn := setup(t, nil)
	p := seedProduct(t, conn, "pricey", 2000, 30, nil)
	seedViews(t, conn, p.ID, 150)
	seedOrder(t, conn, &p.ID, enums.OrderStatusPaid, 2000, fixedNow.Add(-time.Hour))
	seedProduct(t, conn, "quiet", 1000, 30, nil)

	suggestions, err := svc.PriceOptimizations(context.Background())
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, p.ID, suggestions[0].ProductID)
	assert.Equal(t, int64(1700), suggestions[0].SuggestedPriceCents)
}

func TestDailyDigestFallback(t *testing.T) {
	svc, conn := setup(t, nil)
	seedOrder(t, conn, nil, enums.OrderStatusPaid, 3000, fixedNow.Add(-2*time.Hour))
	seedOrder(t, conn, nil, enums.OrderStatusPaid, 1000, fixedNow.Add(-24*time.Hour))

	digest, err := svc.DailyDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Great day! Revenue of $30.00 is up 200% from yesterday.", digest.Summary)
	assert.Equal(t, int64(1), digest.KeyMetrics.Orders)
	assert.Equal(t, ai.SourceHeuristic, digest.Source)
	assert.Equal(t, fixedNow, digest.GeneratedAt)
}

func TestDailyDigestFromRemote(t *testing.T) {
	reply := "```json\n{\"summary\":\"All good\",\"highlights\":[\"Sales up\"],\"recommendations\":[\"Keep going\"]}\n```"
	svc, _ := setup(t, &stubCompleter{reply: reply})

	digest, err := svc.DailyDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "All good", digest.Summary)
	assert.Equal(t, []string{"Sales up"}, digest.Highlights)
	assert.Equal(t, []string{}, digest.Concerns)
	assert.Equal(t, ai.SourceAI, digest.Source)
}

func TestSummaryCountsEverySection(t *testing.T) {
	svc, conn := setup(t, nil)
	seedProduct(t, conn, "sold-out", 1000, 90, intPtr(0))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Alerts.Critical)
	assert.Equal(t, 1, summary.Alerts.Info)
	assert.Equal(t, 1, summary.Predictions.TrendingUp)
	assert.Equal(t, 1, summary.Predictions.TotalAnalyzed)
	assert.Zero(t, summary.Optimizations.PriceSuggestions)
}
