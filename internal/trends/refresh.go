package trends

import (
	"context"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/ai"
	"github.com/angelmondragon/urgency-engine/internal/suggestions"
	"github.com/angelmondragon/urgency-engine/internal/trends/tiktok"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

const (
	signalSource       = "tiktok"
	defaultRefreshSize = 20
	// Scored suggestions are priced as if the supplier charges this much.
	assumedCostCents = 899
)

// Metrics recorded for every hashtag the refresh job sees.
const (
	MetricViews      = "views"
	MetricGrowthRate = "growth_rate"
	MetricTrendScore = "trend_score"
)

// HashtagSource yields trending hashtags.
type HashtagSource interface {
	TrendingHashtags(ctx context.Context, count int) ([]tiktok.Trend, error)
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Refresher turns trending hashtags into scored, pending suggestions.
type Refresher struct {
	source      HashtagSource
	scorer      ai.Service
	trends      Repository
	suggestions suggestions.Repository
	logg        *logger.Logger
	size        int
}

// NewRefresher wires the suggestion refresh job.
func NewRefresher(source HashtagSource, scorer ai.Service, trendRepo Repository, suggestionRepo suggestions.Repository, logg *logger.Logger) (*Refresher, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hashtag source required")
	}
	if c, ok := source.(*tiktok.Client); ok && c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hashtag source required")
	}
	if scorer == nil || trendRepo == nil || suggestionRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "refresh dependencies required")
	}
	return &Refresher{
		source:      source,
		scorer:      scorer,
		trends:      trendRepo,
		suggestions: suggestionRepo,
		logg:        logg,
		size:        defaultRefreshSize,
	}, nil
}

// RefreshSuggestions scores each trending hashtag, records its signals and
// queues a pending suggestion for hashtags not seen before.
func (r *Refresher) RefreshSuggestions(ctx context.Context) (*RefreshResult, error) {
	trends, err := r.source.TrendingHashtags(ctx, r.size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch trending hashtags")
	}

	result := &RefreshResult{Fetched: len(trends)}
	for _, trend := range trends {
		hashtag := strings.TrimSpace(strings.TrimPrefix(trend.Hashtag, "#"))
		if hashtag == "" {
			result.Skipped++
			continue
		}
		score := r.scorer.ScoreTrend(ctx, ai.ScoreInput{
			Hashtag:    hashtag,
			Views:      trend.Views,
			GrowthRate: trend.GrowthRate,
			Engagement: trend.Engagement,
			VideoCount: trend.VideoCount,
		})
		if err := r.recordSignals(ctx, trend, score); err != nil {
			return result, err
		}

		seen, err := r.suggestions.HashtagExists(ctx, hashtag)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check hashtag")
		}
		if seen {
			result.Skipped++
			continue
		}

		pricing := r.scorer.RecommendPricing(ctx, ai.PricingInput{
			ProductName:       hashtag,
			SupplierCostCents: assumedCostCents,
			TargetMargin:      0.5,
		})
		reasoning := score.Reasoning
		price := pricing.SuggestedPriceCents
		if _, err := r.suggestions.Create(ctx, &models.TrendSuggestion{
			Hashtag:              hashtag,
			SuggestedName:        score.SuggestedName,
			SuggestedDescription: score.SuggestedDescription,
			SuggestedPriceCents:  &price,
			TrendScore:           score.TrendScore,
			UrgencyScore:         score.UrgencyScore,
			Reasoning:            &reasoning,
			Views:                trend.Views,
			VideoCount:           trend.VideoCount,
			GrowthRate:           trend.GrowthRate,
		}); err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create suggestion")
		}
		result.Created++
	}

	if r.logg != nil {
		r.logg.Info(r.logg.WithFields(ctx, map[string]any{
			"fetched": result.Fetched,
			"created": result.Created,
			"skipped": result.Skipped,
		}), "trends.refresh.completed")
	}
	return result, nil
}

func (r *Refresher) recordSignals(ctx context.Context, trend tiktok.Trend, score ai.ScoreResult) error {
	var raw *string
	if len(trend.Raw) > 0 {
		s := string(trend.Raw)
		raw = &s
	}
	signals := []models.TrendSignal{
		{Source: signalSource, Metric: MetricViews, Value: float64(trend.Views), RawData: raw},
		{Source: signalSource, Metric: MetricGrowthRate, Value: trend.GrowthRate},
		{Source: signalSource, Metric: MetricTrendScore, Value: score.TrendScore},
	}
	for i := range signals {
		if err := r.trends.CreateSignal(ctx, &signals[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record trend signal")
		}
	}
	return nil
}
