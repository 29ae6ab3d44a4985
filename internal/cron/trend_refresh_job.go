package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/urgency-engine/internal/trends"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

type suggestionRefresher interface {
	RefreshSuggestions(ctx context.Context) (*trends.RefreshResult, error)
}

// TrendRefreshJobParams configure the trending-hashtag refresh. A nil
// Refresher means no RapidAPI key is configured and every run is skipped.
type TrendRefreshJobParams struct {
	Logger    *logger.Logger
	Refresher suggestionRefresher
}

// NewTrendRefreshJob builds the job that queues suggestions from TikTok trends.
func NewTrendRefreshJob(params TrendRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	job := &trendRefreshJob{logg: params.Logger}
	// a typed nil *trends.Refresher must not count as configured
	if r, ok := params.Refresher.(*trends.Refresher); !ok || r != nil {
		job.refresher = params.Refresher
	}
	return job, nil
}

type trendRefreshJob struct {
	logg      *logger.Logger
	refresher suggestionRefresher
}

func (j *trendRefreshJob) Name() string { return "trend_refresh" }

func (j *trendRefreshJob) Run(ctx context.Context) error {
	if j.refresher == nil {
		j.logg.Info(ctx, "rapidapi key not configured; skipping trend refresh")
		return nil
	}
	result, err := j.refresher.RefreshSuggestions(ctx)
	if err != nil {
		return fmt.Errorf("refresh suggestions: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"fetched": result.Fetched,
		"created": result.Created,
		"skipped": result.Skipped,
	})
	j.logg.Info(logCtx, "trend refresh complete")
	return nil
}
