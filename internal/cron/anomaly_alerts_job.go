package cron

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/insights"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"go.uber.org/multierr"
)

const anomalyAlertTTL = 24 * time.Hour

type anomalySource interface {
	Anomalies(ctx context.Context) ([]insights.Anomaly, error)
}

type alertNotifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// AnomalyAlertsJobParams configure the anomaly alerting job.
type AnomalyAlertsJobParams struct {
	Logger   *logger.Logger
	Source   anomalySource
	Notifier alertNotifier
	// Seen suppresses repeat alerts for the same anomaly within a day.
	Seen kvstore.Store
}

// NewAnomalyAlertsJob builds the job that turns warning and critical
// anomalies into admin notifications.
func NewAnomalyAlertsJob(params AnomalyAlertsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("anomaly source required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &anomalyAlertsJob{
		logg:     params.Logger,
		source:   params.Source,
		notifier: params.Notifier,
		seen:     params.Seen,
		now:      time.Now,
	}, nil
}

type anomalyAlertsJob struct {
	logg     *logger.Logger
	source   anomalySource
	notifier alertNotifier
	seen     kvstore.Store
	now      func() time.Time
}

func (j *anomalyAlertsJob) Name() string { return "anomaly_alerts" }

func (j *anomalyAlertsJob) Run(ctx context.Context) error {
	anomalies, err := j.source.Anomalies(ctx)
	if err != nil {
		return fmt.Errorf("detect anomalies: %w", err)
	}
	var errs error
	sent := 0
	for _, a := range anomalies {
		priority, ok := alertPriority(a.Severity)
		if !ok {
			continue
		}
		key := j.alertKey(a)
		if j.alreadySent(ctx, key) {
			continue
		}
		metadata := map[string]any{"anomaly_type": a.Type, "severity": a.Severity}
		if a.ProductID != nil {
			metadata["product_id"] = *a.ProductID
		}
		if _, err := j.notifier.Create(ctx, notifications.CreateInput{
			Type:     enums.NotificationTypeAlert,
			Title:    a.Message,
			Message:  a.SuggestedAction,
			Priority: priority,
			Metadata: metadata,
		}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notify %s: %w", a.Type, err))
			continue
		}
		j.markSent(ctx, key)
		sent++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"detected": len(anomalies), "alerted": sent})
	j.logg.Info(logCtx, "anomaly alerts complete")
	return errs
}

func alertPriority(severity string) (enums.NotificationPriority, bool) {
	switch severity {
	case insights.SeverityCritical:
		return enums.NotificationPriorityUrgent, true
	case insights.SeverityWarning:
		return enums.NotificationPriorityHigh, true
	}
	return "", false
}

func (j *anomalyAlertsJob) alertKey(a insights.Anomaly) string {
	subject := "store"
	if a.ProductID != nil {
		subject = strconv.FormatInt(*a.ProductID, 10)
	}
	return fmt.Sprintf("cron:anomaly:%s:%s:%s", j.now().UTC().Format("20060102"), a.Type, subject)
}

func (j *anomalyAlertsJob) alreadySent(ctx context.Context, key string) bool {
	if j.seen == nil {
		return false
	}
	_, err := j.seen.Get(ctx, key)
	return err == nil
}

func (j *anomalyAlertsJob) markSent(ctx context.Context, key string) {
	if j.seen == nil {
		return
	}
	if err := j.seen.Set(ctx, key, "1", anomalyAlertTTL); err != nil {
		j.logg.WarnErr(ctx, "anomaly dedupe write failed", err)
	}
}
