package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/fulfillment"
	"github.com/angelmondragon/urgency-engine/internal/insights"
	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/trends"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	results []fulfillment.AutoOrderResult
	err     error
	calls   int
}

func (f *fakeQueue) ProcessQueue(context.Context) ([]fulfillment.AutoOrderResult, error) {
	f.calls++
	return f.results, f.err
}

func TestFulfillmentQueueJob(t *testing.T) {
	queue := &fakeQueue{results: []fulfillment.AutoOrderResult{{Success: true, OrderID: 1}, {OrderID: 2}}}
	job, err := NewFulfillmentQueueJob(FulfillmentQueueJobParams{Logger: testLogger(), Processor: queue, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "fulfillment_queue", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, queue.calls)

	queue.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))

	disabled, err := NewFulfillmentQueueJob(FulfillmentQueueJobParams{Logger: testLogger(), Processor: queue})
	require.NoError(t, err)
	require.NoError(t, disabled.Run(context.Background()))
	assert.Equal(t, 2, queue.calls)
}

type fakeAnomalies struct {
	list []insights.Anomaly
}

func (f *fakeAnomalies) Anomalies(context.Context) ([]insights.Anomaly, error) {
	return f.list, nil
}

type alertRecorder struct {
	inputs []notifications.CreateInput
	err    error
}

func (a *alertRecorder) Create(_ context.Context, in notifications.CreateInput) (*notifications.Notification, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.inputs = append(a.inputs, in)
	return &notifications.Notification{}, nil
}

func TestAnomalyAlertsJobNotifiesOncePerDay(t *testing.T) {
	productID := int64(42)
	source := &fakeAnomalies{list: []insights.Anomaly{
		{Type: "revenue_drop", Severity: insights.SeverityCritical, Message: "Revenue down 60% vs daily average", SuggestedAction: "Check ads"},
		{Type: "low_inventory", Severity: insights.SeverityWarning, Message: "Low stock: Cloud Lamp", SuggestedAction: "Reorder", ProductID: &productID},
		{Type: "trending_product", Severity: insights.SeverityInfo, Message: "Galaxy Projector is trending"},
	}}
	recorder := &alertRecorder{}
	job, err := NewAnomalyAlertsJob(AnomalyAlertsJobParams{
		Logger:   testLogger(),
		Source:   source,
		Notifier: recorder,
		Seen:     kvstore.NewMemory(),
	})
	require.NoError(t, err)
	job.(*anomalyAlertsJob).now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	require.NoError(t, job.Run(ctx))
	require.Len(t, recorder.inputs, 2)
	assert.Equal(t, enums.NotificationTypeAlert, recorder.inputs[0].Type)
	assert.Equal(t, enums.NotificationPriorityUrgent, recorder.inputs[0].Priority)
	assert.Equal(t, "Revenue down 60% vs daily average", recorder.inputs[0].Title)
	assert.Equal(t, enums.NotificationPriorityHigh, recorder.inputs[1].Priority)
	assert.Equal(t, int64(42), recorder.inputs[1].Metadata["product_id"])

	require.NoError(t, job.Run(ctx))
	assert.Len(t, recorder.inputs, 2, "same-day anomalies must not alert twice")

	job.(*anomalyAlertsJob).now = func() time.Time { return time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, job.Run(ctx))
	assert.Len(t, recorder.inputs, 4)
}

func TestAnomalyAlertsJobReportsNotifyErrors(t *testing.T) {
	source := &fakeAnomalies{list: []insights.Anomaly{{Type: "orders_drop", Severity: insights.SeverityWarning}}}
	job, err := NewAnomalyAlertsJob(AnomalyAlertsJobParams{
		Logger:   testLogger(),
		Source:   source,
		Notifier: &alertRecorder{err: errors.New("kv unavailable")},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) RefreshSuggestions(context.Context) (*trends.RefreshResult, error) {
	f.calls++
	return &trends.RefreshResult{Fetched: 5, Created: 2, Skipped: 3}, nil
}

func TestTrendRefreshJob(t *testing.T) {
	refresher := &fakeRefresher{}
	job, err := NewTrendRefreshJob(TrendRefreshJobParams{Logger: testLogger(), Refresher: refresher})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, refresher.calls)

	var missing *trends.Refresher
	skipped, err := NewTrendRefreshJob(TrendRefreshJobParams{Logger: testLogger(), Refresher: missing})
	require.NoError(t, err)
	require.NoError(t, skipped.Run(context.Background()))
}
