package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/urgency-engine/internal/fulfillment"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

type queueProcessor interface {
	ProcessQueue(ctx context.Context) ([]fulfillment.AutoOrderResult, error)
}

// FulfillmentQueueJobParams configure the auto-fulfillment sweep.
type FulfillmentQueueJobParams struct {
	Logger    *logger.Logger
	Processor queueProcessor
	Enabled   bool
}

// NewFulfillmentQueueJob builds the job that auto-orders the pending queue.
func NewFulfillmentQueueJob(params FulfillmentQueueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("fulfillment processor required")
	}
	return &fulfillmentQueueJob{
		logg:      params.Logger,
		processor: params.Processor,
		enabled:   params.Enabled,
	}, nil
}

type fulfillmentQueueJob struct {
	logg      *logger.Logger
	processor queueProcessor
	enabled   bool
}

func (j *fulfillmentQueueJob) Name() string { return "fulfillment_queue" }

func (j *fulfillmentQueueJob) Run(ctx context.Context) error {
	if !j.enabled {
		j.logg.Info(ctx, "auto-fulfill disabled; skipping queue")
		return nil
	}
	results, err := j.processor.ProcessQueue(ctx)
	if err != nil {
		return fmt.Errorf("process fulfillment queue: %w", err)
	}
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
	j.logg.Info(logCtx, "fulfillment queue processed")
	return nil
}
