package cron

import (
	"context"
	"fmt"

	"github.com/foratask/foratask-billing/internal/billing"
	"github.com/foratask/foratask-billing/pkg/logger"
	"github.com/foratask/foratask-billing/pkg/metrics"
)

const defaultSweepBatchSize = 250

// sweeper is the slice of the billing service the expiry job needs.
type sweeper interface {
	ExpireDue(ctx context.Context, limit int) (billing.SweepResult, error)
}

// ExpiryJobParams configures the subscription expiry sweep.
type ExpiryJobParams struct {
	Logger    *logger.Logger
	Billing   sweeper
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

// NewExpiryJob builds the cron job that flips overdue trial and active
// subscriptions to expired. It backstops the lazy read-time check for
// organizations nobody is looking at.
func NewExpiryJob(params ExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Billing == nil {
		return nil, fmt.Errorf("billing service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatchSize
	}
	return &expiryJob{
		logg:    params.Logger,
		billing: params.Billing,
		metrics: params.Metrics,
		batch:   batch,
	}, nil
}

type expiryJob struct {
	logg    *logger.Logger
	billing sweeper
	metrics *metrics.CronJobMetrics
	batch   int
}

func (j *expiryJob) Name() string { return "subscription-expiry" }

func (j *expiryJob) Run(ctx context.Context) error {
	result, err := j.billing.ExpireDue(ctx, j.batch)

	if j.metrics != nil && result.Expired > 0 {
		j.metrics.AddExpired(j.Name(), result.Expired)
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": result.Scanned,
		"expired": result.Expired,
		"skipped": result.Skipped,
	})
	if err != nil {
		j.logg.Error(reportCtx, "expiry sweep finished with failures", err)
		return fmt.Errorf("expiry sweep: %w", err)
	}
	j.logg.Info(reportCtx, "expiry sweep complete")
	return nil
}
