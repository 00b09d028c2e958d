package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/provender-erp/provender/internal/jobs"
	"github.com/provender-erp/provender/internal/payments"
	"github.com/provender-erp/provender/internal/stock"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotWarmupJob recomputes the stock and settlement views and leaves the
// results warm in the Redis cache so dashboard requests hit fresh data.
type SnapshotWarmupJob struct {
	Stock    *stock.Service
	Payments *payments.Service
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewSnapshotWarmupJob wires dependencies for the warmup handler.
func NewSnapshotWarmupJob(stockSvc *stock.Service, paymentsSvc *payments.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotWarmupJob {
	return &SnapshotWarmupJob{
		Stock:    stockSvc,
		Payments: paymentsSvc,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes snapshot warmup tasks.
func (j *SnapshotWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("snapshot warmup: handler not configured")
	}
	var payload SnapshotWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSnapshotWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := j.now()
	logger.Info("starting snapshot warmup")

	for _, view := range j.views(payload) {
		// Bound each view recompute so a slow source cannot stall the queue.
		viewCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := j.warmView(viewCtx, view)
		cancel()
		if err != nil {
			resultErr = err
			logger.Error("warm view", slog.String("view", view), slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed snapshot warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *SnapshotWarmupJob) warmView(ctx context.Context, view string) error {
	switch view {
	case "stock":
		if j.Stock == nil {
			return nil
		}
		if err := j.Stock.Invalidate(ctx); err != nil {
			return err
		}
		overview, err := j.Stock.Overview(ctx)
		if err != nil {
			return err
		}
		j.countBreaches(overview)
		return nil
	case "payments":
		if j.Payments == nil {
			return nil
		}
		_, err := j.Payments.Settlements(ctx)
		return err
	default:
		return errors.New("snapshot warmup: unknown view " + view)
	}
}

func (j *SnapshotWarmupJob) countBreaches(overview stock.Overview) {
	reorder := 0
	safety := 0
	for _, row := range overview.Rows {
		if row.BelowReorder {
			reorder++
		}
		if row.BelowSafety {
			safety++
		}
	}
	j.metrics().AddBreaches("reorder", reorder)
	j.metrics().AddBreaches("safety", safety)
}

func (j *SnapshotWarmupJob) views(payload SnapshotWarmupPayload) []string {
	if len(payload.Views) == 0 {
		return []string{"stock", "payments"}
	}
	return payload.Views
}

func (j *SnapshotWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSnapshotWarmup))
	}
	return slog.Default().With(slog.String("job", TaskSnapshotWarmup))
}

func (j *SnapshotWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SnapshotWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
