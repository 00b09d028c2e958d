package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/provender-erp/provender/internal/jobs"
	_ "github.com/provender-erp/provender/internal/testing/guard"
	"github.com/provender-erp/provender/jobs"
)

func TestSnapshotWarmupLifecycleRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := jobs.NewSnapshotWarmupJob(nil, nil, nil, metrics)

	task, err := jobs.NewSnapshotWarmupTask(jobs.SnapshotWarmupPayload{})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}

	badView, err := jobs.NewSnapshotWarmupTask(jobs.SnapshotWarmupPayload{Views: []string{"forecast"}})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), badView); err == nil {
		t.Fatal("expected unknown view to fail")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(t, families, "provender_jobs_total", "success"); got != 1 {
		t.Fatalf("expected 1 successful run, got %f", got)
	}
	if got := counterValue(t, families, "provender_jobs_total", "failure"); got != 1 {
		t.Fatalf("expected 1 failed run, got %f", got)
	}
}

func TestSnapshotWarmupSkipsRetryOnMalformedPayload(t *testing.T) {
	job := jobs.NewSnapshotWarmupJob(nil, nil, nil, nil)

	task := asynq.NewTask(jobs.TaskSnapshotWarmup, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name, status string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == status {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with status %s not found", name, status)
	return 0
}
