package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotWarmup recomputes ledger views and primes the Redis cache.
	TaskSnapshotWarmup = "snapshot:warmup"
)

// SnapshotWarmupPayload selects which views a warmup run recomputes.
// An empty Views slice means all views.
type SnapshotWarmupPayload struct {
	Views []string `json:"views,omitempty"`
}

// NewSnapshotWarmupTask constructs an Asynq task.
func NewSnapshotWarmupTask(payload SnapshotWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotWarmup, data), nil
}
