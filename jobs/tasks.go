package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDeriveRecompute reclassifies raw invoice lines into derived rows.
	TaskDeriveRecompute = "derive:recompute"
)

// DeriveRecomputePayload configures a derive recompute run. AfterID resumes
// processing past a raw id; zero walks the whole table.
type DeriveRecomputePayload struct {
	AfterID int64 `json:"after_id"`
}

// NewDeriveRecomputeTask constructs an Asynq task.
func NewDeriveRecomputeTask(payload DeriveRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeriveRecompute, data), nil
}
