package classify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/salespulse/salespulse/jobs"
)

// Invalidator drops stale report caches after derived rows change.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// RecomputeJob processes derive recompute tasks.
type RecomputeJob struct {
	service     *Service
	invalidator Invalidator
	logger      *slog.Logger
}

// NewRecomputeJob constructs a job handler.
func NewRecomputeJob(service *Service, invalidator Invalidator, logger *slog.Logger) *RecomputeJob {
	return &RecomputeJob{service: service, invalidator: invalidator, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *RecomputeJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.DeriveRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	processed, err := j.service.RecomputeFrom(ctx, payload.AfterID)
	if err != nil {
		j.logger.Error("derive recompute", slog.Int("processed", processed), slog.Any("error", err))
		return err
	}
	j.logger.Info("derive recompute done", slog.Int("processed", processed))
	if j.invalidator != nil {
		if err := j.invalidator.Bump(ctx); err != nil {
			j.logger.Warn("report cache bump", slog.Any("error", err))
		}
	}
	return nil
}
