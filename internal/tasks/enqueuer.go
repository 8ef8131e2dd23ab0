package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// enrichMaxRetry keeps background enrichment to one retry after the first attempt.
const enrichMaxRetry = 1

// TaskEnqueuer is the subset of *asynq.Client used to queue work.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer schedules delayed enrichment tasks.
type Enqueuer struct {
	client TaskEnqueuer
	delay  time.Duration
	logger *slog.Logger
}

// NewEnqueuer wires an Enqueuer. Tasks run after delay.
func NewEnqueuer(client TaskEnqueuer, delay time.Duration, logger *slog.Logger) *Enqueuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enqueuer{client: client, delay: delay, logger: logger}
}

// ScheduleContactEnrichment queues the contact for enrichment without waiting for it.
func (e *Enqueuer) ScheduleContactEnrichment(ctx context.Context, contactID uuid.UUID) error {
	task, err := NewContactEnrichTask(contactID, correlationID(ctx))
	if err != nil {
		return fmt.Errorf("build enrichment task: %w", err)
	}

	opts := []asynq.Option{asynq.MaxRetry(enrichMaxRetry)}
	if e.delay > 0 {
		opts = append(opts, asynq.ProcessIn(e.delay))
	}
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue enrichment task: %w", err)
	}
	e.logger.Info("contact enrichment scheduled",
		slog.String("contact_id", contactID.String()),
		slog.String("task_id", info.ID),
		slog.Duration("delay", e.delay))
	return nil
}
