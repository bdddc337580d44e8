package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"homefinder-backend/internal/shared"
)

// Enqueuer is the part of *asynq.Client the queue sender needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender hands messages to the worker. Send fails only when the task could not be
// enqueued.
type QueueSender struct {
	client Enqueuer
}

func NewQueueSender(client Enqueuer) *QueueSender {
	return &QueueSender{client: client}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	if _, ok := templates[msg.Template]; !ok {
		return fmt.Errorf("unknown email template %q", msg.Template)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeSendEmail, payload)
	if _, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueEmail),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
