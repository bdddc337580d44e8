package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/infrastructure/email"
)

// EmailHandler delivers queued email.Message tasks.
type EmailHandler struct {
	sender email.Sender
}

func NewEmailHandler(sender email.Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

func (h *EmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg email.Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal email payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("to", msg.To).
		Str("template", msg.Template).
		Msg("Processing email")

	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", msg.Template, err)
	}

	return nil
}
