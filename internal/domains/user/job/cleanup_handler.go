package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/domains/user/service"
	"homefinder-backend/pkg/logger"
)

// CleanupExpiredCredentialsHandler clears OTPs and temporary passwords past their expiry.
type CleanupExpiredCredentialsHandler struct {
	userService service.ServiceInterface
}

func NewCleanupExpiredCredentialsHandler(userService service.ServiceInterface) *CleanupExpiredCredentialsHandler {
	return &CleanupExpiredCredentialsHandler{userService: userService}
}

func (h *CleanupExpiredCredentialsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	start := time.Now()
	log.Info().Str("task", task.Type()).Msg("Starting cleanup of expired credentials")

	cleared, err := h.userService.CleanupExpiredCredentials(ctx)
	if err != nil {
		logger.Error("Cleanup of expired credentials failed", err)
		return err
	}

	log.Info().
		Int64("users_cleared", cleared).
		Dur("took", time.Since(start)).
		Msg("Cleaned up expired credentials")
	return nil
}
