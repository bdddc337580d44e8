package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	propertyService "homefinder-backend/internal/domains/property/service"
	"homefinder-backend/internal/shared"
)

// DeleteImagesHandler removes the stored images of a deleted property.
type DeleteImagesHandler struct {
	propertyService propertyService.ServiceInterface
}

func NewDeleteImagesHandler(propertyService propertyService.ServiceInterface) *DeleteImagesHandler {
	return &DeleteImagesHandler{
		propertyService: propertyService,
	}
}

func (h *DeleteImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeletePropertyImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeletePropertyImages payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("property_id", payload.PropertyID).
		Int("images", len(payload.ImageURLs)).
		Msg("Deleting property images")

	if err := h.propertyService.DeleteImages(ctx, payload.ImageURLs); err != nil {
		log.Error().
			Err(err).
			Str("property_id", payload.PropertyID).
			Msg("Failed to delete property images")
		return fmt.Errorf("delete images: %w", err)
	}

	log.Info().
		Str("property_id", payload.PropertyID).
		Msg("Property images deleted successfully")

	return nil
}
