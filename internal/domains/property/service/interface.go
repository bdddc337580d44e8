package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"

	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/shared/access"
)

// =====================================================
// PROPERTY SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	CreateProperty(ctx context.Context, ownerID uuid.UUID, req model.CreatePropertyRequest) (*model.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*model.Property, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, requester access.Requester, req model.UpdatePropertyRequest) (*model.Property, error)

	// DeleteProperty removes the listing and schedules deletion of its stored images.
	DeleteProperty(ctx context.Context, id uuid.UUID, requester access.Requester) error

	ListProperties(ctx context.Context, req model.ListPropertiesRequest) ([]*model.Property, int64, error)

	// ListWithAvailability annotates every listing with its active reservation windows.
	ListWithAvailability(ctx context.Context) ([]model.PropertyWithAvailability, error)

	ListMyProperties(ctx context.Context, ownerID uuid.UUID) ([]*model.Property, error)
	ExportMyProperties(ctx context.Context, ownerID uuid.UUID) (*excelize.File, error)

	// DeleteImages removes stored images. Used by the image cleanup job.
	DeleteImages(ctx context.Context, imageURLs []string) error
}

// ActiveWindowSource reports the reservations that still block each property at now.
type ActiveWindowSource interface {
	ActiveWindows(ctx context.Context, propertyIDs []uuid.UUID, now time.Time) (map[uuid.UUID][]model.BookingWindow, error)
}

// ImagePreparer validates and normalizes one uploaded image.
type ImagePreparer interface {
	Process(data []byte) ([]byte, string, error)
}

// Enqueuer is the part of *asynq.Client used to schedule image cleanup.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
