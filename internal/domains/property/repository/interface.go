package repository

import (
	"context"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/pkg/database"
)

// =====================================================
// PROPERTY REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	Create(ctx context.Context, p *model.Property) error

	// FindByID joins the owner summary. Cache-aside over property:<id>.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error)

	Update(ctx context.Context, p *model.Property) error

	// Delete removes the row; bookings cascade in the database.
	Delete(ctx context.Context, id uuid.UUID) error

	// List applies the filter and returns one page plus the total match count.
	List(ctx context.Context, req model.ListPropertiesRequest) ([]*model.Property, int64, error)

	// ListAll returns every listing newest first.
	ListAll(ctx context.Context) ([]*model.Property, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Property, error)

	// SetStatus updates only the status column through q so callers can run it inside
	// their own transaction.
	SetStatus(ctx context.Context, q database.Querier, id uuid.UUID, status string) error
}
