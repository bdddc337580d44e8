package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/booking/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	"homefinder-backend/pkg/database"
)

// =====================================================
// BOOKING REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// Create inserts a booking. When propertyStatus is not empty the property status is
	// updated in the same transaction. Returns model.ErrOverlap when the database rejects
	// an overlapping active range.
	Create(ctx context.Context, b *model.Booking, propertyStatus string) error

	// FindByID joins property, tenant and owner summaries.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)

	// Update writes dates, price, status and notes. propertyStatus and errors behave as
	// in Create.
	Update(ctx context.Context, b *model.Booking, propertyStatus string) error

	// Delete hard-deletes the booking; propertyStatus behaves as in Create.
	Delete(ctx context.Context, b *model.Booking, propertyStatus string) error

	// CountOverlapping counts active bookings on the property intersecting [start, end),
	// ignoring excludeID when it is not nil.
	CountOverlapping(ctx context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error)

	ListAll(ctx context.Context, limit, offset int) ([]*model.Booking, int64, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*model.Booking, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Booking, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*model.Booking, error)

	// ActiveWindows groups active bookings ending after now by property.
	ActiveWindows(ctx context.Context, propertyIDs []uuid.UUID, now time.Time) (map[uuid.UUID][]propertyModel.BookingWindow, error)
}

// PropertyStatusWriter updates a property's status through the given querier.
type PropertyStatusWriter interface {
	SetStatus(ctx context.Context, q database.Querier, id uuid.UUID, status string) error
}
