package service

import (
	"context"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/booking/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	userModel "homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/shared/access"
	"homefinder-backend/internal/shared/utils"
)

// =====================================================
// BOOKING SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// AVAILABILITY
	// ========================================

	// CheckAvailability is a read-only predicate over active bookings.
	CheckAvailability(ctx context.Context, propertyID uuid.UUID, dates model.DateRange) (*model.AvailabilityResult, error)

	// ========================================
	// BOOKING LIFECYCLE
	// ========================================

	CreateBooking(ctx context.Context, propertyID uuid.UUID, requester access.Requester, req model.CreateBookingRequest) (*model.BookingResult, error)

	// CreateDemoBooking confirms a lease immediately without payment.
	CreateDemoBooking(ctx context.Context, propertyID uuid.UUID, requester access.Requester, req model.CreateDemoBookingRequest) (*model.BookingResult, error)

	GetBooking(ctx context.Context, id uuid.UUID, requester access.Requester) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, requester access.Requester, req model.UpdateBookingRequest) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID, requester access.Requester) error

	// ========================================
	// LISTING
	// ========================================

	ListAll(ctx context.Context, page utils.Pagination) ([]*model.Booking, int64, error)
	ListPropertyBookings(ctx context.Context, propertyID uuid.UUID, requester access.Requester) ([]*model.Booking, error)
	ListMyBookings(ctx context.Context, tenantID uuid.UUID) ([]*model.Booking, error)
	ListMyPropertyBookings(ctx context.Context, ownerID uuid.UUID) ([]*model.Booking, error)
}

// PropertyReader loads listings. Satisfied by the property service.
type PropertyReader interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*propertyModel.Property, error)
}

// UserLookup resolves contact details for notification emails.
type UserLookup interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*userModel.Profile, error)
}

// AttemptRecorder counts booking attempts by kind and outcome.
type AttemptRecorder interface {
	BookingAttempt(kind, outcome string)
}
