package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	propertyModel "homefinder-backend/internal/domains/property/model"
)

// ========================================
// AVAILABILITY
// ========================================

type AvailabilityResult struct {
	IsAvailable         bool      `json:"isAvailable"`
	PropertyID          uuid.UUID `json:"propertyId"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	OverlappingBookings int       `json:"overlappingBookings"`
}

// DateRange is a raw [startDate, endDate) pair from a request.
type DateRange struct {
	StartDate string `json:"startDate" form:"startDate"`
	EndDate   string `json:"endDate" form:"endDate"`
}

// Parse validates presence, format and ordering.
func (r DateRange) Parse() (time.Time, time.Time, error) {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.StartDate, validation.Required.Error("Please provide both start and end dates")),
		validation.Field(&r.EndDate, validation.Required.Error("Please provide both start and end dates")),
	)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := propertyModel.ParseDate(strings.TrimSpace(r.StartDate))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := propertyModel.ParseDate(strings.TrimSpace(r.EndDate))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ========================================
// CREATE
// ========================================

type CreateBookingRequest struct {
	DateRange
	TotalPrice *decimal.Decimal  `json:"totalPrice"`
	Notes      map[string]string `json:"notes"`
}

type CreateDemoBookingRequest struct {
	MoveInDate      string            `json:"moveInDate"`
	LeaseDuration   int               `json:"leaseDuration"`
	MonthlyRent     *decimal.Decimal  `json:"monthlyRent"`
	SecurityDeposit *decimal.Decimal  `json:"securityDeposit"`
	PlatformFee     *decimal.Decimal  `json:"platformFee"`
	Notes           map[string]string `json:"notes"`
}

func (r CreateDemoBookingRequest) Validate(maxMonths int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MoveInDate, validation.Required.Error("Move-in date is required")),
		validation.Field(&r.LeaseDuration,
			validation.Required.Error("Lease duration is required"),
			validation.Min(1).Error("Lease duration must be a positive number"),
			validation.Max(maxMonths).Error("Lease duration is too long"),
		),
	)
}

// BookingResult is a created booking plus the outcome of the notification emails.
type BookingResult struct {
	Booking        *Booking
	Message        string
	EmailSendError bool
}

// ========================================
// UPDATE
// ========================================

type UpdateBookingRequest struct {
	Status    *string           `json:"status"`
	StartDate *string           `json:"startDate"`
	EndDate   *string           `json:"endDate"`
	Notes     map[string]string `json:"notes"`
}

func (r UpdateBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(Statuses...).Error("invalid status")),
		validation.Field(&r.StartDate, validation.NilOrNotEmpty),
		validation.Field(&r.EndDate, validation.NilOrNotEmpty),
	)
}

// ChangesDates reports whether the request moves the booking.
func (r UpdateBookingRequest) ChangesDates() bool {
	return r.StartDate != nil || r.EndDate != nil
}
