package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking status
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

var Statuses = []interface{}{StatusPending, StatusConfirmed, StatusCancelled}

// Booking - Domain Entity (bookings table)
type Booking struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"propertyId"`
	TenantID   uuid.UUID `json:"tenantId"`
	OwnerID    uuid.UUID `json:"ownerId"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	TotalPrice decimal.Decimal `json:"totalPrice"`

	// Lease breakdown, set on the demo path
	LeaseDuration   *int             `json:"leaseDuration,omitempty"`
	MonthlyRent     *decimal.Decimal `json:"monthlyRent,omitempty"`
	TotalRent       *decimal.Decimal `json:"totalRent,omitempty"`
	SecurityDeposit *decimal.Decimal `json:"securityDeposit,omitempty"`
	PlatformFee     *decimal.Decimal `json:"platformFee,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`

	Notes  map[string]string `json:"notes"`
	Status string            `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Joined data
	Property *PropertySummary `json:"property,omitempty"`
	Tenant   *Party           `json:"tenant,omitempty"`
	Owner    *Party           `json:"owner,omitempty"`
}

type PropertySummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Images   []string  `json:"images"`
}

type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// IsActive reports whether the booking still blocks its date range.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsDemo reports whether the booking was created on the demo path. The lease breakdown
// is only ever set by the server, unlike notes.
func (b *Booking) IsDemo() bool {
	return b.LeaseDuration != nil
}

// Overlaps reports whether the booking's range intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return RangesOverlap(b.StartDate, b.EndDate, start, end)
}

// RangesOverlap is the half-open interval test: [s1,e1) and [s2,e2) intersect iff
// s1 < e2 and e1 > s2. Touching ranges do not overlap.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// Participants returns the tenant and owner ids.
func (b *Booking) Participants() []uuid.UUID {
	return []uuid.UUID{b.TenantID, b.OwnerID}
}
