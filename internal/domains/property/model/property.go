package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property types
const (
	TypeApartment = "apartment"
	TypeHouse     = "house"
	TypeVilla     = "villa"
	TypeStudio    = "studio"
	TypeCondo     = "condo"
	TypeTownhouse = "townhouse"
)

// Furnishing levels
const (
	FurnishingFull = "furnished"
	FurnishingSemi = "semi-furnished"
	FurnishingNone = "unfurnished"
)

// Listing status
const (
	StatusAvailable   = "available"
	StatusRented      = "rented"
	StatusUnavailable = "unavailable"
)

var (
	PropertyTypes = []interface{}{TypeApartment, TypeHouse, TypeVilla, TypeStudio, TypeCondo, TypeTownhouse}
	Furnishings   = []interface{}{FurnishingFull, FurnishingSemi, FurnishingNone}
	Statuses      = []interface{}{StatusAvailable, StatusRented, StatusUnavailable}
)

// Property - Domain Entity (properties table)
type Property struct {
	ID      uuid.UUID     `json:"id"`
	OwnerID uuid.UUID     `json:"ownerId"`
	Owner   *OwnerSummary `json:"owner,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Pricing
	Price   decimal.Decimal `json:"price"`
	Deposit decimal.Decimal `json:"deposit"`

	// Location
	Location string `json:"location"`
	City     string `json:"city"`

	// Specs
	PropertyType string          `json:"propertyType"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Area         decimal.Decimal `json:"area"`
	Furnishing   string          `json:"furnishing"`
	Amenities    []string        `json:"amenities"`
	Images       []string        `json:"images"`

	Status        string    `json:"status"`
	AvailableFrom time.Time `json:"availableFrom"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerSummary is the joined owner row returned with a listing.
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (p *Property) OwnedBy() uuid.UUID {
	return p.OwnerID
}

func (p *Property) IsAvailable() bool {
	return p.Status == StatusAvailable
}

// BookingWindow is an active reservation range [StartDate, EndDate).
type BookingWindow struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// PropertyWithAvailability is a listing annotated with its active reservations.
type PropertyWithAvailability struct {
	*Property
	IsBooked       bool            `json:"isBooked"`
	ActiveBookings []BookingWindow `json:"activeBookings"`
}
