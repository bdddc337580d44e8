package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImageUpload is one raw file taken from a multipart request.
type ImageUpload struct {
	Name string
	Data []byte
}

// ========================================
// CREATE / UPDATE
// ========================================

type CreatePropertyRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Deposit       decimal.Decimal `json:"deposit"`
	Location      string          `json:"location"`
	City          string          `json:"city"`
	PropertyType  string          `json:"propertyType"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Area          decimal.Decimal `json:"area"`
	Furnishing    string          `json:"furnishing"`
	Amenities     []string        `json:"amenities"`
	AvailableFrom *time.Time      `json:"availableFrom"`

	Images []ImageUpload `json:"-"`
}

func (r CreatePropertyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Please add a title"),
			validation.RuneLength(1, 100).Error("Title can not be more than 100 characters"),
		),
		validation.Field(&r.Description,
			validation.Required.Error("Please add a description"),
			validation.RuneLength(1, 1000).Error("Description can not be more than 1000 characters"),
		),
		validation.Field(&r.Price, validation.By(positive("Please add a price"))),
		validation.Field(&r.Deposit, validation.By(nonNegative("Deposit cannot be negative"))),
		validation.Field(&r.Location, validation.Required.Error("Please add a location")),
		validation.Field(&r.City, validation.Required.Error("Please add a city")),
		validation.Field(&r.PropertyType,
			validation.Required.Error("Please specify property type"),
			validation.In(PropertyTypes...).Error("invalid property type"),
		),
		validation.Field(&r.Bedrooms, validation.Min(0).Error("Bedrooms cannot be negative")),
		validation.Field(&r.Bathrooms, validation.Min(0).Error("Bathrooms cannot be negative")),
		validation.Field(&r.Area, validation.By(positive("Please specify the area"))),
		validation.Field(&r.Furnishing,
			validation.Required.Error("Please specify furnishing status"),
			validation.In(Furnishings...).Error("invalid furnishing status"),
		),
		validation.Field(&r.Amenities, validation.Required.Error("Please add at least one amenity")),
		validation.Field(&r.Images, validation.Required.Error("Please upload at least one image")),
	)
}

// UpdatePropertyRequest is a partial update. ExistingImages, when set, is the ordered list
// of current images to keep; RemoveImages drops specific URLs; NewImages are appended.
type UpdatePropertyRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Deposit       *decimal.Decimal `json:"deposit"`
	Location      *string          `json:"location"`
	City          *string          `json:"city"`
	PropertyType  *string          `json:"propertyType"`
	Bedrooms      *int             `json:"bedrooms"`
	Bathrooms     *int             `json:"bathrooms"`
	Area          *decimal.Decimal `json:"area"`
	Furnishing    *string          `json:"furnishing"`
	Amenities     []string         `json:"amenities"`
	Status        *string          `json:"status"`
	AvailableFrom *time.Time       `json:"availableFrom"`

	ExistingImages []string `json:"existingImages"`
	RemoveImages   []string `json:"removeImages"`

	NewImages []ImageUpload `json:"-"`
}

func (r UpdatePropertyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 100).Error("Title can not be more than 100 characters")),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.RuneLength(1, 1000).Error("Description can not be more than 1000 characters")),
		validation.Field(&r.Price, validation.When(r.Price != nil, validation.By(positive("Price must be greater than 0")))),
		validation.Field(&r.Deposit, validation.When(r.Deposit != nil, validation.By(nonNegative("Deposit cannot be negative")))),
		validation.Field(&r.Location, validation.NilOrNotEmpty),
		validation.Field(&r.City, validation.NilOrNotEmpty),
		validation.Field(&r.PropertyType, validation.NilOrNotEmpty, validation.In(PropertyTypes...).Error("invalid property type")),
		validation.Field(&r.Bedrooms, validation.Min(0).Error("Bedrooms cannot be negative")),
		validation.Field(&r.Bathrooms, validation.Min(0).Error("Bathrooms cannot be negative")),
		validation.Field(&r.Area, validation.When(r.Area != nil, validation.By(positive("Area must be greater than 0")))),
		validation.Field(&r.Furnishing, validation.NilOrNotEmpty, validation.In(Furnishings...).Error("invalid furnishing status")),
		validation.Field(&r.Amenities, validation.When(r.Amenities != nil, validation.Required.Error("Please add at least one amenity"))),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(Statuses...).Error("invalid status")),
	)
}

// Apply copies the set fields onto p. Images are handled by the service.
func (r UpdatePropertyRequest) Apply(p *Property) {
	if r.Title != nil {
		p.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Deposit != nil {
		p.Deposit = *r.Deposit
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.City != nil {
		p.City = *r.City
	}
	if r.PropertyType != nil {
		p.PropertyType = *r.PropertyType
	}
	if r.Bedrooms != nil {
		p.Bedrooms = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		p.Bathrooms = *r.Bathrooms
	}
	if r.Area != nil {
		p.Area = *r.Area
	}
	if r.Furnishing != nil {
		p.Furnishing = *r.Furnishing
	}
	if r.Amenities != nil {
		p.Amenities = r.Amenities
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.AvailableFrom != nil {
		p.AvailableFrom = *r.AvailableFrom
	}
}

// ========================================
// LISTING
// ========================================

type ListPropertiesRequest struct {
	OwnerID      *uuid.UUID
	City         string
	PropertyType string
	Status       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Bedrooms     *int
	Page         int
	Limit        int
}

func (r ListPropertiesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PropertyType, validation.In(PropertyTypes...).Error("invalid property type")),
		validation.Field(&r.Status, validation.In(Statuses...).Error("invalid status")),
		validation.Field(&r.Bedrooms, validation.Min(0)),
		validation.Field(&r.MaxPrice, validation.By(func(interface{}) error {
			if r.MinPrice != nil && r.MaxPrice != nil && r.MaxPrice.LessThan(*r.MinPrice) {
				return errors.New("maxPrice must not be less than minPrice")
			}
			return nil
		})),
	)
}

// ========================================
// MULTIPART FORM
// ========================================

// PropertyForm is the multipart text part of a create/update request. Numbers arrive as
// strings and amenities may be repeated or comma separated.
type PropertyForm struct {
	Title          *string  `form:"title"`
	Description    *string  `form:"description"`
	Price          *string  `form:"price"`
	Deposit        *string  `form:"deposit"`
	Location       *string  `form:"location"`
	City           *string  `form:"city"`
	PropertyType   *string  `form:"propertyType"`
	Bedrooms       *string  `form:"bedrooms"`
	Bathrooms      *string  `form:"bathrooms"`
	Area           *string  `form:"area"`
	Furnishing     *string  `form:"furnishing"`
	Amenities      []string `form:"amenities"`
	Status         *string  `form:"status"`
	AvailableFrom  *string  `form:"availableFrom"`
	ExistingImages []string `form:"existingImages"`
	RemoveImages   []string `form:"removeImages"`
}

func (f PropertyForm) ToCreateRequest() (CreatePropertyRequest, error) {
	u, err := f.ToUpdateRequest()
	if err != nil {
		return CreatePropertyRequest{}, err
	}

	req := CreatePropertyRequest{
		Title:         deref(u.Title),
		Description:   deref(u.Description),
		Location:      deref(u.Location),
		City:          deref(u.City),
		PropertyType:  deref(u.PropertyType),
		Furnishing:    deref(u.Furnishing),
		Amenities:     u.Amenities,
		AvailableFrom: u.AvailableFrom,
	}
	if u.Price != nil {
		req.Price = *u.Price
	}
	if u.Deposit != nil {
		req.Deposit = *u.Deposit
	}
	if u.Area != nil {
		req.Area = *u.Area
	}
	if u.Bedrooms != nil {
		req.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		req.Bathrooms = *u.Bathrooms
	}
	return req, nil
}

func (f PropertyForm) ToUpdateRequest() (UpdatePropertyRequest, error) {
	req := UpdatePropertyRequest{
		Title:          f.Title,
		Description:    f.Description,
		Location:       f.Location,
		City:           f.City,
		PropertyType:   f.PropertyType,
		Furnishing:     f.Furnishing,
		Status:         f.Status,
		ExistingImages: SplitList(f.ExistingImages),
		RemoveImages:   SplitList(f.RemoveImages),
	}
	if f.Amenities != nil {
		req.Amenities = SplitList(f.Amenities)
	}

	var err error
	if req.Price, err = parseDecimal("price", f.Price); err != nil {
		return req, err
	}
	if req.Deposit, err = parseDecimal("deposit", f.Deposit); err != nil {
		return req, err
	}
	if req.Area, err = parseDecimal("area", f.Area); err != nil {
		return req, err
	}
	if req.Bedrooms, err = parseInt("bedrooms", f.Bedrooms); err != nil {
		return req, err
	}
	if req.Bathrooms, err = parseInt("bathrooms", f.Bathrooms); err != nil {
		return req, err
	}
	if f.AvailableFrom != nil && *f.AvailableFrom != "" {
		t, err := ParseDate(*f.AvailableFrom)
		if err != nil {
			return req, fmt.Errorf("availableFrom: %w", err)
		}
		req.AvailableFrom = &t
	}
	return req, nil
}

// SplitList flattens repeated and comma separated values, trimming blanks.
func SplitList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("invalid date format")
	}
	return t, nil
}

// ========================================
// HELPERS
// ========================================

func positive(message string) validation.RuleFunc {
	return func(value interface{}) error {
		d, ok := asDecimal(value)
		if !ok || !d.IsPositive() {
			return errors.New(message)
		}
		return nil
	}
}

func nonNegative(message string) validation.RuleFunc {
	return func(value interface{}) error {
		d, ok := asDecimal(value)
		if ok && d.IsNegative() {
			return errors.New(message)
		}
		return nil
	}
}

func asDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	}
	return decimal.Zero, false
}

func parseDecimal(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%s: must be a number", field)
	}
	return &d, nil
}

func parseInt(field string, raw *string) (*int, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%s: must be an integer", field)
	}
	return &n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
