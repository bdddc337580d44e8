package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes
const (
	ErrCodeBookingNotFound     = "BKG001"
	ErrCodeValidation          = "BKG002"
	ErrCodeOverlap             = "BKG003"
	ErrCodeForbidden           = "BKG004"
	ErrCodeSelfBooking         = "BKG005"
	ErrCodePropertyUnavailable = "BKG006"
	ErrCodeInvalidTransition   = "BKG007"
	ErrCodePropertyNotFound    = "BKG008"
)

// Errors
var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrOverlap             = errors.New("property is already booked for these dates")
	ErrForbidden           = errors.New("not authorized to access this booking")
	ErrPropertyUnavailable = errors.New("property is not available for booking")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
)

// BookingError custom error type
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewBookingNotFoundError(id uuid.UUID) *BookingError {
	return &BookingError{
		Code:    ErrCodeBookingNotFound,
		Message: fmt.Sprintf("No booking found with id of %s", id),
		Err:     ErrBookingNotFound,
	}
}

func NewPropertyNotFoundError(id uuid.UUID) *BookingError {
	return &BookingError{
		Code:    ErrCodePropertyNotFound,
		Message: fmt.Sprintf("No property found with id of %s", id),
	}
}

func NewValidationError(err error) *BookingError {
	return &BookingError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}

func NewValidationMessage(message string) *BookingError {
	return &BookingError{Code: ErrCodeValidation, Message: message}
}

func NewOverlapError() *BookingError {
	return &BookingError{
		Code:    ErrCodeOverlap,
		Message: "Property is already booked for these dates",
		Err:     ErrOverlap,
	}
}

func NewForbiddenError(userID uuid.UUID, action string) *BookingError {
	return &BookingError{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("User %s is not authorized to %s this booking", userID, action),
		Err:     ErrForbidden,
	}
}

func NewSelfBookingError() *BookingError {
	return &BookingError{
		Code:    ErrCodeSelfBooking,
		Message: "You cannot book your own property",
		Err:     ErrForbidden,
	}
}

func NewPropertyUnavailableError(status string) *BookingError {
	return &BookingError{
		Code:    ErrCodePropertyUnavailable,
		Message: fmt.Sprintf("Property is not available for booking (status: %s)", status),
		Err:     ErrPropertyUnavailable,
	}
}

func NewInvalidTransitionError(from, to string) *BookingError {
	return &BookingError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot change booking status from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewPropertyForbiddenError(userID uuid.UUID) *BookingError {
	return &BookingError{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("User %s is not authorized to view bookings for this property", userID),
		Err:     ErrForbidden,
	}
}
