package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes
const (
	ErrCodePropertyNotFound = "PRP001"
	ErrCodeValidation       = "PRP002"
	ErrCodeForbidden        = "PRP003"
	ErrCodeInvalidImage     = "PRP004"
	ErrCodeImageUpload      = "PRP005"
	ErrCodeTooManyImages    = "PRP006"
)

// Errors
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrForbidden        = errors.New("not authorized to modify this property")
	ErrImageUpload      = errors.New("image upload failed")
)

// PropertyError custom error type
type PropertyError struct {
	Code    string
	Message string
	Err     error
}

func (e *PropertyError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewPropertyNotFoundError(id uuid.UUID) *PropertyError {
	return &PropertyError{
		Code:    ErrCodePropertyNotFound,
		Message: fmt.Sprintf("No property found with id of %s", id),
		Err:     ErrPropertyNotFound,
	}
}

func NewValidationError(err error) *PropertyError {
	return &PropertyError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}

func NewValidationMessage(message string) *PropertyError {
	return &PropertyError{Code: ErrCodeValidation, Message: message}
}

func NewForbiddenError(userID uuid.UUID, action string) *PropertyError {
	return &PropertyError{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("User %s is not authorized to %s this property", userID, action),
		Err:     ErrForbidden,
	}
}

func NewInvalidImageError(name string, err error) *PropertyError {
	return &PropertyError{
		Code:    ErrCodeInvalidImage,
		Message: fmt.Sprintf("%s: %v", name, err),
		Err:     err,
	}
}

func NewTooManyImagesError(max int) *PropertyError {
	return &PropertyError{
		Code:    ErrCodeTooManyImages,
		Message: fmt.Sprintf("A property can have at most %d images", max),
	}
}

func NewImageUploadError(err error) *PropertyError {
	return &PropertyError{
		Code:    ErrCodeImageUpload,
		Message: "Failed to upload property images",
		Err:     fmt.Errorf("%w: %v", ErrImageUpload, err),
	}
}
