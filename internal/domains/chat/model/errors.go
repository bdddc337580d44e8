package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeChatNotFound      = "CHT001"
	ErrCodeValidation        = "CHT002"
	ErrCodeForbidden         = "CHT003"
	ErrCodeRecipientNotFound = "CHT004"
	ErrCodePropertyNotFound  = "CHT005"
	ErrCodeMessageNotFound   = "CHT006"
)

// Errors
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrForbidden       = errors.New("not a participant of this chat")
)

// ChatError custom error type
type ChatError struct {
	Code    string
	Message string
	Err     error
}

func (e *ChatError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewChatNotFoundError(id string) *ChatError {
	return &ChatError{
		Code:    ErrCodeChatNotFound,
		Message: fmt.Sprintf("No chat found with id of %s", id),
		Err:     ErrChatNotFound,
	}
}

func NewMessageNotFoundError(id string) *ChatError {
	return &ChatError{
		Code:    ErrCodeMessageNotFound,
		Message: fmt.Sprintf("No message found with id of %s", id),
		Err:     ErrMessageNotFound,
	}
}

func NewValidationError(err error) *ChatError {
	return &ChatError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}

func NewValidationMessage(message string) *ChatError {
	return &ChatError{Code: ErrCodeValidation, Message: message}
}

func NewForbiddenError() *ChatError {
	return &ChatError{
		Code:    ErrCodeForbidden,
		Message: "Not authorized to access this chat",
		Err:     ErrForbidden,
	}
}

func NewRecipientNotFoundError() *ChatError {
	return &ChatError{Code: ErrCodeRecipientNotFound, Message: "Recipient not found"}
}

func NewPropertyNotFoundError() *ChatError {
	return &ChatError{Code: ErrCodePropertyNotFound, Message: "Property not found"}
}
