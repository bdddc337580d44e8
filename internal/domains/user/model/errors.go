package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeEmailExists        = "USR002"
	ErrCodeInvalidCredentials = "USR003"
	ErrCodeNotVerified        = "USR004"
	ErrCodeAlreadyVerified    = "USR005"
	ErrCodeInvalidOTP         = "USR006"
	ErrCodeOTPExpired         = "USR007"
	ErrCodeInvalidEmail       = "USR008"
	ErrCodeIncorrectPassword  = "USR009"
	ErrCodeEmailDelivery      = "USR010"
	ErrCodeValidation         = "USR011"
)

// Errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrEmailDelivery      = errors.New("email delivery failed")
)

// UserError custom error type
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewUserNotFoundError(message string) *UserError {
	return &UserError{Code: ErrCodeUserNotFound, Message: message, Err: ErrUserNotFound}
}

func NewEmailExistsError() *UserError {
	return &UserError{Code: ErrCodeEmailExists, Message: "User already exists with this email", Err: ErrEmailAlreadyExists}
}

func NewInvalidCredentialsError() *UserError {
	return &UserError{Code: ErrCodeInvalidCredentials, Message: "Invalid credentials", Err: ErrInvalidCredentials}
}

func NewNotVerifiedError() *UserError {
	return &UserError{Code: ErrCodeNotVerified, Message: "Please verify your email before logging in", Err: ErrNotVerified}
}

func NewAlreadyVerifiedError() *UserError {
	return &UserError{Code: ErrCodeAlreadyVerified, Message: "Email is already verified", Err: ErrAlreadyVerified}
}

func NewInvalidOTPError() *UserError {
	return &UserError{Code: ErrCodeInvalidOTP, Message: "Invalid OTP", Err: ErrInvalidOTP}
}

func NewOTPExpiredError() *UserError {
	return &UserError{Code: ErrCodeOTPExpired, Message: "OTP has expired", Err: ErrOTPExpired}
}

func NewInvalidEmailError() *UserError {
	return &UserError{Code: ErrCodeInvalidEmail, Message: "Invalid email", Err: ErrUserNotFound}
}

func NewIncorrectPasswordError() *UserError {
	return &UserError{Code: ErrCodeIncorrectPassword, Message: "Password is incorrect", Err: ErrInvalidCredentials}
}

func NewEmailDeliveryError(message string, err error) *UserError {
	return &UserError{Code: ErrCodeEmailDelivery, Message: message, Err: fmt.Errorf("%w: %v", ErrEmailDelivery, err)}
}

func NewValidationError(err error) *UserError {
	return &UserError{Code: ErrCodeValidation, Message: err.Error(), Err: err}
}
