package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAvatar = "default.jpg"

// User maps 1:1 to the users table.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`

	PasswordHash string `json:"-"`

	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`

	// Email verification
	IsEmailVerified bool       `json:"isEmailVerified"`
	OTPHash         *string    `json:"-"`
	OTPExpiresAt    *time.Time `json:"-"`

	// Password recovery
	TempPasswordHash      *string    `json:"-"`
	TempPasswordExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasValidOTP reports whether an unexpired OTP is pending.
func (u *User) HasValidOTP(now time.Time) bool {
	return u.OTPHash != nil && u.OTPExpiresAt != nil && now.Before(*u.OTPExpiresAt)
}

// HasValidTempPassword reports whether an unexpired temporary password is pending.
func (u *User) HasValidTempPassword(now time.Time) bool {
	return u.TempPasswordHash != nil && u.TempPasswordExpiresAt != nil && now.Before(*u.TempPasswordExpiresAt)
}

func (u *User) SetOTP(hash string, expiresAt time.Time) {
	u.OTPHash = &hash
	u.OTPExpiresAt = &expiresAt
}

func (u *User) ClearOTP() {
	u.OTPHash = nil
	u.OTPExpiresAt = nil
}

func (u *User) SetTempPassword(hash string, expiresAt time.Time) {
	u.TempPasswordHash = &hash
	u.TempPasswordExpiresAt = &expiresAt
}

func (u *User) ClearTempPassword() {
	u.TempPasswordHash = nil
	u.TempPasswordExpiresAt = nil
}

// Profile is the public view of a user embedded in bookings, chats and listings.
// It is what the repository caches.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar"`
	Role   string    `json:"role"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Role:   u.Role,
	}
}
