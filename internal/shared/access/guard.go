// Package access holds the pure authorization guards shared by the domains.
package access

import (
	"errors"

	"github.com/google/uuid"

	"homefinder-backend/internal/shared"
)

var (
	ErrForbidden   = errors.New("not authorized to modify this resource")
	ErrSelfBooking = errors.New("you cannot book your own property")
)

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnedBy() uuid.UUID
}

// Requester identifies the caller of an operation.
type Requester struct {
	UserID uuid.UUID
	Role   string
}

func (r Requester) IsAdmin() bool {
	return r.Role == shared.RoleAdmin
}

// RequireOwnership passes when the requester owns the resource or is an admin.
func RequireOwnership(resource Owned, r Requester) error {
	if r.IsAdmin() || resource.OwnedBy() == r.UserID {
		return nil
	}
	return ErrForbidden
}

// PreventSelfBooking fails when the requester owns the property being booked.
// Admins get no exemption.
func PreventSelfBooking(property Owned, r Requester) error {
	if property.OwnedBy() == r.UserID {
		return ErrSelfBooking
	}
	return nil
}

// RequireParticipant passes when the requester is one of the parties or an admin.
func RequireParticipant(r Requester, parties ...uuid.UUID) error {
	if r.IsAdmin() {
		return nil
	}
	for _, p := range parties {
		if p == r.UserID {
			return nil
		}
	}
	return ErrForbidden
}
