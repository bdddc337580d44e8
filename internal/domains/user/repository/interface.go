package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/user/model"
)

// =====================================================
// USER REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// Create inserts a user. Returns model.ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u *model.User) error

	// FindByID loads the full row including credential fields.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// FindByEmail is case-insensitive.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update writes every mutable column and invalidates the cached profile.
	Update(ctx context.Context, u *model.User) error

	// GetProfile is cache-aside over user:<id>.
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	// GetProfiles batches profile lookups; unknown ids are absent from the map.
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error)

	// ClearExpiredCredentials nulls OTP and temporary password fields whose expiry is before now.
	ClearExpiredCredentials(ctx context.Context, now time.Time) (int64, error)
}
