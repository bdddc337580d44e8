package service

import (
	"context"

	"github.com/google/uuid"

	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/pkg/jwt"
)

// =====================================================
// USER SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// AUTHENTICATION
	// ========================================

	Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResponse, error)

	// VerifyEmailOTP re-issues an OTP when req.OTP is empty, otherwise verifies it and
	// signs the user in.
	VerifyEmailOTP(ctx context.Context, req model.VerifyOTPRequest) (*model.VerifyOTPResult, error)

	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)

	// Logout revokes the presented token until it would have expired.
	Logout(ctx context.Context, claims *jwt.Claims) error

	ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*model.ForgotPasswordResponse, error)

	// ========================================
	// PROFILE
	// ========================================

	GetMe(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	UpdateDetails(ctx context.Context, userID uuid.UUID, req model.UpdateDetailsRequest) (*model.UserResponse, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req model.UpdatePasswordRequest) (*model.AuthResponse, error)

	// ========================================
	// LOOKUPS AND MAINTENANCE
	// ========================================

	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error)
	CleanupExpiredCredentials(ctx context.Context) (int64, error)
}
