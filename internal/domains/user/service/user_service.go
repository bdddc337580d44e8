package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/domains/user/repository"
	"homefinder-backend/internal/infrastructure/email"
	"homefinder-backend/internal/shared"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"
)

type userService struct {
	repo        repository.Repository
	jwtManager  *jwt.Manager
	revocations cache.Cache
	mailer      email.Sender
	cfg         config.AuthConfig

	now     func() time.Time
	newCode func() (string, error)
}

func NewUserService(
	repo repository.Repository,
	jwtManager *jwt.Manager,
	revocations cache.Cache,
	mailer email.Sender,
	cfg config.AuthConfig,
) ServiceInterface {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		repo:        repo,
		jwtManager:  jwtManager,
		revocations: revocations,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
		newCode:     sixDigitCode,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Email must be unused
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, model.NewEmailExistsError()
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	// Step 3: Build the unverified user with a pending OTP
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	u := &model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         shared.RoleUser,
		Avatar:       model.DefaultAvatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.SetOTP(hashOTP(otp), now.Add(s.cfg.OTPTTL))

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, model.ErrEmailAlreadyExists) {
			return nil, model.NewEmailExistsError()
		}
		return nil, err
	}

	// Step 4: Email the OTP. Failure keeps the account but drops the unusable code.
	resp := &model.RegisterResponse{
		UserID:  u.ID,
		Message: "Registration successful. Please check your email for the verification OTP.",
	}
	if err := s.sendOTP(ctx, u, otp); err != nil {
		u.ClearOTP()
		if uerr := s.repo.Update(ctx, u); uerr != nil {
			log.Error().Err(uerr).Str("user_id", u.ID.String()).Msg("Failed to clear OTP after email failure")
		}
		resp.Message = "Registration successful but we could not send the verification email. Please try the resend OTP option."
		resp.EmailSendError = true
	}

	return resp, nil
}

func (s *userService) VerifyEmailOTP(ctx context.Context, req model.VerifyOTPRequest) (*model.VerifyOTPResult, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 1: Load the unverified account
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewInvalidEmailError()
		}
		return nil, err
	}
	if u.IsEmailVerified {
		return nil, model.NewAlreadyVerifiedError()
	}

	now := s.now()

	// Step 2: No code supplied, issue a fresh one
	if req.OTP == "" {
		otp, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate otp: %w", err)
		}
		u.SetOTP(hashOTP(otp), now.Add(s.cfg.OTPTTL))
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, err
		}
		if err := s.sendOTP(ctx, u, otp); err != nil {
			return nil, model.NewEmailDeliveryError("Failed to send OTP. Please try again.", err)
		}
		return &model.VerifyOTPResult{OTPSent: true, Message: "OTP sent to your email address"}, nil
	}

	// Step 3: Check the code
	if u.OTPHash == nil || u.OTPExpiresAt == nil || !now.Before(*u.OTPExpiresAt) {
		return nil, model.NewOTPExpiredError()
	}
	if subtle.ConstantTimeCompare([]byte(*u.OTPHash), []byte(hashOTP(req.OTP))) != 1 {
		return nil, model.NewInvalidOTPError()
	}

	// Step 4: Mark verified and issue a temporary first-login password
	tempPassword, tempHash, err := s.newTempPassword()
	if err != nil {
		return nil, err
	}
	u.IsEmailVerified = true
	u.ClearOTP()
	u.SetTempPassword(tempHash, now.Add(s.cfg.TempPasswordTTL))
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	auth, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	if err := s.sendTempPassword(ctx, u, tempPassword, email.TemplateTempPassword); err != nil {
		auth.EmailSendError = true
		auth.Message = "Email verified successfully. We could not send the temporary password email. Please use the forgot password feature if needed."
	}

	return &model.VerifyOTPResult{Message: "Email verified successfully", Auth: auth}, nil
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 1: Unknown email and wrong password look the same
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewInvalidCredentialsError()
		}
		return nil, err
	}

	// Step 2: An unexpired temporary password wins over the regular one
	usingTemp := u.HasValidTempPassword(s.now()) &&
		bcrypt.CompareHashAndPassword([]byte(*u.TempPasswordHash), []byte(req.Password)) == nil
	if !usingTemp && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !u.IsEmailVerified {
		return nil, model.NewNotVerifiedError()
	}

	// Step 3: Promote the temporary password to the account password
	if usingTemp {
		u.PasswordHash = *u.TempPasswordHash
		u.ClearTempPassword()
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, err
		}
	}

	return s.issueToken(u)
}

func (s *userService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresIn(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Set(ctx, jwt.RevocationKey(claims.ID), true, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *userService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*model.ForgotPasswordResponse, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewUserNotFoundError("There is no user with that email")
		}
		return nil, err
	}

	tempPassword, tempHash, err := s.newTempPassword()
	if err != nil {
		return nil, err
	}
	u.SetTempPassword(tempHash, s.now().Add(s.cfg.TempPasswordTTL))
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if err := s.sendTempPassword(ctx, u, tempPassword, email.TemplatePasswordReset); err != nil {
		u.ClearTempPassword()
		if uerr := s.repo.Update(ctx, u); uerr != nil {
			log.Error().Err(uerr).Str("user_id", u.ID.String()).Msg("Failed to clear temporary password after email failure")
		}
		return &model.ForgotPasswordResponse{
			Message:        "We could not send the temporary password email. Please use the resend option or contact support.",
			EmailSendError: true,
		}, nil
	}

	return &model.ForgotPasswordResponse{Message: "Temporary password sent to your email"}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewUserNotFoundError("User not found")
		}
		return nil, err
	}
	return u.ToResponse(), nil
}

func (s *userService) UpdateDetails(ctx context.Context, userID uuid.UUID, req model.UpdateDetailsRequest) (*model.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewUserNotFoundError("User not found")
		}
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Email != nil {
		newEmail := model.NormalizeEmail(*req.Email)
		if newEmail != u.Email {
			if other, err := s.repo.FindByEmail(ctx, newEmail); err == nil && other.ID != u.ID {
				return nil, model.NewEmailExistsError()
			} else if err != nil && !errors.Is(err, model.ErrUserNotFound) {
				return nil, err
			}
			u.Email = newEmail
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, model.ErrEmailAlreadyExists) {
			return nil, model.NewEmailExistsError()
		}
		return nil, err
	}
	return u.ToResponse(), nil
}

func (s *userService) UpdatePassword(ctx context.Context, userID uuid.UUID, req model.UpdatePasswordRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewUserNotFoundError("User not found")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return nil, model.NewIncorrectPasswordError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.ClearTempPassword()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.issueToken(u)
}

// ========================================
// LOOKUPS AND MAINTENANCE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *userService) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	return s.repo.GetProfiles(ctx, ids)
}

func (s *userService) CleanupExpiredCredentials(ctx context.Context) (int64, error) {
	return s.repo.ClearExpiredCredentials(ctx, s.now())
}

// ========================================
// HELPERS
// ========================================

func (s *userService) issueToken(u *model.User) (*model.AuthResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: s.now().Add(s.jwtManager.Expiry()),
		User:      u.ToResponse(),
	}, nil
}

func (s *userService) newTempPassword() (plain, hash string, err error) {
	plain, err = s.newCode()
	if err != nil {
		return "", "", fmt.Errorf("generate temporary password: %w", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.cfg.BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("hash temporary password: %w", err)
	}
	return plain, string(h), nil
}

func (s *userService) sendOTP(ctx context.Context, u *model.User, otp string) error {
	return s.send(ctx, email.Message{
		To:       u.Email,
		Template: email.TemplateOTPVerification,
		Data: map[string]string{
			"name":      u.Name,
			"otp":       otp,
			"expiresIn": humanize(s.cfg.OTPTTL),
		},
	})
}

func (s *userService) sendTempPassword(ctx context.Context, u *model.User, tempPassword, template string) error {
	return s.send(ctx, email.Message{
		To:       u.Email,
		Template: template,
		Data: map[string]string{
			"name":         u.Name,
			"tempPassword": tempPassword,
			"expiresIn":    humanize(s.cfg.TempPasswordTTL),
		},
	})
}

func (s *userService) send(ctx context.Context, msg email.Message) error {
	if s.mailer == nil {
		return errors.New("email sender not configured")
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Warn().Err(err).Str("to", msg.To).Str("template", msg.Template).Msg("Email delivery failed")
		return err
	}
	return nil
}

func hashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

// sixDigitCode returns a uniformly random code in [100000, 999999].
func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func humanize(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}
