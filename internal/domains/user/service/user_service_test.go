package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/infrastructure/email"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"
)

// =====================================================
// FAKES
// =====================================================

type fakeRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *fakeRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *fakeRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}

func (r *fakeRepo) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	out := map[uuid.UUID]*model.Profile{}
	for _, id := range ids {
		if p, err := r.GetProfile(ctx, id); err == nil {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakeRepo) ClearExpiredCredentials(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		touched := false
		if u.OTPExpiresAt != nil && u.OTPExpiresAt.Before(now) {
			u.ClearOTP()
			touched = true
		}
		if u.TempPasswordExpiresAt != nil && u.TempPasswordExpiresAt.Before(now) {
			u.ClearTempPassword()
			touched = true
		}
		if touched {
			n++
		}
	}
	return n, nil
}

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() email.Message {
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	svc    *userService
	repo   *fakeRepo
	mailer *fakeMailer
	cache  *cache.MemoryCache
	clock  time.Time
	codes  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newFakeRepo(),
		mailer: &fakeMailer{},
		cache:  cache.NewMemoryCache(),
		clock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		codes:  []string{"111111", "222222", "333333", "444444"},
	}
	svc := NewUserService(f.repo, jwt.NewManager("test-secret", time.Hour), f.cache, f.mailer, config.AuthConfig{
		OTPTTL:          10 * time.Minute,
		TempPasswordTTL: 10 * time.Minute,
		BcryptCost:      bcrypt.MinCost,
	}).(*userService)
	svc.now = func() time.Time { return f.clock }
	svc.newCode = func() (string, error) {
		code := f.codes[0]
		f.codes = f.codes[1:]
		return code, nil
	}
	f.svc = svc
	return f
}

func (f *fixture) register(t *testing.T, emailAddr string) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), model.RegisterRequest{
		Name: "Test User", Email: emailAddr, Password: "secret123",
	})
	require.NoError(t, err)
	return resp.UserID
}

func codeOf(err error) string {
	var ue *model.UserError
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ""
}

// =====================================================
// TESTS
// =====================================================

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, model.RegisterRequest{Name: "Owner", Email: " Owner@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.False(t, resp.EmailSendError)

	stored, err := f.repo.FindByID(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", stored.Email)
	assert.False(t, stored.IsEmailVerified)
	assert.Equal(t, model.DefaultAvatar, stored.Avatar)
	assert.Equal(t, hashOTP("111111"), *stored.OTPHash)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, email.TemplateOTPVerification, f.mailer.last().Template)
	assert.Equal(t, "111111", f.mailer.last().Data["otp"])

	_, err = f.svc.Register(ctx, model.RegisterRequest{Name: "Dup", Email: "OWNER@example.com", Password: "secret123"})
	assert.Equal(t, model.ErrCodeEmailExists, codeOf(err))

	_, err = f.svc.Register(ctx, model.RegisterRequest{Name: "X", Email: "bad", Password: "123"})
	assert.Equal(t, model.ErrCodeValidation, codeOf(err))
}

func TestRegister_EmailFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	resp, err := f.svc.Register(context.Background(), model.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, resp.EmailSendError)

	stored, _ := f.repo.FindByID(context.Background(), resp.UserID)
	assert.Nil(t, stored.OTPHash)
}

func TestVerifyEmailOTP_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "tenant@example.com")

	// login before verification fails
	_, err := f.svc.Login(ctx, model.LoginRequest{Email: "tenant@example.com", Password: "secret123"})
	assert.Equal(t, model.ErrCodeNotVerified, codeOf(err))

	// wrong code
	_, err = f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "tenant@example.com", OTP: "999999"})
	assert.Equal(t, model.ErrCodeInvalidOTP, codeOf(err))

	// correct code signs in and mails a temp password
	res, err := f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "tenant@example.com", OTP: "111111"})
	require.NoError(t, err)
	require.NotNil(t, res.Auth)
	assert.NotEmpty(t, res.Auth.Token)
	assert.True(t, res.Auth.User.IsEmailVerified)
	assert.Equal(t, email.TemplateTempPassword, f.mailer.last().Template)
	assert.Equal(t, "222222", f.mailer.last().Data["tempPassword"])

	stored, _ := f.repo.FindByID(ctx, id)
	assert.Nil(t, stored.OTPHash)
	assert.NotNil(t, stored.TempPasswordHash)

	// verifying again is rejected
	_, err = f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "tenant@example.com", OTP: "111111"})
	assert.Equal(t, model.ErrCodeAlreadyVerified, codeOf(err))

	// temp password login promotes it to the account password
	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "tenant@example.com", Password: "222222"})
	require.NoError(t, err)
	stored, _ = f.repo.FindByID(ctx, id)
	assert.Nil(t, stored.TempPasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("222222")))

	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "tenant@example.com", Password: "secret123"})
	assert.Equal(t, model.ErrCodeInvalidCredentials, codeOf(err))
}

func TestVerifyEmailOTP_ResendAndExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@example.com")

	res, err := f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, res.OTPSent)
	assert.Equal(t, "222222", f.mailer.last().Data["otp"])

	f.clock = f.clock.Add(11 * time.Minute)
	_, err = f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "a@example.com", OTP: "222222"})
	assert.Equal(t, model.ErrCodeOTPExpired, codeOf(err))

	_, err = f.svc.VerifyEmailOTP(ctx, model.VerifyOTPRequest{Email: "nobody@example.com", OTP: "222222"})
	assert.Equal(t, model.ErrCodeInvalidEmail, codeOf(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svc.jwtManager.GenerateAccessToken(uuid.NewString(), "x@example.com", "user")
	require.NoError(t, err)
	claims, err := f.svc.jwtManager.ValidateAccessToken(token)
	require.NoError(t, err)

	// the token was issued with the real clock
	f.svc.now = time.Now
	require.NoError(t, f.svc.Logout(ctx, claims))

	revoked, err := f.cache.Exists(ctx, jwt.RevocationKey(claims.ID))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "c@example.com")

	_, err := f.svc.ForgotPassword(ctx, model.ForgotPasswordRequest{Email: "missing@example.com"})
	assert.Equal(t, model.ErrCodeUserNotFound, codeOf(err))

	f.mailer.err = errors.New("smtp down")
	resp, err := f.svc.ForgotPassword(ctx, model.ForgotPasswordRequest{Email: "c@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.EmailSendError)

	stored, _ := f.repo.FindByID(ctx, id)
	assert.Nil(t, stored.TempPasswordHash)
}

func TestUpdateDetailsAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "d@example.com")
	f.register(t, "taken@example.com")

	taken := "taken@example.com"
	_, err := f.svc.UpdateDetails(ctx, id, model.UpdateDetailsRequest{Email: &taken})
	assert.Equal(t, model.ErrCodeEmailExists, codeOf(err))

	bio := "Looking for a flat"
	resp, err := f.svc.UpdateDetails(ctx, id, model.UpdateDetailsRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, resp.Bio)

	_, err = f.svc.UpdatePassword(ctx, id, model.UpdatePasswordRequest{CurrentPassword: "wrong!", NewPassword: "newsecret"})
	assert.Equal(t, model.ErrCodeIncorrectPassword, codeOf(err))

	auth, err := f.svc.UpdatePassword(ctx, id, model.UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
}

func TestCleanupExpiredCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t, "e@example.com")

	n, err := f.svc.CleanupExpiredCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	f.clock = f.clock.Add(time.Hour)
	n, err = f.svc.CleanupExpiredCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSixDigitCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := sixDigitCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])
	}
}
