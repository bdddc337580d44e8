package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 10, cfg.Upload.MaxImages)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxImageSize)
	assert.Equal(t, "499", cfg.Booking.PlatformFee.String())
	assert.Equal(t, 2, cfg.Booking.DepositMonths)
	assert.True(t, cfg.Booking.DemoMarksRented)
	assert.Equal(t, "Homefinder-App/1.0", cfg.Geocoding.UserAgent)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRE", "12h")
	t.Setenv("BOOKING_DEMO_MARKS_RENTED", "false")
	t.Setenv("BOOKING_PLATFORM_FEE", "250.50")
	t.Setenv("EMAIL_DELIVERY", "direct")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)
	assert.False(t, cfg.Booking.DemoMarksRented)
	assert.Equal(t, "250.5", cfg.Booking.PlatformFee.String())
	assert.Equal(t, "direct", cfg.Email.Delivery)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDelivery(t *testing.T) {
	t.Setenv("EMAIL_DELIVERY", "pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	d, err := parseExpiry("30d")
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, d)

	d, err = parseExpiry("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = parseExpiry("xd")
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "hf", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/hf?sslmode=disable", d.DSN())
}
