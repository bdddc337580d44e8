package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("user-1", "a@example.com", "user")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	t1, err := m.GenerateAccessToken("user-1", "a@example.com", "user")
	require.NoError(t, err)
	t2, err := m.GenerateAccessToken("user-1", "a@example.com", "user")
	require.NoError(t, err)

	c1, err := m.ValidateToken(t1)
	require.NoError(t, err)
	c2, err := m.ValidateToken(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateAccessToken("u", "e@example.com", "user")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("u", "e@example.com", "user")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsExpiresIn(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.GenerateAccessToken("u", "e@example.com", "user")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)

	assert.InDelta(t, time.Hour.Seconds(), claims.ExpiresIn(time.Now()).Seconds(), 5)
	assert.Equal(t, time.Duration(0), claims.ExpiresIn(time.Now().Add(2*time.Hour)))
}

func TestDefaultExpiry(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewManager("s", 0).Expiry())
}
