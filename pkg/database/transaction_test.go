package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCode(t *testing.T) {
	unique := &pgconn.PgError{Code: CodeUniqueViolation}
	wrapped := fmt.Errorf("insert booking: %w", unique)

	assert.Equal(t, CodeUniqueViolation, PgErrorCode(wrapped))
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsExclusionViolation(wrapped))

	assert.True(t, IsExclusionViolation(&pgconn.PgError{Code: CodeExclusionViolation}))
	assert.Equal(t, "", PgErrorCode(errors.New("plain")))
}
