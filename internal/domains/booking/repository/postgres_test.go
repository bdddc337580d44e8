package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/internal/domains/booking/model"
	"homefinder-backend/internal/infrastructure/database"
	pkgdb "homefinder-backend/pkg/database"
)

func TestOverlapQueriesUseHalfOpenRanges(t *testing.T) {
	assert.Contains(t, countOverlappingQuery, "start_date < $3")
	assert.Contains(t, countOverlappingQuery, "end_date > $2")
	assert.NotContains(t, countOverlappingQuery, "<=")
	assert.NotContains(t, countOverlappingQuery, ">=")
	assert.Contains(t, countOverlappingQuery, "('pending', 'confirmed')")

	assert.Contains(t, activeWindowsQuery, "end_date > $1")
	assert.Contains(t, activeWindowsQuery, "('pending', 'confirmed')")
}

// ========================================
// POSTGRES (set HOMEFINDER_TEST_DATABASE_URL)
// ========================================

type sqlStatusWriter struct{}

func (sqlStatusWriter) SetStatus(ctx context.Context, q pkgdb.Querier, id uuid.UUID, status string) error {
	_, err := q.Exec(ctx, `UPDATE properties SET status = $2 WHERE id = $1`, id, status)
	return err
}

type pgFixture struct {
	pool       *pgxpool.Pool
	repo       Repository
	propertyID uuid.UUID
	ownerID    uuid.UUID
	tenantID   uuid.UUID
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("HOMEFINDER_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("HOMEFINDER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	_, err := database.Migrate(ctx, dsn)
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	f := &pgFixture{
		pool:       pool,
		repo:       NewPostgresRepository(pool, sqlStatusWriter{}),
		propertyID: uuid.New(),
		ownerID:    uuid.New(),
		tenantID:   uuid.New(),
	}

	for _, id := range []uuid.UUID{f.ownerID, f.tenantID} {
		_, err := pool.Exec(ctx, `INSERT INTO users (id, name, email, password_hash) VALUES ($1, 'Test', $2, 'x')`,
			id, id.String()+"@example.com")
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO properties (id, owner_id, title, description, price, location, city, property_type,
			bedrooms, bathrooms, area, furnishing, amenities)
		VALUES ($1, $2, 'Flat A', 'Two rooms', 10000, 'MG Road', 'Pune', 'apartment', 2, 1, 800, 'furnished', ARRAY['wifi'])`,
		f.propertyID, f.ownerID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = ANY($1)`, []uuid.UUID{f.ownerID, f.tenantID})
		pool.Close()
	})
	return f
}

func (f *pgFixture) booking(start, end string) *model.Booking {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	now := time.Now().UTC()
	return &model.Booking{
		ID:         uuid.New(),
		PropertyID: f.propertyID,
		TenantID:   f.tenantID,
		OwnerID:    f.ownerID,
		StartDate:  s,
		EndDate:    e,
		TotalPrice: decimal.NewFromInt(10000),
		Notes:      map[string]string{},
		Status:     model.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (f *pgFixture) propertyStatus(t *testing.T) string {
	t.Helper()
	var status string
	require.NoError(t, f.pool.QueryRow(context.Background(), `SELECT status FROM properties WHERE id = $1`, f.propertyID).Scan(&status))
	return status
}

func TestPostgres_TouchingRangesDoNotOverlap(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	jan := f.booking("2024-01-01", "2024-02-01")
	require.NoError(t, f.repo.Create(ctx, jan, ""))

	day := func(s string) time.Time { d, _ := time.Parse("2006-01-02", s); return d }

	n, err := f.repo.CountOverlapping(ctx, f.propertyID, day("2024-01-15"), day("2024-02-15"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.repo.CountOverlapping(ctx, f.propertyID, day("2024-02-01"), day("2024-03-01"), nil)
	require.NoError(t, err)
	assert.Zero(t, n, "touching ranges do not overlap")

	n, err = f.repo.CountOverlapping(ctx, f.propertyID, day("2024-01-15"), day("2024-02-15"), &jan.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "a booking does not conflict with itself")

	require.NoError(t, f.repo.Create(ctx, f.booking("2024-02-01", "2024-03-01"), ""))

	windows, err := f.repo.ActiveWindows(ctx, []uuid.UUID{f.propertyID}, day("2024-01-10"))
	require.NoError(t, err)
	assert.Len(t, windows[f.propertyID], 2)
}

func TestPostgres_ExclusionConstraintRejectsOverlap(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	jan := f.booking("2024-01-01", "2024-02-01")
	require.NoError(t, f.repo.Create(ctx, jan, ""))

	// Written without the pre-check, as a concurrent request would
	err := f.repo.Create(ctx, f.booking("2024-01-15", "2024-02-15"), "")
	assert.ErrorIs(t, err, model.ErrOverlap)

	err = f.repo.Create(ctx, f.booking("2024-01-01", "2024-02-01"), "")
	assert.ErrorIs(t, err, model.ErrOverlap)

	// Cancelling frees the range for the next tenant
	jan.Status = model.StatusCancelled
	require.NoError(t, f.repo.Update(ctx, jan, ""))
	require.NoError(t, f.repo.Create(ctx, f.booking("2024-01-01", "2024-02-01"), ""))
}

func TestPostgres_CreateSetsPropertyStatusInTransaction(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Create(ctx, f.booking("2024-01-01", "2024-02-01"), "rented"))
	assert.Equal(t, "rented", f.propertyStatus(t))

	// A rejected insert rolls the status change back
	_, err := f.pool.Exec(ctx, `UPDATE properties SET status = 'available' WHERE id = $1`, f.propertyID)
	require.NoError(t, err)
	err = f.repo.Create(ctx, f.booking("2024-01-10", "2024-01-20"), "rented")
	assert.ErrorIs(t, err, model.ErrOverlap)
	assert.Equal(t, "available", f.propertyStatus(t))
}
