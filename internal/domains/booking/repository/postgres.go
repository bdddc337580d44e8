package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homefinder-backend/internal/domains/booking/model"
	propertyModel "homefinder-backend/internal/domains/property/model"
	"homefinder-backend/pkg/database"
)

type postgresRepository struct {
	pool     *pgxpool.Pool
	statuses PropertyStatusWriter
}

func NewPostgresRepository(pool *pgxpool.Pool, statuses PropertyStatusWriter) Repository {
	return &postgresRepository{
		pool:     pool,
		statuses: statuses,
	}
}

const selectBooking = `
	SELECT
		b.id, b.property_id, b.tenant_id, b.owner_id,
		b.start_date, b.end_date, b.total_price,
		b.lease_duration, b.monthly_rent, b.total_rent,
		b.security_deposit, b.platform_fee, b.total_amount,
		b.notes, b.status, b.created_at, b.updated_at,
		p.title, p.location, p.images,
		t.name, t.email,
		o.name, o.email
	FROM bookings b
	JOIN properties p ON p.id = b.property_id
	JOIN users t ON t.id = b.tenant_id
	JOIN users o ON o.id = b.owner_id`

const activeStatuses = `('pending', 'confirmed')`

// countOverlappingQuery uses the half-open test: [start_date, end_date) meets [$2, $3)
// only when start_date < $3 and end_date > $2, so touching ranges do not count.
const countOverlappingQuery = `
	SELECT COUNT(*)
	FROM bookings
	WHERE property_id = $1
		AND status IN ` + activeStatuses + `
		AND start_date < $3
		AND end_date > $2
		AND ($4::uuid IS NULL OR id <> $4)
`

const activeWindowsQuery = `
	SELECT property_id, start_date, end_date
	FROM bookings
	WHERE status IN ` + activeStatuses + `
		AND end_date > $1
		AND property_id = ANY($2)
	ORDER BY start_date
`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	prop := &model.PropertySummary{}
	tenant := &model.Party{}
	owner := &model.Party{}

	err := row.Scan(
		&b.ID, &b.PropertyID, &b.TenantID, &b.OwnerID,
		&b.StartDate, &b.EndDate, &b.TotalPrice,
		&b.LeaseDuration, &b.MonthlyRent, &b.TotalRent,
		&b.SecurityDeposit, &b.PlatformFee, &b.TotalAmount,
		&b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&prop.Title, &prop.Location, &prop.Images,
		&tenant.Name, &tenant.Email,
		&owner.Name, &owner.Email,
	)
	if err != nil {
		return nil, err
	}

	prop.ID, tenant.ID, owner.ID = b.PropertyID, b.TenantID, b.OwnerID
	b.Property, b.Tenant, b.Owner = prop, tenant, owner
	if b.Notes == nil {
		b.Notes = map[string]string{}
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// translateWriteError maps constraint violations on the booking range to ErrOverlap.
func translateWriteError(op string, err error) error {
	if database.IsExclusionViolation(err) || database.IsUniqueViolation(err) {
		return model.ErrOverlap
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func insertBooking(ctx context.Context, q database.Querier, b *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, property_id, tenant_id, owner_id, start_date, end_date, total_price,
			lease_duration, monthly_rent, total_rent, security_deposit, platform_fee, total_amount,
			notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := q.Exec(ctx, query,
		b.ID, b.PropertyID, b.TenantID, b.OwnerID, b.StartDate, b.EndDate, b.TotalPrice,
		b.LeaseDuration, b.MonthlyRent, b.TotalRent, b.SecurityDeposit, b.PlatformFee, b.TotalAmount,
		b.Notes, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("create booking", err)
	}
	return nil
}

// withPropertyStatus runs write directly, or inside a transaction together with the
// property status update when propertyStatus is set.
func (r *postgresRepository) withPropertyStatus(ctx context.Context, propertyID uuid.UUID, propertyStatus string, write func(q database.Querier) error) error {
	if propertyStatus == "" {
		return write(r.pool)
	}
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := write(tx); err != nil {
			return err
		}
		return r.statuses.SetStatus(ctx, tx, propertyID, propertyStatus)
	})
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Booking, propertyStatus string) error {
	return r.withPropertyStatus(ctx, b.PropertyID, propertyStatus, func(q database.Querier) error {
		return insertBooking(ctx, q, b)
	})
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, selectBooking+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Booking, propertyStatus string) error {
	query := `
		UPDATE bookings
		SET
			start_date = $2,
			end_date = $3,
			total_price = $4,
			notes = $5,
			status = $6,
			updated_at = $7
		WHERE id = $1
	`

	b.UpdatedAt = time.Now()

	return r.withPropertyStatus(ctx, b.PropertyID, propertyStatus, func(q database.Querier) error {
		result, err := q.Exec(ctx, query,
			b.ID, b.StartDate, b.EndDate, b.TotalPrice, b.Notes, b.Status, b.UpdatedAt)
		if err != nil {
			return translateWriteError("update booking", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrBookingNotFound
		}
		return nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, b *model.Booking, propertyStatus string) error {
	return r.withPropertyStatus(ctx, b.PropertyID, propertyStatus, func(q database.Querier) error {
		result, err := q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, b.ID)
		if err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		if result.RowsAffected() == 0 {
			return model.ErrBookingNotFound
		}
		return nil
	})
}

// ========================================
// AVAILABILITY
// ========================================

func (r *postgresRepository) CountOverlapping(ctx context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countOverlappingQuery, propertyID, start, end, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ActiveWindows(ctx context.Context, propertyIDs []uuid.UUID, now time.Time) (map[uuid.UUID][]propertyModel.BookingWindow, error) {
	result := make(map[uuid.UUID][]propertyModel.BookingWindow)
	if len(propertyIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, activeWindowsQuery, now, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("query active bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var w propertyModel.BookingWindow
		if err := rows.Scan(&id, &w.StartDate, &w.EndDate); err != nil {
			return nil, fmt.Errorf("scan active booking: %w", err)
		}
		result[id] = append(result[id], w)
	}
	return result, rows.Err()
}

// ========================================
// LISTING
// ========================================

func (r *postgresRepository) ListAll(ctx context.Context, limit, offset int) ([]*model.Booking, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	rows, err := r.pool.Query(ctx, selectBooking+` ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *postgresRepository) listWhere(ctx context.Context, clause string, arg any) ([]*model.Booking, error) {
	rows, err := r.pool.Query(ctx, selectBooking+` WHERE `+clause+` ORDER BY b.created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *postgresRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*model.Booking, error) {
	return r.listWhere(ctx, "b.tenant_id = $1", tenantID)
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Booking, error) {
	return r.listWhere(ctx, "b.owner_id = $1", ownerID)
}

func (r *postgresRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*model.Booking, error) {
	return r.listWhere(ctx, "b.property_id = $1", propertyID)
}
