package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/database"
)

const profileCacheTTL = 15 * time.Minute

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

func profileKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

const userColumns = `
	id, name, email, password_hash, role, avatar, bio,
	is_email_verified, otp_hash, otp_expires_at,
	temp_password_hash, temp_password_expires_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar, &u.Bio,
		&u.IsEmailVerified, &u.OTPHash, &u.OTPExpiresAt,
		&u.TempPasswordHash, &u.TempPasswordExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, role, avatar, bio,
			is_email_verified, otp_hash, otp_expires_at,
			temp_password_hash, temp_password_expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Avatar, u.Bio,
		u.IsEmailVerified, u.OTPHash, u.OTPExpiresAt,
		u.TempPasswordHash, u.TempPasswordExpiresAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET
			name = $2,
			email = $3,
			password_hash = $4,
			avatar = $5,
			bio = $6,
			is_email_verified = $7,
			otp_hash = $8,
			otp_expires_at = $9,
			temp_password_hash = $10,
			temp_password_expires_at = $11,
			updated_at = $12
		WHERE id = $1
	`

	u.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, u.Bio,
		u.IsEmailVerified, u.OTPHash, u.OTPExpiresAt,
		u.TempPasswordHash, u.TempPasswordExpiresAt,
		u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	_ = r.cache.Delete(ctx, profileKey(u.ID))
	return nil
}

// ========================================
// PROFILE LOOKUPS (cache-aside)
// ========================================

func (r *postgresRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	// Step 1: Check cache
	var p model.Profile
	if found, err := r.cache.Get(ctx, profileKey(id), &p); err == nil && found {
		return &p, nil
	}

	// Step 2: Cache miss, query database
	query := `SELECT id, name, email, avatar, role FROM users WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &p.Avatar, &p.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	// Step 3: Populate cache, ignoring cache failures
	_ = r.cache.Set(ctx, profileKey(id), &p, profileCacheTTL)

	return &p, nil
}

func (r *postgresRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	result := make(map[uuid.UUID]*model.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, avatar, role FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get user profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Avatar, &p.Role); err != nil {
			return nil, fmt.Errorf("scan user profile: %w", err)
		}
		result[p.ID] = &p
	}

	return result, rows.Err()
}

// ========================================
// MAINTENANCE
// ========================================

func (r *postgresRepository) ClearExpiredCredentials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET
			otp_hash = CASE WHEN otp_expires_at < $1 THEN NULL ELSE otp_hash END,
			otp_expires_at = CASE WHEN otp_expires_at < $1 THEN NULL ELSE otp_expires_at END,
			temp_password_hash = CASE WHEN temp_password_expires_at < $1 THEN NULL ELSE temp_password_hash END,
			temp_password_expires_at = CASE WHEN temp_password_expires_at < $1 THEN NULL ELSE temp_password_expires_at END,
			updated_at = $1
		WHERE otp_expires_at < $1 OR temp_password_expires_at < $1
	`

	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("clear expired credentials: %w", err)
	}
	return tag.RowsAffected(), nil
}
