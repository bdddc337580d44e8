package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/shared/utils"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/database"
)

const propertyCacheTTL = 10 * time.Minute

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

func propertyKey(id uuid.UUID) string {
	return fmt.Sprintf("property:%s", id.String())
}

const selectProperty = `
	SELECT
		p.id, p.owner_id, u.name, u.email,
		p.title, p.description, p.price, p.deposit,
		p.location, p.city, p.property_type, p.bedrooms, p.bathrooms,
		p.area, p.furnishing, p.amenities, p.images,
		p.status, p.available_from, p.created_at, p.updated_at
	FROM properties p
	JOIN users u ON u.id = p.owner_id`

func scanProperty(row pgx.Row) (*model.Property, error) {
	var p model.Property
	owner := &model.OwnerSummary{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &owner.Name, &owner.Email,
		&p.Title, &p.Description, &p.Price, &p.Deposit,
		&p.Location, &p.City, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&p.Area, &p.Furnishing, &p.Amenities, &p.Images,
		&p.Status, &p.AvailableFrom, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	owner.ID = p.OwnerID
	p.Owner = owner
	return &p, nil
}

func collectProperties(rows pgx.Rows) ([]*model.Property, error) {
	defer rows.Close()

	properties := make([]*model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *model.Property) error {
	query := `
		INSERT INTO properties (
			id, owner_id, title, description, price, deposit,
			location, city, property_type, bedrooms, bathrooms,
			area, furnishing, amenities, images,
			status, available_from, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Description, p.Price, p.Deposit,
		p.Location, p.City, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.Area, p.Furnishing, p.Amenities, p.Images,
		p.Status, p.AvailableFrom, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	// Step 1: Check cache
	var cached model.Property
	if found, err := r.cache.Get(ctx, propertyKey(id), &cached); err == nil && found {
		return &cached, nil
	}

	// Step 2: Cache miss, query database
	p, err := scanProperty(r.pool.QueryRow(ctx, selectProperty+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}

	// Step 3: Populate cache, ignoring cache failures
	_ = r.cache.Set(ctx, propertyKey(id), p, propertyCacheTTL)

	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *model.Property) error {
	query := `
		UPDATE properties
		SET
			title = $2,
			description = $3,
			price = $4,
			deposit = $5,
			location = $6,
			city = $7,
			property_type = $8,
			bedrooms = $9,
			bathrooms = $10,
			area = $11,
			furnishing = $12,
			amenities = $13,
			images = $14,
			status = $15,
			available_from = $16,
			updated_at = $17
		WHERE id = $1
	`

	p.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Deposit,
		p.Location, p.City, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.Area, p.Furnishing, p.Amenities, p.Images,
		p.Status, p.AvailableFrom, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrPropertyNotFound
	}

	_ = r.cache.Delete(ctx, propertyKey(p.ID))
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrPropertyNotFound
	}

	_ = r.cache.Delete(ctx, propertyKey(id))
	return nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, q database.Querier, id uuid.UUID, status string) error {
	result, err := q.Exec(ctx,
		`UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set property status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrPropertyNotFound
	}

	_ = r.cache.Delete(ctx, propertyKey(id))
	return nil
}

// ========================================
// LISTING
// ========================================

func (r *postgresRepository) List(ctx context.Context, req model.ListPropertiesRequest) ([]*model.Property, int64, error) {
	// Step 1: Build filters
	var where utils.WhereBuilder
	if req.OwnerID != nil {
		where.Add("p.owner_id = ?", *req.OwnerID)
	}
	if req.City != "" {
		where.Add("LOWER(p.city) = LOWER(?)", strings.TrimSpace(req.City))
	}
	if req.PropertyType != "" {
		where.Add("p.property_type = ?", req.PropertyType)
	}
	if req.Status != "" {
		where.Add("p.status = ?", req.Status)
	}
	if req.MinPrice != nil {
		where.Add("p.price >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil {
		where.Add("p.price <= ?", *req.MaxPrice)
	}
	if req.Bedrooms != nil {
		where.Add("p.bedrooms = ?", *req.Bedrooms)
	}

	// Step 2: Count
	var total int64
	countQuery := `SELECT COUNT(*) FROM properties p` + where.SQL()
	if err := r.pool.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	// Step 3: Page
	offset := (req.Page - 1) * req.Limit
	query := fmt.Sprintf("%s%s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d",
		selectProperty, where.SQL(), where.Next(), where.Next()+1)
	args := append(where.Args(), req.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}

	properties, err := collectProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]*model.Property, error) {
	rows, err := r.pool.Query(ctx, selectProperty+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all properties: %w", err)
	}
	return collectProperties(rows)
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Property, error) {
	rows, err := r.pool.Query(ctx, selectProperty+` WHERE p.owner_id = $1 ORDER BY p.created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner properties: %w", err)
	}
	return collectProperties(rows)
}
