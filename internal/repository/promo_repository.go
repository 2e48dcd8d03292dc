package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPromoNotFound      = errors.New("promo code not found")
	ErrPromoAlreadyExists = errors.New("promo code with this code already exists")
)

// PromoRepository defines the interface for promo code data access
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	Update(ctx context.Context, promo *domain.PromoCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.PromoCode, error)
	// FindByCode does an exact, case-sensitive match on the code string
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
}

type promoRepository struct {
	db *sql.DB
}

// NewPromoRepository creates a new instance of PromoRepository
func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

const promoColumns = `id, code, discount, type, min_order, expiry, usage_limit,
	used_count, description, created_at, updated_at`

func scanPromo(row interface{ Scan(...any) error }) (*domain.PromoCode, error) {
	promo := &domain.PromoCode{}
	err := row.Scan(
		&promo.ID,
		&promo.Code,
		&promo.Discount,
		&promo.Type,
		&promo.MinOrder,
		&promo.Expiry,
		&promo.UsageLimit,
		&promo.UsedCount,
		&promo.Description,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return promo, nil
}

// Create inserts a new promo code into the database using parameterized queries
func (r *promoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, code, discount, type, min_order, expiry,
		    usage_limit, used_count, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promo.ID,
		promo.Code,
		promo.Discount,
		promo.Type,
		promo.MinOrder,
		promo.Expiry,
		promo.UsageLimit,
		promo.UsedCount,
		promo.Description,
		promo.CreatedAt,
		promo.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation on the code column
		if strings.Contains(err.Error(), "promo_codes_code_key") {
			return ErrPromoAlreadyExists
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

// Update updates an existing promo code using parameterized queries
func (r *promoRepository) Update(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		UPDATE promo_codes
		SET code = $2, discount = $3, type = $4, min_order = $5, expiry = $6,
		    usage_limit = $7, description = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		promo.ID,
		promo.Code,
		promo.Discount,
		promo.Type,
		promo.MinOrder,
		promo.Expiry,
		promo.UsageLimit,
		promo.Description,
		promo.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "promo_codes_code_key") {
			return ErrPromoAlreadyExists
		}
		return fmt.Errorf("failed to update promo code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromoNotFound
	}

	return nil
}

// Delete removes a promo code from the database
func (r *promoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromoNotFound
	}

	return nil
}

// List retrieves all promo codes
func (r *promoRepository) List(ctx context.Context) ([]*domain.PromoCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM promo_codes ORDER BY created_at DESC`, promoColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	promos := []*domain.PromoCode{}
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, promo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}

	return promos, nil
}

// FindByCode retrieves a promo code by its exact code string
func (r *promoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM promo_codes WHERE code = $1`, promoColumns)

	promo, err := scanPromo(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	return promo, nil
}
