package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound = errors.New("cart not found")
)

// CartRepository defines the interface for cart data access. Saves are
// whole-cart replacements; there is no per-item patching.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	Replace(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// FindByUserID retrieves the cart and its items for a user
func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price, size, image
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price, &item.Size, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// Replace overwrites the full item list for a user, creating the cart
// row if it does not exist. The delete-and-insert runs in one
// transaction so readers never observe a half-replaced cart.
func (r *cartRepository) Replace(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = $3
	`, cart.UserID, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, cart.UserID)
	if err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	for _, item := range cart.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (user_id, product_id, quantity, price, size, image)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, cart.UserID, item.ProductID, item.Quantity, item.Price, item.Size, item.Image)
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart replace: %w", err)
	}

	return nil
}

// Delete removes the cart record for a user
func (r *cartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartNotFound
	}

	return nil
}
