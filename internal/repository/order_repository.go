package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientStock means a line item asked for more units than the
	// product has left. Nothing is persisted when this is returned.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPromoUsageExceeded means the promo usage counter hit its limit
	// between validation and placement. Nothing is persisted.
	ErrPromoUsageExceeded = errors.New("promo code usage limit reached")
	// ErrDuplicateOrder means an order with the same idempotency key
	// already exists.
	ErrDuplicateOrder = errors.New("order with this idempotency key already exists")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Place persists the order and its items, decrements product stock per
	// line item, and increments the promo usage counter when promoID is
	// set. The whole sequence runs in a single transaction: a stock floor
	// violation or an exhausted promo rolls everything back.
	Place(ctx context.Context, order *domain.Order, promoID *uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	// RevenueSince sums order totals and counts orders created at or after
	// the given time.
	RevenueSince(ctx context.Context, since time.Time) (float64, int, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, idempotency_key, total, status, promo_code,
	first_name, last_name, email, phone, address, city, country, postal_code,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.IdempotencyKey,
		&order.Total,
		&order.Status,
		&order.PromoCode,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Phone,
		&order.Address,
		&order.City,
		&order.Country,
		&order.PostalCode,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Place writes the order, its line items, the stock decrements, and the
// promo usage increment as one atomic unit
func (r *orderRepository) Place(ctx context.Context, order *domain.Order, promoID *uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, idempotency_key, total, status, promo_code,
		    first_name, last_name, email, phone, address, city, country, postal_code,
		    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		order.ID,
		order.UserID,
		order.IdempotencyKey,
		order.Total,
		order.Status,
		order.PromoCode,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Phone,
		order.Address,
		order.City,
		order.Country,
		order.PostalCode,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "orders_idempotency_key_key") {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		// Conditional decrement: zero rows affected means the product is
		// missing or its stock would go below zero.
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1 AND stock >= $2
		`, item.ProductID, item.Quantity, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrInsufficientStock
		}
	}

	if promoID != nil {
		// Gated increment so the usage limit holds under concurrent checkouts
		result, err := tx.ExecContext(ctx, `
			UPDATE promo_codes
			SET used_count = used_count + 1, updated_at = $2
			WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
		`, *promoID, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to increment promo usage: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrPromoUsageExceeded
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	return rows.Err()
}

// FindByID retrieves an order with its items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// FindByIdempotencyKey retrieves the order created by a previous
// submission with the same key, if any
func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE idempotency_key = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by idempotency key: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// List retrieves all orders, newest first
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query)
}

// ListByUser retrieves a user's orders, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query, userID)
}

// UpdateStatus changes the status of an order
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// RevenueSince sums totals and counts orders created at or after since
func (r *orderRepository) RevenueSince(ctx context.Context, since time.Time) (float64, int, error) {
	var revenue float64
	var count int

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1
	`, since).Scan(&revenue, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	return revenue, count, nil
}
