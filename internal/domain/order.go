package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a single line item on an order. Price is the unit price
// at the time the order was placed.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
}

// Order represents a placed order. Orders are immutable after creation
// except for the status field. UserID is nil for guest checkout.
type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	UserID         *uuid.UUID  `json:"user_id,omitempty" db:"user_id"`
	IdempotencyKey string      `json:"idempotency_key" db:"idempotency_key"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total" db:"total"`
	Status         OrderStatus `json:"status" db:"status"`
	PromoCode      string      `json:"promo_code,omitempty" db:"promo_code"`
	FirstName      string      `json:"first_name" db:"first_name"`
	LastName       string      `json:"last_name" db:"last_name"`
	Email          string      `json:"email" db:"email"`
	Phone          string      `json:"phone" db:"phone"`
	Address        string      `json:"address" db:"address"`
	City           string      `json:"city" db:"city"`
	Country        string      `json:"country" db:"country"`
	PostalCode     string      `json:"postal_code" db:"postal_code"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}
