package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a denormalized snapshot of a product as it sat in the
// cart; it is not live-joined against the catalog.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	Size      string    `json:"size,omitempty" db:"size"`
	Image     string    `json:"image,omitempty" db:"image"`
}

// Cart is a per-user server-side cart snapshot. Saves replace the
// whole item list; there are no partial merge semantics.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
