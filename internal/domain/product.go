package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Price        float64   `json:"price" db:"price"`
	Images       []string  `json:"images" db:"images"`
	Description  string    `json:"description" db:"description"`
	Category     string    `json:"category" db:"category"`
	Stock        int       `json:"stock" db:"stock"`
	Discount     float64   `json:"discount" db:"discount"`
	Featured     bool      `json:"featured" db:"featured"`
	Features     []string  `json:"features" db:"features"`
	ShippingInfo string    `json:"shipping_info" db:"shipping_info"`
	ShippingCost float64   `json:"shipping_cost" db:"shipping_cost"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UnitPrice returns the effective per-unit price with the product's
// percentage discount applied.
func (p *Product) UnitPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price * (1 - p.Discount/100)
}
