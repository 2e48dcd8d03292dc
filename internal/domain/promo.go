package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromoType distinguishes percentage discounts from fixed-amount discounts
type PromoType string

const (
	PromoTypePercent PromoType = "percent"
	PromoTypeFixed   PromoType = "fixed"
)

// PromoCode represents a discount code with its usage constraints.
// Expiry and UsageLimit are optional; a nil value means unconstrained.
type PromoCode struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	Discount    float64    `json:"discount" db:"discount"`
	Type        PromoType  `json:"type" db:"type"`
	MinOrder    float64    `json:"min_order" db:"min_order"`
	Expiry      *time.Time `json:"expiry,omitempty" db:"expiry"`
	UsageLimit  *int       `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount   int        `json:"used_count" db:"used_count"`
	Description string     `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DiscountAmount computes the discount this promo grants against the
// given subtotal. Fixed discounts are capped at the subtotal so the
// resulting total never goes negative.
func (p *PromoCode) DiscountAmount(subtotal float64) float64 {
	var amount float64
	switch p.Type {
	case PromoTypeFixed:
		amount = p.Discount
	default:
		amount = subtotal * p.Discount / 100
	}
	if amount > subtotal {
		amount = subtotal
	}
	return amount
}
