package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrPromoExpired           = errors.New("promo code expired")
	ErrPromoUsageLimitReached = errors.New("promo code usage limit reached")
	ErrPromoBelowMinimum      = errors.New("below minimum order value")
)

// BelowMinimumError carries the promo's minimum order value so the
// rejection message can name it. errors.Is matches ErrPromoBelowMinimum.
type BelowMinimumError struct {
	MinOrder float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order value is %g", e.MinOrder)
}

func (e *BelowMinimumError) Unwrap() error { return ErrPromoBelowMinimum }

// PromoService defines the interface for promo code business logic
type PromoService interface {
	// Validate checks a code against a candidate order total. It is a pure
	// read: the usage counter is only incremented when an order is placed.
	Validate(ctx context.Context, code string, orderTotal float64) (*domain.PromoCode, error)
	List(ctx context.Context) ([]*domain.PromoCode, error)
	Create(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error)
	Update(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type promoService struct {
	promoRepo repository.PromoRepository
	now       func() time.Time
}

// NewPromoService creates a new instance of PromoService
func NewPromoService(promoRepo repository.PromoRepository) PromoService {
	return &promoService{
		promoRepo: promoRepo,
		now:       time.Now,
	}
}

// Validate runs the rejection checks in a fixed order so the first
// failing rule determines the client-visible message:
// lookup, expiry, usage limit, minimum order value.
func (s *promoService) Validate(ctx context.Context, code string, orderTotal float64) (*domain.PromoCode, error) {
	promo, err := s.promoRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// Strictly after expiry: a validation at exactly the expiry instant
	// is still accepted.
	if promo.Expiry != nil && s.now().After(*promo.Expiry) {
		return nil, ErrPromoExpired
	}

	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return nil, ErrPromoUsageLimitReached
	}

	if orderTotal < promo.MinOrder {
		return nil, &BelowMinimumError{MinOrder: promo.MinOrder}
	}

	return promo, nil
}

// List retrieves all promo codes
func (s *promoService) List(ctx context.Context) ([]*domain.PromoCode, error) {
	promos, err := s.promoRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return promos, nil
}

// Create stores a new promo code. Missing type defaults to percent and
// the usage counter always starts at zero.
func (s *promoService) Create(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error) {
	if promo.Type == "" {
		promo.Type = domain.PromoTypePercent
	}

	promo.ID = uuid.New()
	promo.UsedCount = 0
	promo.CreatedAt = s.now()
	promo.UpdatedAt = promo.CreatedAt

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, err
	}

	return promo, nil
}

// Update modifies an existing promo code. The usage counter is not
// touched here; it only moves at order placement.
func (s *promoService) Update(ctx context.Context, promo *domain.PromoCode) (*domain.PromoCode, error) {
	if promo.Type == "" {
		promo.Type = domain.PromoTypePercent
	}

	promo.UpdatedAt = s.now()

	if err := s.promoRepo.Update(ctx, promo); err != nil {
		return nil, err
	}

	return s.promoRepo.FindByCode(ctx, promo.Code)
}

// Delete removes a promo code
func (s *promoService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.promoRepo.Delete(ctx, id)
}
