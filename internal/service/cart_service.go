package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for cart business logic
type CartService interface {
	// Get returns the stored cart for a user, or an empty cart if none
	// exists. A missing cart is not an error.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// Save replaces the whole item list. Saving the same list twice is
	// idempotent; last write wins across concurrent sessions.
	Save(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Cart, error)
	// Clear deletes the cart. Clearing an absent cart succeeds.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo repository.CartRepository
	now      func() time.Time
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{
		cartRepo: cartRepo,
		now:      time.Now,
	}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Save(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Cart, error) {
	if items == nil {
		items = []domain.CartItem{}
	}

	now := s.now()
	cart := &domain.Cart{
		UserID:    userID,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cartRepo.Replace(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.cartRepo.Delete(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	return err
}
