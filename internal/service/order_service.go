package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrder = errors.New("order has no items")
	// ErrTotalMismatch means the client-computed total does not reconcile
	// with the total recomputed from live catalog prices.
	ErrTotalMismatch = errors.New("order total does not match server-computed total")
	ErrInvalidStatus = errors.New("invalid order status")
)

// totalTolerance absorbs float rounding between client and server
// arithmetic; anything larger is treated as a forged or stale total.
const totalTolerance = 0.01

// CheckoutItem is a line item on a checkout submission. Only the
// product reference and quantity are trusted; unit prices are
// recomputed from the live catalog.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// Checkout is a validated checkout submission
type Checkout struct {
	UserID         *uuid.UUID
	IdempotencyKey string
	Items          []CheckoutItem
	Total          float64
	PromoCode      string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	City           string
	Country        string
	PostalCode     string
}

// OrderService defines the interface for order business logic
type OrderService interface {
	// PlaceOrder turns a checkout submission into a persisted order and
	// reserves stock. The returned bool is true when a new order was
	// created and false when the idempotency key matched an existing one.
	PlaceOrder(ctx context.Context, checkout Checkout) (*domain.Order, bool, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	promos      PromoService
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	promos PromoService,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		promos:      promos,
		now:         time.Now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PlaceOrder recomputes prices from the live catalog, validates the
// optional promo code against the subtotal, reconciles the client
// total, and hands the order to the repository for atomic placement.
func (s *orderService) PlaceOrder(ctx context.Context, checkout Checkout) (*domain.Order, bool, error) {
	if len(checkout.Items) == 0 {
		return nil, false, ErrEmptyOrder
	}

	// A resubmitted checkout returns the order it already created
	existing, err := s.orderRepo.FindByIdempotencyKey(ctx, checkout.IdempotencyKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(checkout.Items))
	var subtotal float64
	for _, it := range checkout.Items {
		product, err := s.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			return nil, false, err
		}

		unit := round2(product.UnitPrice())
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     unit,
		})
		subtotal += unit * float64(it.Quantity)
	}
	subtotal = round2(subtotal)

	var promoID *uuid.UUID
	var discount float64
	if checkout.PromoCode != "" {
		promo, err := s.promos.Validate(ctx, checkout.PromoCode, subtotal)
		if err != nil {
			return nil, false, err
		}
		discount = promo.DiscountAmount(subtotal)
		promoID = &promo.ID
	}

	total := round2(subtotal - discount)
	if math.Abs(total-checkout.Total) > totalTolerance {
		return nil, false, fmt.Errorf("%w: sent %.2f, computed %.2f",
			ErrTotalMismatch, checkout.Total, total)
	}

	now := s.now()
	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         checkout.UserID,
		IdempotencyKey: checkout.IdempotencyKey,
		Items:          items,
		Total:          total,
		Status:         domain.OrderStatusPending,
		PromoCode:      checkout.PromoCode,
		FirstName:      checkout.FirstName,
		LastName:       checkout.LastName,
		Email:          checkout.Email,
		Phone:          checkout.Phone,
		Address:        checkout.Address,
		City:           checkout.City,
		Country:        checkout.Country,
		PostalCode:     checkout.PostalCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orderRepo.Place(ctx, order, promoID); err != nil {
		// Lost the idempotency race to a concurrent submission with the
		// same key: return the order that won.
		if errors.Is(err, repository.ErrDuplicateOrder) {
			winner, findErr := s.orderRepo.FindByIdempotencyKey(ctx, checkout.IdempotencyKey)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to load duplicate order: %w", findErr)
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	return order, true, nil
}

// List retrieves all orders
func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx)
}

// ListByUser retrieves a user's orders
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// UpdateStatus transitions an order to a new status
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, id)
}
