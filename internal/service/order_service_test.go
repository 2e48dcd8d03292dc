package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock product repository for testing
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

// Mock order repository for testing. Place mirrors the real
// transaction: stock decrements are floor-checked and the promo usage
// counter is gated, and a failure leaves nothing behind.
type mockOrderRepository struct {
	orders     map[uuid.UUID]*domain.Order
	byKey      map[string]*domain.Order
	products   *mockProductRepository
	promos     *mockPromoRepository
	placeCalls int
}

func newMockOrderRepository(products *mockProductRepository, promos *mockPromoRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		byKey:    make(map[string]*domain.Order),
		products: products,
		promos:   promos,
	}
}

func (m *mockOrderRepository) Place(ctx context.Context, order *domain.Order, promoID *uuid.UUID) error {
	m.placeCalls++

	if _, exists := m.byKey[order.IdempotencyKey]; exists {
		return repository.ErrDuplicateOrder
	}

	for _, item := range order.Items {
		product, exists := m.products.products[item.ProductID]
		if !exists || product.Stock < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}

	if promoID != nil {
		for _, promo := range m.promos.promos {
			if promo.ID == *promoID {
				if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
					return repository.ErrPromoUsageExceeded
				}
				promo.UsedCount++
			}
		}
	}

	for _, item := range order.Items {
		m.products.products[item.ProductID].Stock -= item.Quantity
	}

	m.orders[order.ID] = order
	m.byKey[order.IdempotencyKey] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	order, exists := m.byKey[key]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) RevenueSince(ctx context.Context, since time.Time) (float64, int, error) {
	var revenue float64
	var count int
	for _, o := range m.orders {
		if !o.CreatedAt.Before(since) {
			revenue += o.Total
			count++
		}
	}
	return revenue, count, nil
}

type orderServiceFixture struct {
	svc      OrderService
	orders   *mockOrderRepository
	products *mockProductRepository
	promos   *mockPromoRepository
}

func newOrderServiceFixture() *orderServiceFixture {
	products := newMockProductRepository()
	promos := newMockPromoRepository()
	orders := newMockOrderRepository(products, promos)

	return &orderServiceFixture{
		svc:      NewOrderService(orders, products, newTestPromoService(promos, time.Now())),
		orders:   orders,
		products: products,
		promos:   promos,
	}
}

func (f *orderServiceFixture) addProduct(price float64, discount float64, stock int) uuid.UUID {
	id := uuid.New()
	f.products.products[id] = &domain.Product{
		ID:       id,
		Name:     "product-" + id.String()[:8],
		Price:    price,
		Discount: discount,
		Stock:    stock,
		Features: []string{"a", "b", "c"},
	}
	return id
}

func checkoutFor(total float64, items ...CheckoutItem) Checkout {
	return Checkout{
		IdempotencyKey: uuid.New().String(),
		Items:          items,
		Total:          total,
		FirstName:      "Ada",
		Email:          "ada@example.com",
		Address:        "1 Analytical Way",
	}
}

func TestPlaceOrder_EmptyOrder(t *testing.T) {
	f := newOrderServiceFixture()

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(0))
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

func TestPlaceOrder_DecrementsStockPerItem(t *testing.T) {
	f := newOrderServiceFixture()
	p1 := f.addProduct(10.00, 0, 5)
	p2 := f.addProduct(4.50, 0, 8)

	order, created, err := f.svc.PlaceOrder(context.Background(), checkoutFor(29.00,
		CheckoutItem{ProductID: p1, Quantity: 2},
		CheckoutItem{ProductID: p2, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if !created {
		t.Fatal("expected a newly created order")
	}

	if got := f.products.products[p1].Stock; got != 3 {
		t.Errorf("p1 stock = %d, want 3", got)
	}
	if got := f.products.products[p2].Stock; got != 6 {
		t.Errorf("p2 stock = %d, want 6", got)
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("persisted %d orders, want 1", len(f.orders.orders))
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
}

func TestPlaceOrder_AppliesCatalogDiscount(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(100.00, 25, 10) // effective unit price 75.00

	order, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(150.00,
		CheckoutItem{ProductID: p, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Total != 150.00 {
		t.Errorf("total = %.2f, want 150.00", order.Total)
	}
	if order.Items[0].Price != 75.00 {
		t.Errorf("unit price = %.2f, want 75.00", order.Items[0].Price)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 1)

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(20.00,
		CheckoutItem{ProductID: p, Quantity: 2},
	))
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if f.products.products[p].Stock != 1 {
		t.Errorf("stock = %d, want untouched 1", f.products.products[p].Stock)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("persisted %d orders, want 0", len(f.orders.orders))
	}
}

// Two submissions competing for the last units: exactly one wins and
// stock never drops below zero.
func TestPlaceOrder_StockFloorUnderContention(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 2)

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(20.00,
		CheckoutItem{ProductID: p, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("first order failed: %v", err)
	}

	_, _, err = f.svc.PlaceOrder(context.Background(), checkoutFor(20.00,
		CheckoutItem{ProductID: p, Quantity: 2},
	))
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if f.products.products[p].Stock != 0 {
		t.Errorf("stock = %d, want 0", f.products.products[p].Stock)
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("persisted %d orders, want 1", len(f.orders.orders))
	}
}

func TestPlaceOrder_IdempotentResubmission(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 10)

	checkout := checkoutFor(10.00, CheckoutItem{ProductID: p, Quantity: 1})

	first, created, err := f.svc.PlaceOrder(context.Background(), checkout)
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if !created {
		t.Fatal("first submission should create")
	}

	second, created, err := f.svc.PlaceOrder(context.Background(), checkout)
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if created {
		t.Fatal("resubmission should not create")
	}
	if second.ID != first.ID {
		t.Errorf("resubmission returned order %s, want %s", second.ID, first.ID)
	}

	if f.products.products[p].Stock != 9 {
		t.Errorf("stock = %d, want 9 (decremented once)", f.products.products[p].Stock)
	}
	if f.orders.placeCalls != 1 {
		t.Errorf("Place called %d times, want 1", f.orders.placeCalls)
	}
}

func TestPlaceOrder_TotalMismatch(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 10)

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(5.00,
		CheckoutItem{ProductID: p, Quantity: 1},
	))
	if !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "5.00") || !strings.Contains(err.Error(), "10.00") {
		t.Errorf("mismatch message should carry both totals, got %q", err.Error())
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("persisted %d orders, want 0", len(f.orders.orders))
	}
}

func TestPlaceOrder_TotalWithinTolerance(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 10)

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(10.004,
		CheckoutItem{ProductID: p, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("total within tolerance should be accepted, got %v", err)
	}
}

func TestPlaceOrder_PromoDiscountAndUsage(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(100.00, 0, 10)
	f.promos.promos["SAVE10"] = &domain.PromoCode{
		ID: uuid.New(), Code: "SAVE10", Discount: 10, Type: domain.PromoTypePercent,
		UsageLimit: intPtr(5), UsedCount: 2,
	}

	checkout := checkoutFor(90.00, CheckoutItem{ProductID: p, Quantity: 1})
	checkout.PromoCode = "SAVE10"

	order, _, err := f.svc.PlaceOrder(context.Background(), checkout)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Total != 90.00 {
		t.Errorf("total = %.2f, want 90.00", order.Total)
	}
	if got := f.promos.promos["SAVE10"].UsedCount; got != 3 {
		t.Errorf("usedCount = %d, want 3 (incremented with placement)", got)
	}
}

func TestPlaceOrder_FixedPromoCappedAtSubtotal(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(15.00, 0, 10)
	f.promos.promos["TWENTY"] = &domain.PromoCode{
		ID: uuid.New(), Code: "TWENTY", Discount: 20, Type: domain.PromoTypeFixed,
	}

	checkout := checkoutFor(0, CheckoutItem{ProductID: p, Quantity: 1})
	checkout.PromoCode = "TWENTY"

	order, _, err := f.svc.PlaceOrder(context.Background(), checkout)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Total != 0 {
		t.Errorf("total = %.2f, want 0 (discount capped at subtotal)", order.Total)
	}
}

func TestPlaceOrder_RejectedPromoPlacesNothing(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(50.00, 0, 10)
	f.promos.promos["BIG"] = &domain.PromoCode{
		ID: uuid.New(), Code: "BIG", Discount: 10, Type: domain.PromoTypePercent,
		MinOrder: 100,
	}

	checkout := checkoutFor(45.00, CheckoutItem{ProductID: p, Quantity: 1})
	checkout.PromoCode = "BIG"

	_, _, err := f.svc.PlaceOrder(context.Background(), checkout)
	if !errors.Is(err, ErrPromoBelowMinimum) {
		t.Fatalf("expected ErrPromoBelowMinimum, got %v", err)
	}
	if f.products.products[p].Stock != 10 {
		t.Errorf("stock = %d, want untouched 10", f.products.products[p].Stock)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newOrderServiceFixture()

	_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(10.00,
		CheckoutItem{ProductID: uuid.New(), Quantity: 1},
	))
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderServiceFixture()
	p := f.addProduct(10.00, 0, 10)

	order, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(10.00,
		CheckoutItem{ProductID: p, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Errorf("status = %s, want shipped", updated.Status)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), order.ID, "teleported"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestProperty_StockNeverGoesNegative(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any sequence of orders leaves stock >= 0", prop.ForAll(
		func(stock int, quantities []int) bool {
			f := newOrderServiceFixture()
			p := f.addProduct(10.00, 0, stock)

			for _, q := range quantities {
				total := round2(10.00 * float64(q))
				_, _, err := f.svc.PlaceOrder(context.Background(), checkoutFor(total,
					CheckoutItem{ProductID: p, Quantity: q},
				))
				if err != nil && !errors.Is(err, repository.ErrInsufficientStock) {
					return false
				}
			}
			return f.products.products[p].Stock >= 0
		},
		gen.IntRange(0, 20),
		gen.SliceOf(gen.IntRange(1, 8)),
	))

	properties.Property("accepted orders account exactly for the stock consumed", prop.ForAll(
		func(stock int, quantities []int) bool {
			f := newOrderServiceFixture()
			p := f.addProduct(10.00, 0, stock)

			consumed := 0
			for _, q := range quantities {
				total := round2(10.00 * float64(q))
				_, created, err := f.svc.PlaceOrder(context.Background(), checkoutFor(total,
					CheckoutItem{ProductID: p, Quantity: q},
				))
				if err == nil && created {
					consumed += q
				}
			}
			return f.products.products[p].Stock == stock-consumed
		},
		gen.IntRange(0, 20),
		gen.SliceOf(gen.IntRange(1, 8)),
	))

	properties.TestingRun(t)
}

func TestProperty_IdempotentResubmissionReturnsSameOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("resubmitting a key never creates a second order", prop.ForAll(
		func(quantity int, resubmits int) bool {
			f := newOrderServiceFixture()
			p := f.addProduct(10.00, 0, 1000)

			checkout := checkoutFor(round2(10.00*float64(quantity)),
				CheckoutItem{ProductID: p, Quantity: quantity})

			first, created, err := f.svc.PlaceOrder(context.Background(), checkout)
			if err != nil || !created {
				return false
			}
			for i := 0; i < resubmits; i++ {
				again, created, err := f.svc.PlaceOrder(context.Background(), checkout)
				if err != nil || created || again.ID != first.ID {
					return false
				}
			}
			return len(f.orders.orders) == 1 && f.products.products[p].Stock == 1000-quantity
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
