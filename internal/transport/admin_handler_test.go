package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockCustomerRepository struct {
	customers []*domain.Customer
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	m.customers = append(m.customers, customer)
	return nil
}

func (m *mockCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	return m.customers, nil
}

func (m *mockCustomerRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, c := range m.customers {
		if !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	for _, user := range m.users {
		if user.ID == id {
			user.Role = role
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type adminHandlerFixture struct {
	router    chi.Router
	users     *mockUserRepository
	customers *mockCustomerRepository
	orders    *mockOrderRepository
	products  *mockProductRepository
}

func newAdminHandlerFixture() *adminHandlerFixture {
	products := newMockProductRepository()
	promos := newMockPromoRepository()
	orders := newMockOrderRepository(products, promos)
	customers := &mockCustomerRepository{}
	users := newMockUserRepository()

	analytics := service.NewAnalyticsService(orders, customers, products)
	userService := service.NewUserService(users, newMockRefreshTokenRepository(), "test-secret")
	handler := NewAdminHandler(analytics, userService, customers, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, noopMiddleware, noopMiddleware)

	return &adminHandlerFixture{
		router:    router,
		users:     users,
		customers: customers,
		orders:    orders,
		products:  products,
	}
}

func TestAnalytics_SummaryShape(t *testing.T) {
	f := newAdminHandlerFixture()

	orderID := uuid.New()
	f.orders.orders[orderID] = &domain.Order{
		ID: orderID, Total: 120, CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	productID := uuid.New()
	f.products.products[productID] = &domain.Product{ID: productID, Name: "p"}
	f.customers.customers = append(f.customers.customers,
		&domain.Customer{ID: uuid.New(), CreatedAt: time.Now().Add(-48 * time.Hour)},
	)

	tests := []struct {
		query      string
		wantPeriod string
	}{
		{"?range=week", "week"},
		{"?range=month", "month"},
		{"?range=year", "year"},
		{"", "month"},
	}

	for _, tt := range tests {
		t.Run("range"+tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics"+tt.query, nil)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
			}

			var summary service.AnalyticsSummary
			if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
				t.Fatalf("failed to decode summary: %v", err)
			}

			for _, metric := range []service.Metric{
				summary.Revenue, summary.Orders, summary.Customers, summary.Products,
			} {
				if metric.Period != tt.wantPeriod {
					t.Errorf("period = %q, want %q", metric.Period, tt.wantPeriod)
				}
				if metric.Change != 0 {
					t.Errorf("change = %g, want 0", metric.Change)
				}
			}
			if summary.Revenue.Total != 120 {
				t.Errorf("revenue = %g, want 120", summary.Revenue.Total)
			}
			if summary.Products.Total != 1 {
				t.Errorf("products = %g, want 1", summary.Products.Total)
			}
		})
	}
}

func TestUpdateUserRoleEndpoint(t *testing.T) {
	f := newAdminHandlerFixture()

	userID := uuid.New()
	f.users.users["staff@example.com"] = &domain.User{
		ID: userID, Email: "staff@example.com", Role: "user",
	}

	body, _ := json.Marshal(map[string]string{"role": "admin"})
	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/"+userID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if f.users.users["staff@example.com"].Role != "admin" {
		t.Errorf("role = %q, want admin", f.users.users["staff@example.com"].Role)
	}

	// A role outside user/admin fails validation
	body, _ = json.Marshal(map[string]string{"role": "superuser"})
	req = httptest.NewRequest(http.MethodPut, "/api/admin/users/"+userID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid role", w.Code)
	}
}

func TestCustomerEndpoints(t *testing.T) {
	f := newAdminHandlerFixture()

	body, _ := json.Marshal(map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/customers/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/customers/", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var customers []domain.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &customers); err != nil {
		t.Fatalf("failed to decode customers: %v", err)
	}
	if len(customers) != 1 || customers[0].FirstName != "Grace" {
		t.Errorf("unexpected customers: %+v", customers)
	}
}
