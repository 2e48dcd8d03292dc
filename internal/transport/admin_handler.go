package transport

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerRequest represents the customer create payload
type CustomerRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// UpdateUserRoleRequest changes a user's role
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// AdminHandler handles back-office endpoints: analytics, customers,
// and user management
type AdminHandler struct {
	analytics    service.AnalyticsService
	users        service.UserService
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	analytics service.AnalyticsService,
	users service.UserService,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		analytics:    analytics,
		users:        users,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers all back-office routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/analytics", h.Analytics)
		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}", h.UpdateUserRole)
		r.Delete("/users/{id}", h.DeleteUser)
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)
	})
}

// Analytics aggregates revenue/orders/customers/products over a
// trailing window
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("range")

	summary, err := h.analytics.Summary(r.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// ListUsers returns all user accounts
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// UpdateUserRole changes a user's role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req UpdateUserRoleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateUserRole(r.Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to update user role", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	h.logger.Info("User role updated",
		zap.String("user_id", id.String()),
		zap.String("role", user.Role),
	)
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user account
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to delete user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// ListCustomers returns the back-office address book
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

// CreateCustomer adds a customer record
func (h *AdminHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	customer := &domain.Customer{
		ID:         uuid.New(),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.customerRepo.Create(r.Context(), customer); err != nil {
		h.logger.Error("Failed to create customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}
