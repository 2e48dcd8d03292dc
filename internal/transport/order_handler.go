package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutItemRequest is one line item of a checkout submission. The
// price field is accepted for compatibility with older clients but
// ignored; unit prices are recomputed server-side.
type CheckoutItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price"`
}

// CheckoutRequest represents the checkout payload. UserID is optional
// to allow guest checkout; the idempotency key is required so retried
// submissions do not create duplicate orders.
type CheckoutRequest struct {
	UserID         string                `json:"user_id" validate:"omitempty,uuid"`
	IdempotencyKey string                `json:"idempotency_key" validate:"required"`
	Items          []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Total          float64               `json:"total" validate:"gte=0"`
	PromoCode      string                `json:"promo_code"`
	FirstName      string                `json:"first_name" validate:"required"`
	LastName       string                `json:"last_name"`
	Email          string                `json:"email" validate:"required,email"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address" validate:"required"`
	City           string                `json:"city"`
	Country        string                `json:"country"`
	PostalCode     string                `json:"postal_code"`
}

// UpdateStatusRequest changes an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes. Checkout is public so
// guests can place orders; rate limiting is applied by the caller.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, checkoutLimit func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(checkoutLimit).Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/user/{userID}", h.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(adminMiddleware)
				r.Get("/", h.List)
				r.Put("/{id}/status", h.UpdateStatus)
			})
		})
	})
}

// Create handles a checkout submission
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	checkout := service.Checkout{
		IdempotencyKey: req.IdempotencyKey,
		Total:          req.Total,
		PromoCode:      req.PromoCode,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		PostalCode:     req.PostalCode,
	}

	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		checkout.UserID = &userID
	}

	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID in items")
			return
		}
		checkout.Items = append(checkout.Items, service.CheckoutItem{
			ProductID: productID,
			Quantity:  it.Quantity,
		})
	}

	order, created, err := h.orders.PlaceOrder(r.Context(), checkout)
	if err != nil {
		h.respondPlaceOrderError(w, err)
		return
	}

	if !created {
		h.logger.Info("Duplicate checkout returned existing order",
			zap.String("order_id", order.ID.String()),
			zap.String("idempotency_key", order.IdempotencyKey),
		)
		middleware.RespondWithJSON(w, http.StatusOK, order)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) respondPlaceOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder):
		middleware.RespondWithError(w, http.StatusBadRequest, "order has no items")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, service.ErrTotalMismatch):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrPromoNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Promo code not found")
	case errors.Is(err, service.ErrPromoExpired):
		middleware.RespondWithError(w, http.StatusBadRequest, "Promo code expired")
	case errors.Is(err, service.ErrPromoUsageLimitReached),
		errors.Is(err, repository.ErrPromoUsageExceeded):
		middleware.RespondWithError(w, http.StatusBadRequest, "Promo code usage limit reached")
	case errors.Is(err, service.ErrPromoBelowMinimum):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Failed to place order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}

// List handles admin listing of all orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// ListByUser handles listing a user's own orders
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles admin order status transitions
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
