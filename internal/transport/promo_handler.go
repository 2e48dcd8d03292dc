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

// ValidatePromoRequest checks a code against a candidate order total
type ValidatePromoRequest struct {
	Code       string  `json:"code" validate:"required"`
	OrderTotal float64 `json:"orderTotal" validate:"gte=0"`
}

// PromoRequest represents the admin create/update payload
type PromoRequest struct {
	Code        string     `json:"code" validate:"required"`
	Discount    float64    `json:"discount" validate:"required,gt=0"`
	Type        string     `json:"type" validate:"omitempty,oneof=percent fixed"`
	MinOrder    float64    `json:"min_order" validate:"gte=0"`
	Expiry      *time.Time `json:"expiry"`
	UsageLimit  *int       `json:"usage_limit" validate:"omitempty,gt=0"`
	Description string     `json:"description"`
}

// PromoHandler handles HTTP requests for promo codes
type PromoHandler struct {
	promos service.PromoService
	logger *zap.Logger
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(promos service.PromoService, logger *zap.Logger) *PromoHandler {
	return &PromoHandler{
		promos: promos,
		logger: logger,
	}
}

// RegisterRoutes registers all promo code routes. Validation is public
// for checkout; CRUD is admin-only.
func (h *PromoHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, validateLimit func(http.Handler) http.Handler) {
	r.Route("/api/promocodes", func(r chi.Router) {
		r.With(validateLimit).Post("/validate", h.Validate)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Validate checks a promo code at checkout time. Rejection reasons map
// to distinct client-visible messages in a fixed order.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.promos.Validate(r.Context(), req.Code, req.OrderTotal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPromoNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Promo code not found")
		case errors.Is(err, service.ErrPromoExpired):
			middleware.RespondWithError(w, http.StatusBadRequest, "Promo code expired")
		case errors.Is(err, service.ErrPromoUsageLimitReached):
			middleware.RespondWithError(w, http.StatusBadRequest, "Promo code usage limit reached")
		case errors.Is(err, service.ErrPromoBelowMinimum):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to validate promo code", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate promo code")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promo)
}

// List handles admin listing of all promo codes
func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list promo codes", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list promo codes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promos)
}

func (req *PromoRequest) toDomain() *domain.PromoCode {
	return &domain.PromoCode{
		Code:        req.Code,
		Discount:    req.Discount,
		Type:        domain.PromoType(req.Type),
		MinOrder:    req.MinOrder,
		Expiry:      req.Expiry,
		UsageLimit:  req.UsageLimit,
		Description: req.Description,
	}
}

// Create handles admin promo code creation
func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, err := h.promos.Create(r.Context(), req.toDomain())
	if err != nil {
		if errors.Is(err, repository.ErrPromoAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "promo code with this code already exists")
			return
		}
		h.logger.Error("Failed to create promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create promo code")
		return
	}

	h.logger.Info("Promo code created", zap.String("code", promo.Code))
	middleware.RespondWithJSON(w, http.StatusCreated, promo)
}

// Update handles admin promo code updates
func (h *PromoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promo code ID")
		return
	}

	var req PromoRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := req.toDomain()
	update.ID = id

	promo, err := h.promos.Update(r.Context(), update)
	if err != nil {
		if errors.Is(err, repository.ErrPromoNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Promo code not found")
			return
		}
		if errors.Is(err, repository.ErrPromoAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "promo code with this code already exists")
			return
		}
		h.logger.Error("Failed to update promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update promo code")
		return
	}

	h.logger.Info("Promo code updated", zap.String("promo_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, promo)
}

// Delete handles admin promo code deletion
func (h *PromoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promo code ID")
		return
	}

	if err := h.promos.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPromoNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Promo code not found")
			return
		}
		h.logger.Error("Failed to delete promo code", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Promo code deleted"})
}
