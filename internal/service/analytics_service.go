package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/repository"
)

// Metric is one aggregate figure over the requested trailing window.
// Change is period-over-period movement, which the dashboard does not
// compute yet; it is always zero.
type Metric struct {
	Total  float64 `json:"total"`
	Period string  `json:"period"`
	Change float64 `json:"change"`
}

// AnalyticsSummary aggregates revenue, order, customer, and product
// counts for the admin dashboard
type AnalyticsSummary struct {
	Revenue   Metric `json:"revenue"`
	Orders    Metric `json:"orders"`
	Customers Metric `json:"customers"`
	Products  Metric `json:"products"`
}

// AnalyticsService defines the interface for back-office analytics
type AnalyticsService interface {
	// Summary aggregates over a trailing window: week (7 days),
	// month (30 days, the default), or year (365 days).
	Summary(ctx context.Context, window string) (*AnalyticsSummary, error)
}

type analyticsService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	now          func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) AnalyticsService {
	return &analyticsService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		now:          time.Now,
	}
}

func (s *analyticsService) Summary(ctx context.Context, window string) (*AnalyticsSummary, error) {
	var days int
	switch window {
	case "week":
		days = 7
	case "year":
		days = 365
	default:
		window = "month"
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)

	revenue, orderCount, err := s.orderRepo.RevenueSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	customerCount, err := s.customerRepo.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &AnalyticsSummary{
		Revenue:   Metric{Total: revenue, Period: window},
		Orders:    Metric{Total: float64(orderCount), Period: window},
		Customers: Metric{Total: float64(customerCount), Period: window},
		Products:  Metric{Total: float64(productCount), Period: window},
	}, nil
}
