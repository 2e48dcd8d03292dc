package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// MinProductFeatures is the write-time floor on the features list
const MinProductFeatures = 3

var (
	ErrTooFewFeatures = errors.New("At least 3 features required")
)

// CatalogService defines the interface for product catalog business logic
type CatalogService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		now:         time.Now,
	}
}

func (s *catalogService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, filter)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Create stores a new product. The features floor is enforced here, at
// write time, regardless of which handler the request came through.
func (s *catalogService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if len(product.Features) < MinProductFeatures {
		return nil, ErrTooFewFeatures
	}

	product.ID = uuid.New()
	product.CreatedAt = s.now()
	product.UpdatedAt = product.CreatedAt

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update replaces a product's fields. The same features floor applies
// as on create.
func (s *catalogService) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if len(product.Features) < MinProductFeatures {
		return nil, ErrTooFewFeatures
	}

	product.UpdatedAt = s.now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
