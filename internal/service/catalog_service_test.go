package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *domain.Product {
	return &domain.Product{
		Name:     "Canvas Tote",
		Price:    24.99,
		Category: "bags",
		Stock:    50,
		Features: []string{"waterproof", "machine washable", "recycled cotton"},
	}
}

func TestCatalogCreate_FeaturesFloor(t *testing.T) {
	svc := NewCatalogService(newMockProductRepository())

	tests := []struct {
		name     string
		features []string
		wantErr  bool
	}{
		{"no features", nil, true},
		{"two features", []string{"a", "b"}, true},
		{"three features", []string{"a", "b", "c"}, false},
		{"four features", []string{"a", "b", "c", "d"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := validProduct()
			product.Features = tt.features

			_, err := svc.Create(context.Background(), product)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrTooFewFeatures)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCatalogCreate_RejectionMessage(t *testing.T) {
	svc := NewCatalogService(newMockProductRepository())

	product := validProduct()
	product.Features = []string{"one", "two"}

	_, err := svc.Create(context.Background(), product)
	require.Error(t, err)
	assert.Equal(t, "At least 3 features required", err.Error())
}

func TestCatalogCreate_AssignsIDAndTimestamps(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewCatalogService(repo)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, stored.Name)
}

func TestCatalogUpdate_FeaturesFloor(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewCatalogService(repo)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)

	created.Features = []string{"only one"}
	_, err = svc.Update(context.Background(), created)
	require.ErrorIs(t, err, ErrTooFewFeatures)
}

func TestCatalogUpdate_NotFound(t *testing.T) {
	svc := NewCatalogService(newMockProductRepository())

	product := validProduct()
	product.ID = uuid.New()

	_, err := svc.Update(context.Background(), product)
	require.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogList_Filters(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewCatalogService(repo)

	bag := validProduct()
	_, err := svc.Create(context.Background(), bag)
	require.NoError(t, err)

	shoe := validProduct()
	shoe.Category = "shoes"
	shoe.Featured = true
	_, err = svc.Create(context.Background(), shoe)
	require.NoError(t, err)

	byCategory, err := svc.List(context.Background(), repository.ProductFilter{Category: "shoes"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "shoes", byCategory[0].Category)

	featured := true
	byFeatured, err := svc.List(context.Background(), repository.ProductFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, byFeatured, 1)
	assert.True(t, byFeatured[0].Featured)

	all, err := svc.List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogDelete(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewCatalogService(repo)

	created, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.True(t, errors.Is(err, repository.ErrProductNotFound))
}
