package service

import (
	"context"
	"fmt"

	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/port"
)

type CatalogService struct {
	catalog port.CatalogRepository
}

func NewCatalogService(catalog port.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ListProducts returns the products matching every criterion in filter,
// in catalog order. An empty filter returns the whole catalog.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.catalog.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if filter.IsEmpty() {
		return products, nil
	}

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filter.Match(p) {
			result = append(result, p)
		}
	}

	return result, nil
}
