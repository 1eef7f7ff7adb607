package port

import (
	"context"

	"github.com/rl1809/merchant/internal/core/domain"
)

type CatalogRepository interface {
	// LoadProducts returns every product in catalog order
	LoadProducts(ctx context.Context) ([]domain.Product, error)
}
