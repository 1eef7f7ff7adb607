package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rl1809/merchant/internal/core/domain"
)

// JSONCatalog reads products from a JSON array file. The file is read on
// every call so catalog edits are picked up without a restart.
type JSONCatalog struct {
	path string
}

func NewJSONCatalog(path string) *JSONCatalog {
	return &JSONCatalog{path: path}
}

func (c *JSONCatalog) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", c.path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", c.path, err)
	}

	return products, nil
}
