package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/merchant/internal/adapter/storage"
	"github.com/rl1809/merchant/internal/core/service"
)

const testCatalogJSON = `[
  {"id": 1, "name": "Red Shirt", "price": 500, "category": "apparel", "color": "red"},
  {"id": 2, "name": "Blue Mug", "price": 200, "category": "kitchen", "color": "blue"}
]`

type testEnv struct {
	catalog    *service.CatalogService
	orders     *service.OrderService
	ordersPath string
}

func setupTestEnv(t *testing.T, opts ...service.OrderOption) *testEnv {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	ordersPath := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogJSON), 0o644))

	catalog := storage.NewJSONCatalog(catalogPath)
	orders := storage.NewJSONOrderStore(ordersPath, storage.NewLocalLocker())

	return &testEnv{
		catalog:    service.NewCatalogService(catalog),
		orders:     service.NewOrderService(catalog, orders, opts...),
		ordersPath: ordersPath,
	}
}
