package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/merchant/internal/core/domain"
)

const testCatalogJSON = `[
  {"id": 1, "name": "Red Shirt", "price": 500, "category": "apparel", "color": "red"},
  {"id": 2, "name": "Blue Mug", "price": 200, "category": "kitchen", "color": "blue"}
]`

func testOrder(id string) domain.Order {
	return domain.Order{
		ID: id,
		Items: []domain.OrderItem{
			{ID: domain.NumericID(1), Name: "Red Shirt", Price: domain.AmountFromInt(500), Quantity: 2},
		},
		Total:     domain.AmountFromInt(1000),
		Currency:  domain.CurrencyINR,
		CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestJSONCatalog_LoadProducts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))

	products, err := NewJSONCatalog(path).LoadProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Red Shirt", products[0].Name)
	assert.Equal(t, domain.NumericID(2), products[1].ID)
}

func TestJSONCatalog_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewJSONCatalog(filepath.Join(dir, "nope.json")).LoadProducts(context.Background())
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1,`), 0o644))

		_, err := NewJSONCatalog(path).LoadProducts(context.Background())
		var syntaxErr *json.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
	})
}

func TestJSONOrderStore_AppendCreatesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store := NewJSONOrderStore(path, nil)

	require.NoError(t, store.AppendOrder(context.Background(), testOrder("order-1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "order-1",
		"items": [{"id": 1, "name": "Red Shirt", "price": 500, "quantity": 2}],
		"total": 1000,
		"currency": "INR",
		"created_at": "2024-05-01T10:30:00Z"
	}]`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestJSONOrderStore_AppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store := NewJSONOrderStore(path, NewLocalLocker())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.AppendOrder(ctx, testOrder(fmt.Sprintf("order-%d", i))))
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i, o := range orders {
		assert.Equal(t, fmt.Sprintf("order-%d", i+1), o.ID)
		assert.Equal(t, "1000", o.Total.String())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONOrderStore_KeepsForeignRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "legacy", "note": "imported"}]`), 0o644))

	store := NewJSONOrderStore(path, nil)
	require.NoError(t, store.AppendOrder(context.Background(), testOrder("order-1")))

	var records []map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "imported", records[0]["note"])
	assert.Equal(t, "order-1", records[1]["id"])
}

func TestJSONOrderStore_EmptyLog(t *testing.T) {
	dir := t.TempDir()

	orders, err := NewJSONOrderStore(filepath.Join(dir, "missing.json"), nil).ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)

	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	orders, err = NewJSONOrderStore(path, nil).ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestJSONOrderStore_RejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	original := []byte(`{"orders": []}`)
	require.NoError(t, os.WriteFile(path, original, 0o644))
	store := NewJSONOrderStore(path, nil)

	err := store.AppendOrder(context.Background(), testOrder("order-1"))
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = store.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrNotArray)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data, "malformed log is left untouched")
}

func TestJSONOrderStore_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store := NewJSONOrderStore(path, NewLocalLocker())
	total := 30

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.AppendOrder(context.Background(), testOrder(fmt.Sprintf("order-%d", n))))
		}(i)
	}
	wg.Wait()

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, total, "no append is lost")
}

func TestJSONOrderStore_LockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	locker := NewLocalLocker()
	store := NewJSONOrderStore(path, locker)

	unlock, err := locker.Lock(context.Background(), orderLogLockKey(path))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = store.AppendOrder(ctx, testOrder("order-1"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestJSONOrderStore_SameFileSharesLock(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir("data", 0o755))

	locker := NewLocalLocker()
	storeA := NewJSONOrderStore("data/orders.json", locker)
	storeB := NewJSONOrderStore("./data/../data/orders.json", locker)
	assert.Equal(t, storeA.lockKey, storeB.lockKey)

	unlock, err := locker.Lock(context.Background(), storeA.lockKey)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = storeB.AppendOrder(ctx, testOrder("order-1"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
