package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/merchant/pkg/config"
)

func TestOpenBackends_FileStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.OrdersPath = filepath.Join(t.TempDir(), "orders.json")

	b, err := OpenBackends(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &LocalLocker{}, b.Locker)
	store, ok := b.Orders.(*JSONOrderStore)
	require.True(t, ok)
	assert.Same(t, b.Locker, store.locker, "the store writes under the configured locker")

	require.NoError(t, b.Orders.AppendOrder(context.Background(), testOrder("order-1")))
	orders, err := b.Orders.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOpenBackends_RedisLocker(t *testing.T) {
	client := getRedisClient(t)
	client.Close()

	cfg := config.Defaults()
	cfg.OrdersPath = filepath.Join(t.TempDir(), "orders.json")
	cfg.LockBackend = config.LockRedis
	cfg.LockTTL = 3 * time.Second
	if addr := client.Options().Addr; addr != "" {
		cfg.RedisAddr = addr
	}

	b, err := OpenBackends(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	locker, ok := b.Locker.(*RedisAdapter)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, locker.ttl)
	assert.Same(t, b.Locker, b.Orders.(*JSONOrderStore).locker)
}

func TestOpenBackends_Errors(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.OrderStore = "s3"
		_, err := OpenBackends(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unknown lock backend", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.LockBackend = "etcd"
		_, err := OpenBackends(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unreachable mysql", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.OrderStore = config.StoreMySQL
		cfg.MySQLDSN = "root:root@tcp(127.0.0.1:1)/merchant"

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := OpenBackends(ctx, cfg, nil)
		assert.ErrorContains(t, err, "ping mysql")
	})
}
