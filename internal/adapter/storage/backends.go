package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/merchant/internal/port"
	"github.com/rl1809/merchant/pkg/config"
)

// Backends is the locker and order store selected by the configuration.
// Every binary writing orders opens them here so they agree on where the
// log lives and how writers are serialised.
type Backends struct {
	Locker  port.Locker
	Orders  port.OrderRepository
	closers []func() error
}

func OpenBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*Backends, error) {
	if log == nil {
		log = slog.Default()
	}
	b := &Backends{}

	// Initialize locker
	switch cfg.LockBackend {
	case config.LockLocal, "":
		b.Locker = NewLocalLocker()
	case config.LockRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, rdb.Close)
		adapter := NewRedisAdapter(rdb)
		if cfg.LockTTL > 0 {
			adapter.WithTTL(cfg.LockTTL)
		}
		b.Locker = adapter
		log.Info("connected to redis", slog.String("addr", cfg.RedisAddr))
	default:
		return nil, fmt.Errorf("unknown lock_backend %q", cfg.LockBackend)
	}

	// Initialize order store
	switch cfg.OrderStore {
	case config.StoreFile, "":
		b.Orders = NewJSONOrderStore(cfg.OrdersPath, b.Locker)
	case config.StoreMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		adapter := NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Orders = adapter
		log.Info("connected to mysql")
	default:
		b.Close()
		return nil, fmt.Errorf("unknown order_store %q", cfg.OrderStore)
	}

	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
