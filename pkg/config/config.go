package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreFile  = "file"
	StoreMySQL = "mysql"

	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	HTTPPort int `yaml:"http_port"`
	GRPCPort int `yaml:"grpc_port"`

	CatalogPath string `yaml:"catalog_path"`
	OrdersPath  string `yaml:"orders_path"`

	OrderStore string `yaml:"order_store"`
	MySQLDSN   string `yaml:"mysql_dsn"`

	LockBackend string `yaml:"lock_backend"`
	RedisAddr   string `yaml:"redis_addr"`
	// LockTTL bounds how long a Redis lock survives its holder. A rewrite of
	// the order log that takes longer lets the next writer in.
	LockTTL time.Duration `yaml:"lock_ttl"`

	OnUnresolvedItem string `yaml:"on_unresolved_item"`
	OrderIDFormat    string `yaml:"order_id_format"`
}

func Defaults() Config {
	return Config{
		AppEnv:           "dev",
		LogLevel:         "info",
		HTTPPort:         8080,
		GRPCPort:         50051,
		CatalogPath:      "shared-data/day9_catalog.json",
		OrdersPath:       "shared-data/day9_orders.json",
		OrderStore:       StoreFile,
		MySQLDSN:         "root:root@tcp(localhost:3306)/merchant?parseTime=true",
		LockBackend:      LockLocal,
		RedisAddr:        "localhost:6379",
		LockTTL:          10 * time.Second,
		OnUnresolvedItem: "skip",
		OrderIDFormat:    "uuid",
	}
}

// Load starts from Defaults, applies the YAML file named by MERCHANT_CONFIG
// when set, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("MERCHANT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	var env envReader
	cfg.HTTPPort = env.getInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = env.getInt("GRPC_PORT", cfg.GRPCPort)
	cfg.CatalogPath = getEnv("CATALOG_PATH", cfg.CatalogPath)
	cfg.OrdersPath = getEnv("ORDERS_PATH", cfg.OrdersPath)
	cfg.OrderStore = getEnv("ORDER_STORE", cfg.OrderStore)
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.LockBackend = getEnv("LOCK_BACKEND", cfg.LockBackend)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.LockTTL = env.getDuration("LOCK_TTL", cfg.LockTTL)
	cfg.OnUnresolvedItem = getEnv("ON_UNRESOLVED_ITEM", cfg.OnUnresolvedItem)
	cfg.OrderIDFormat = getEnv("ORDER_ID_FORMAT", cfg.OrderIDFormat)

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port %d out of range", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port %d out of range", c.GRPCPort)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("lock_ttl must be positive, got %s", c.LockTTL)
	}
	switch c.OrderStore {
	case StoreFile, StoreMySQL:
	default:
		return fmt.Errorf("unknown order_store %q", c.OrderStore)
	}
	switch c.LockBackend {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("unknown lock_backend %q", c.LockBackend)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envReader collects parse failures so a typo in a numeric variable is
// reported instead of silently replaced by the default.
type envReader struct {
	errs []error
}

func (r *envReader) getInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}

	return n
}

func (r *envReader) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}

	return d
}
