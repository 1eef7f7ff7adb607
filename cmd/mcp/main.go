package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rl1809/merchant/internal/adapter/handler"
	"github.com/rl1809/merchant/internal/adapter/storage"
	"github.com/rl1809/merchant/internal/core/service"
	"github.com/rl1809/merchant/pkg/config"
	"github.com/rl1809/merchant/pkg/logger"
	"github.com/rl1809/merchant/pkg/shutdown"
)

const (
	serverName    = "merchant"
	serverVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "merchant-mcp",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
	})

	policy, err := service.ParseUnresolvedPolicy(cfg.OnUnresolvedItem)
	if err != nil {
		log.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	newID, err := service.ParseIDGenerator(cfg.OrderIDFormat)
	if err != nil {
		log.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	backends, err := storage.OpenBackends(ctx, cfg, log)
	if err != nil {
		log.Error("open order store", slog.Any("err", err))
		os.Exit(1)
	}
	defer backends.Close()
	if cfg.OrderStore == config.StoreFile && cfg.LockBackend == config.LockLocal {
		log.Warn("order log is only locked within this process; set LOCK_BACKEND=redis when another merchant process writes the same file",
			slog.String("orders", cfg.OrdersPath))
	}

	catalog := storage.NewJSONCatalog(cfg.CatalogPath)

	mcpHandler := handler.NewMCPHandler(
		service.NewCatalogService(catalog),
		service.NewOrderService(catalog, backends.Orders,
			service.WithUnresolvedPolicy(policy),
			service.WithIDGenerator(newID),
			service.WithLogger(log),
		),
		log,
	)

	s := server.NewMCPServer(serverName, serverVersion)
	mcpHandler.Register(s)

	log.Info("MCP server starting on stdio",
		slog.String("catalog", cfg.CatalogPath),
		slog.String("order_store", cfg.OrderStore),
		slog.String("lock_backend", cfg.LockBackend),
	)
	if err := server.ServeStdio(s); err != nil {
		log.Error("MCP server error", slog.Any("err", err))
	}
}
