package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/merchant/internal/adapter/handler"
	"github.com/rl1809/merchant/internal/adapter/storage"
	"github.com/rl1809/merchant/internal/core/service"
	"github.com/rl1809/merchant/pkg/config"
	"github.com/rl1809/merchant/pkg/logger"
	"github.com/rl1809/merchant/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "merchant",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	backends, err := storage.OpenBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("close connections", slog.Any("err", err))
		}
		log.Info("connections closed")
	}()

	// Initialize services
	policy, err := service.ParseUnresolvedPolicy(cfg.OnUnresolvedItem)
	if err != nil {
		return err
	}
	newID, err := service.ParseIDGenerator(cfg.OrderIDFormat)
	if err != nil {
		return err
	}

	catalog := storage.NewJSONCatalog(cfg.CatalogPath)
	catalogService := service.NewCatalogService(catalog)
	orderService := service.NewOrderService(catalog, backends.Orders,
		service.WithUnresolvedPolicy(policy),
		service.WithIDGenerator(newID),
		service.WithLogger(log),
	)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterMerchantServiceServer(grpcServer, handler.NewGRPCHandler(catalogService, orderService, log))

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(catalogService, orderService, log)
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		log.Info("HTTP server listening", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown error", slog.Any("err", err))
		}
		log.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}
