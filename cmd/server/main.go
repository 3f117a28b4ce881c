package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"twigascan/internal/platform/config"
	"twigascan/internal/platform/httpserver"
	"twigascan/internal/platform/logger"
	platformmetrics "twigascan/internal/platform/metrics"
	scanmetrics "twigascan/internal/scan/metrics"
	"twigascan/internal/scan/service"
)

// main wires infrastructure into the scan service, exposes the HTTP router,
// and keeps the server lifecycle small. Business logic lives in internal/scan.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := platformmetrics.NewRegistry()
	m := scanmetrics.New(reg)

	infra, err := buildInfra(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := service.New(infra.verifier, infra.store,
		service.WithLocker(infra.locker),
		service.WithPublisher(infra.publisher),
		service.WithProviderCatalog(infra.registry),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithScanTimeout(cfg.ScanTimeout),
	)

	r := newRouter(routerDeps{
		service:     svc,
		logger:      log,
		metrics:     m,
		registry:    reg,
		health:      infra,
		scanTimeout: cfg.ScanTimeout,
	})

	srv := httpserver.New(cfg.Addr, r, cfg.ScanTimeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting twigascan",
			"addr", cfg.Addr,
			"store", infra.storeKind,
			"locker", infra.lockerKind,
			"events", infra.publisherKind,
			"providers", infra.registry.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
