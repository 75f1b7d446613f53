package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/api"
	"github.com/pricewatch-it/pricewatch/internal/clock/system"
	"github.com/pricewatch-it/pricewatch/internal/persist"
	"github.com/pricewatch-it/pricewatch/internal/upsert"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API server",
		Long: `Serves the receipt-observation inbound endpoint and the read-only
catalog queries, plus health probes and Prometheus metrics.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogStore, err := openCatalogStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = catalogStore.Close() }()

	clk := system.Clock{}
	engine := upsert.New(catalogStore, clk, logger)
	pool := persist.New(engine, persist.Config{Workers: cfg.Crawl.PersistConcurrency}, logger)
	defer pool.Close()

	server := api.NewServer(catalogStore, pool, clk, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
