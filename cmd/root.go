// Package cmd defines and implements the CLI commands for the pricewatch
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/config"
	"github.com/pricewatch-it/pricewatch/internal/logging"
	"github.com/pricewatch-it/pricewatch/internal/publisher"
	pubsubpublisher "github.com/pricewatch-it/pricewatch/internal/publisher/pubsub"
	"github.com/pricewatch-it/pricewatch/internal/store/memory"
	"github.com/pricewatch-it/pricewatch/internal/store/postgres"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricewatch",
		Short: "Grocery price ingestion for the Italian market.",
		Long: `pricewatch crawls retailer catalog pages, extracts product and price
observations, and reconciles them with receipt-sourced observations into a
canonical catalog of stores, products, and prices.`,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newCrawlCmd(), newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// catalogStore is what both commands need from a backing store.
type catalogStore interface {
	catalog.Provider
	catalog.Reader
}

func openCatalogStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (catalogStore, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("db.dsn not configured, using in-memory catalog store")
		return memory.New(), nil
	}
	store, err := postgres.New(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// newEventPublisher returns a publisher for job summaries, or nil when
// Pub/Sub is not configured. The cleanup func is always safe to call.
func newEventPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (publisher.Publisher, func(), error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		logger.Info("pubsub not configured, job summaries stay local")
		return nil, func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, func() {}, fmt.Errorf("create pubsub client: %w", err)
	}
	pub := client.Publisher(cfg.PubSub.TopicName)
	cleanup := func() {
		pub.Stop()
		if err := client.Close(); err != nil {
			logger.Warn("closing pubsub client failed", zap.Error(err))
		}
	}
	return pubsubpublisher.New(pub), cleanup, nil
}
