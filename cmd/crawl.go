package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/clock/system"
	"github.com/pricewatch-it/pricewatch/internal/crawl"
	"github.com/pricewatch-it/pricewatch/internal/extract"
	"github.com/pricewatch-it/pricewatch/internal/fetch"
	"github.com/pricewatch-it/pricewatch/internal/id/uuid"
	"github.com/pricewatch-it/pricewatch/internal/persist"
	"github.com/pricewatch-it/pricewatch/internal/taxonomy"
	"github.com/pricewatch-it/pricewatch/internal/upsert"
)

func newCrawlCmd() *cobra.Command {
	var stores, cities []string
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl job per (store, city) pair",
		Long: `Fetches the catalog root page for every configured (store, city) pair,
discovers its subcategory listings, and ingests every product observation
found on them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, stores, cities)
		},
	}
	cmd.Flags().StringSliceVar(&stores, "stores", nil, "stores to crawl (overrides config)")
	cmd.Flags().StringSliceVar(&cities, "cities", nil, "cities to crawl (overrides config)")
	return cmd
}

func runCrawl(cmd *cobra.Command, stores, cities []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if len(stores) == 0 {
		stores = cfg.Crawl.Stores
	}
	if len(cities) == 0 {
		cities = cfg.Crawl.Cities
	}
	if len(stores) == 0 || len(cities) == 0 {
		return errors.New("no stores or cities configured; set crawl.stores and crawl.cities")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogStore, err := openCatalogStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = catalogStore.Close() }()

	events, stopEvents, err := newEventPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopEvents()

	clk := system.Clock{}
	engine := upsert.New(catalogStore, clk, logger)
	pool := persist.New(engine, persist.Config{Workers: cfg.Crawl.PersistConcurrency}, logger)
	defer pool.Close()

	classifier := taxonomy.NewClassifier(taxonomy.Default())
	extractor := extract.New(classifier, extract.Config{
		MinPrice:      cfg.Extract.MinPrice,
		SentinelPrice: cfg.Extract.SentinelPrice,
	}, logger)
	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	})

	orchestrator := crawl.New(
		fetcher,
		extractor,
		pool,
		events,
		clk,
		uuid.NewGenerator(),
		crawl.Config{
			BaseURL:          cfg.Crawl.BaseURL,
			FetchConcurrency: cfg.Crawl.FetchConcurrency,
			Delay:            cfg.Delay(),
			SummaryTopic:     cfg.PubSub.TopicName,
		},
		logger,
	)

	var targets []crawl.Target
	for _, store := range stores {
		for _, city := range cities {
			targets = append(targets, crawl.Target{Store: store, City: city})
		}
	}

	summaries := orchestrator.RunAll(ctx, targets)

	var failed int
	for _, s := range summaries {
		if s.State == crawl.StateFailed {
			failed++
		}
	}
	logger.Info("crawl finished",
		zap.Int("jobs", len(summaries)),
		zap.Int("failed_jobs", failed),
	)
	if failed == len(summaries) {
		return fmt.Errorf("all %d crawl jobs failed", failed)
	}
	return nil
}
