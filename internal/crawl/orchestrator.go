// Package crawl runs one ingestion job per (store, city) pair: it discovers
// subcategory listing pages from the root catalog page, fetches them under a
// shared concurrency bound and throttle, extracts observations, and hands them
// to the persistence pool.
package crawl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/extract"
	"github.com/pricewatch-it/pricewatch/internal/persist"
	"github.com/pricewatch-it/pricewatch/internal/publisher"
)

// State is the lifecycle phase of a crawl job.
type State string

const (
	StateDiscovering State = "discovering"
	StateFetching    State = "fetching"
	StateDraining    State = "draining"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Target identifies one crawl job: a retailer catalog at one city.
type Target struct {
	Store string
	City  string
}

// Summary is the final accounting of one crawl job. It is published after the
// job settles.
type Summary struct {
	JobID        string    `json:"job_id"`
	Store        string    `json:"store"`
	City         string    `json:"city"`
	State        State     `json:"state"`
	Extracted    int       `json:"extracted"`
	Persisted    int       `json:"persisted"`
	SkippedStale int       `json:"skipped_stale"`
	Failed       int       `json:"failed"`
	FailedURLs   []string  `json:"failed_urls,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Fetcher retrieves a single page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Submitter accepts persistence tasks. Implemented by persist.Pool.
type Submitter interface {
	Submit(ctx context.Context, task persist.Task) error
}

// IDGenerator mints crawl job identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Config holds the crawl knobs. Both bounds apply per job.
type Config struct {
	BaseURL          string
	FetchConcurrency int
	Delay            time.Duration
	SummaryTopic     string
}

// Orchestrator drives crawl jobs end to end.
type Orchestrator struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	pool      Submitter
	events    publisher.Publisher
	clock     catalog.Clock
	ids       IDGenerator
	logger    *zap.Logger
	cfg       Config
}

// New builds an Orchestrator.
func New(
	fetcher Fetcher,
	extractor *extract.Extractor,
	pool Submitter,
	events publisher.Publisher,
	clock catalog.Clock,
	ids IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 5
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.SummaryTopic == "" {
		cfg.SummaryTopic = "pricewatch-jobs"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		pool:      pool,
		events:    events,
		clock:     clock,
		ids:       ids,
		logger:    logger,
		cfg:       cfg,
	}
}

// RootURL builds the root catalog listing URL for a target. The path embeds
// the lowercased city and a slug of the store plus the city's first three
// letters, matching the storefront's URL scheme.
func (o *Orchestrator) RootURL(target Target) string {
	city := strings.ToLower(target.City)
	store := strings.ToLower(target.Store)
	return fmt.Sprintf("%s/it/it/%s/%s-%s/", o.cfg.BaseURL, city, store, city[:min(3, len(city))])
}

// Run executes one crawl job and returns its summary. A root fetch failure
// fails the whole job; individual subcategory failures only mark their URL.
// The returned error is non-nil only for job-level failures.
func (o *Orchestrator) Run(ctx context.Context, target Target) (Summary, error) {
	jobID, err := o.ids.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("generate job id: %w", err)
	}
	summary := Summary{
		JobID:     jobID,
		Store:     target.Store,
		City:      target.City,
		State:     StateDiscovering,
		StartedAt: o.clock.Now(),
	}
	log := o.logger.With(
		zap.String("job_id", jobID),
		zap.String("store", target.Store),
		zap.String("city", target.City),
	)

	rootURL := o.RootURL(target)
	log.Info("crawl job starting", zap.String("root_url", rootURL))

	root, err := o.fetcher.Fetch(ctx, rootURL)
	if err != nil {
		TotalFetchErrors.Inc()
		TotalJobsFailed.Inc()
		summary.State = StateFailed
		summary.FailedURLs = []string{rootURL}
		summary.FinishedAt = o.clock.Now()
		o.publish(ctx, log, summary)
		return summary, fmt.Errorf("fetch root listing: %w", err)
	}
	TotalPagesFetched.Inc()

	links, err := o.extractor.SubcategoryLinks(root, o.cfg.BaseURL)
	if err != nil {
		TotalJobsFailed.Inc()
		summary.State = StateFailed
		summary.FinishedAt = o.clock.Now()
		o.publish(ctx, log, summary)
		return summary, fmt.Errorf("discover subcategories: %w", err)
	}
	log.Info("discovered subcategory pages", zap.Int("count", len(links)))

	summary.State = StateFetching
	observedAt := o.clock.Now()
	limiter := rate.NewLimiter(rate.Every(o.cfg.Delay), 1)

	var (
		mu      sync.Mutex
		pending sync.WaitGroup
	)
	settle := func(res catalog.UpsertResult, err error) {
		defer pending.Done()
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			summary.Failed++
		case res.SkippedReason == catalog.SkipReasonStale:
			summary.SkippedStale++
		default:
			summary.Persisted++
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.cfg.FetchConcurrency)
	for _, link := range links {
		group.Go(func() error {
			if err := limiter.Wait(groupCtx); err != nil {
				return err
			}
			o.crawlSubcategory(groupCtx, log, link, target, observedAt, &mu, &summary, &pending, settle)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		// Cancellation. Accepted tasks still settle below.
		log.Warn("crawl job interrupted", zap.Error(err))
	}

	mu.Lock()
	summary.State = StateDraining
	mu.Unlock()
	pending.Wait()

	mu.Lock()
	summary.State = StateDone
	summary.FinishedAt = o.clock.Now()
	out := summary
	mu.Unlock()

	TotalJobsCompleted.Inc()
	log.Info("crawl job done",
		zap.Int("extracted", out.Extracted),
		zap.Int("persisted", out.Persisted),
		zap.Int("skipped_stale", out.SkippedStale),
		zap.Int("failed", out.Failed),
		zap.Strings("failed_urls", out.FailedURLs),
	)
	o.publish(ctx, log, out)
	return out, nil
}

// crawlSubcategory fetches and extracts one listing page. Failures are
// recorded on the summary and never abort sibling pages.
func (o *Orchestrator) crawlSubcategory(
	ctx context.Context,
	log *zap.Logger,
	link string,
	target Target,
	observedAt time.Time,
	mu *sync.Mutex,
	summary *Summary,
	pending *sync.WaitGroup,
	settle func(catalog.UpsertResult, error),
) {
	body, err := o.fetcher.Fetch(ctx, link)
	if err != nil {
		TotalFetchErrors.Inc()
		log.Warn("subcategory fetch failed", zap.String("url", link), zap.Error(err))
		mu.Lock()
		summary.FailedURLs = append(summary.FailedURLs, link)
		mu.Unlock()
		return
	}
	TotalPagesFetched.Inc()

	observations, err := o.extractor.Listing(body, extract.PageContext{
		Store:      target.Store,
		City:       target.City,
		Link:       link,
		ObservedAt: observedAt,
	})
	if err != nil {
		log.Warn("subcategory parse failed", zap.String("url", link), zap.Error(err))
		mu.Lock()
		summary.FailedURLs = append(summary.FailedURLs, link)
		mu.Unlock()
		return
	}

	for _, obs := range observations {
		if !obs.Price.Valid {
			log.Debug("dropping observation without price",
				zap.String("product", obs.Product),
				zap.String("url", link),
			)
			continue
		}
		TotalObservationsExtracted.Inc()
		mu.Lock()
		summary.Extracted++
		mu.Unlock()

		pending.Add(1)
		task := persist.Task{Observation: obs, Policy: catalog.PolicyOverwrite, Done: settle}
		if err := o.pool.Submit(ctx, task); err != nil {
			pending.Done()
			log.Warn("persistence submit rejected", zap.String("product", obs.Product), zap.Error(err))
			mu.Lock()
			summary.Failed++
			mu.Unlock()
		}
	}
}

// RunAll runs one independent job per target concurrently and returns the
// summaries in target order.
func (o *Orchestrator) RunAll(ctx context.Context, targets []Target) []Summary {
	summaries := make([]Summary, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := o.Run(ctx, target)
			if err != nil {
				o.logger.Error("crawl job failed",
					zap.String("store", target.Store),
					zap.String("city", target.City),
					zap.Error(err),
				)
			}
			summaries[i] = summary
		}()
	}
	wg.Wait()
	return summaries
}

func (o *Orchestrator) publish(ctx context.Context, log *zap.Logger, summary Summary) {
	if o.events == nil {
		return
	}
	if _, err := o.events.Publish(ctx, o.cfg.SummaryTopic, summary); err != nil {
		log.Warn("publishing job summary failed", zap.Error(err))
	}
}
