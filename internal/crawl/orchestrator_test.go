package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/crawl"
	"github.com/pricewatch-it/pricewatch/internal/extract"
	"github.com/pricewatch-it/pricewatch/internal/persist"
	"github.com/pricewatch-it/pricewatch/internal/publisher"
	pubmemory "github.com/pricewatch-it/pricewatch/internal/publisher/memory"
	"github.com/pricewatch-it/pricewatch/internal/store/memory"
	"github.com/pricewatch-it/pricewatch/internal/taxonomy"
	"github.com/pricewatch-it/pricewatch/internal/upsert"
)

const baseURL = "https://shop.example"

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeIDs struct{ n int }

func (g *fakeIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("job-%04d", g.n), nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string][]byte
	fails map[string]error
	seen  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.seen = append(f.seen, url)
	f.mu.Unlock()
	if err, ok := f.fails[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return body, nil
}

// syncSubmitter settles every task inline with a canned result per product.
type syncSubmitter struct {
	mu      sync.Mutex
	tasks   []persist.Task
	results map[string]catalog.UpsertResult
	errorOn string
}

func (s *syncSubmitter) Submit(_ context.Context, task persist.Task) error {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	if task.Done != nil {
		if task.Observation.Product == s.errorOn {
			task.Done(catalog.UpsertResult{}, errors.New("db down"))
			return nil
		}
		res, ok := s.results[task.Observation.Product]
		if !ok {
			res = catalog.UpsertResult{Updated: true}
		}
		task.Done(res, nil)
	}
	return nil
}

func rootPage(links ...string) []byte {
	var b []byte
	b = append(b, "<html><body>"...)
	for _, link := range links {
		b = append(b, fmt.Sprintf(
			`<div class="carousel__content__element"><a href=%q>x</a></div>`, link)...)
	}
	b = append(b, "</body></html>"...)
	return b
}

func listingPage(title string, products map[string]string) []byte {
	page := `<html><body><div class="grid"><h2 class="grid__title">` + title + `</h2>`
	for name, price := range products {
		page += fmt.Sprintf(
			`<div class="tile"><span class="tile__description">%s</span>`+
				`<span class="product-price__effective">%s</span></div>`, name, price)
	}
	return []byte(page + `</div></body></html>`)
}

func newOrchestrator(
	t *testing.T,
	fetcher crawl.Fetcher,
	pool crawl.Submitter,
	events *pubmemory.Publisher,
) *crawl.Orchestrator {
	t.Helper()
	classifier := taxonomy.NewClassifier(taxonomy.Default())
	extractor := extract.New(classifier, extract.DefaultConfig(), zap.NewNop())
	// Avoid wrapping a nil *pubmemory.Publisher in a non-nil interface value.
	var pub publisher.Publisher
	if events != nil {
		pub = events
	}
	return crawl.New(
		fetcher,
		extractor,
		pool,
		pub,
		fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		&fakeIDs{},
		crawl.Config{BaseURL: baseURL, FetchConcurrency: 2, Delay: time.Millisecond},
		zap.NewNop(),
	)
}

func TestRootURL(t *testing.T) {
	o := newOrchestrator(t, &fakeFetcher{}, &syncSubmitter{}, nil)
	url := o.RootURL(crawl.Target{Store: "Carrefour", City: "Milano"})
	require.Equal(t, baseURL+"/it/it/milano/carrefour-mil/", url)
}

func TestRunHappyPathWithOneFailingSubcategory(t *testing.T) {
	rootURL := baseURL + "/it/it/milano/carrefour-mil/"
	fetcher := &fakeFetcher{
		pages: map[string][]byte{
			rootURL: rootPage("/sub/latte", baseURL+"/sub/birre", "/sub/broken"),
			baseURL + "/sub/latte": listingPage("Latticini e uova", map[string]string{
				"Latte Intero - 1000": "1,49 €",
				"Uova Fresche":        "2,99 €",
			}),
			baseURL + "/sub/birre": listingPage("Birre", map[string]string{
				"Birra Bionda": "0,99 €",
			}),
		},
		fails: map[string]error{
			baseURL + "/sub/broken": errors.New("status 403"),
		},
	}
	pool := &syncSubmitter{results: map[string]catalog.UpsertResult{
		"Birra Bionda": {SkippedReason: catalog.SkipReasonStale},
	}}
	events := pubmemory.New()

	o := newOrchestrator(t, fetcher, pool, events)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Carrefour", City: "Milano"})
	require.NoError(t, err)

	require.Equal(t, crawl.StateDone, summary.State)
	require.Equal(t, 3, summary.Extracted)
	require.Equal(t, 2, summary.Persisted)
	require.Equal(t, 1, summary.SkippedStale)
	require.Zero(t, summary.Failed)
	require.Equal(t, []string{baseURL + "/sub/broken"}, summary.FailedURLs)
	require.Equal(t, "job-0001", summary.JobID)

	// Every submitted task carries the crawl policy.
	for _, task := range pool.tasks {
		require.Equal(t, catalog.PolicyOverwrite, task.Policy)
		require.Equal(t, "Carrefour", task.Observation.StoreName)
		require.Equal(t, "Milano", task.Observation.City)
	}

	messages := events.Messages()
	require.Len(t, messages, 1)
	published, ok := messages[0].Payload.(crawl.Summary)
	require.True(t, ok)
	require.Equal(t, summary.JobID, published.JobID)
}

func TestRunCountsPersistenceFailures(t *testing.T) {
	rootURL := baseURL + "/it/it/milano/carrefour-mil/"
	fetcher := &fakeFetcher{pages: map[string][]byte{
		rootURL: rootPage("/sub/pane"),
		baseURL + "/sub/pane": listingPage("Pane", map[string]string{
			"Pane Integrale": "1,20 €",
		}),
	}}
	pool := &syncSubmitter{errorOn: "Pane Integrale"}

	o := newOrchestrator(t, fetcher, pool, nil)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Carrefour", City: "Milano"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Extracted)
	require.Equal(t, 1, summary.Failed)
	require.Zero(t, summary.Persisted)
}

func TestRunRootFetchFailureFailsJob(t *testing.T) {
	fetcher := &fakeFetcher{fails: map[string]error{
		baseURL + "/it/it/milano/carrefour-mil/": errors.New("status 500"),
	}}
	events := pubmemory.New()

	o := newOrchestrator(t, fetcher, &syncSubmitter{}, events)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Carrefour", City: "Milano"})
	require.Error(t, err)
	require.Equal(t, crawl.StateFailed, summary.State)
	require.Equal(t, []string{baseURL + "/it/it/milano/carrefour-mil/"}, summary.FailedURLs)
	require.Len(t, events.Messages(), 1)
}

func TestRunZeroLinksIsEmptyDoneJob(t *testing.T) {
	rootURL := baseURL + "/it/it/roma/conad-rom/"
	fetcher := &fakeFetcher{pages: map[string][]byte{
		rootURL: []byte("<html><body><p>nothing here</p></body></html>"),
	}}

	o := newOrchestrator(t, fetcher, &syncSubmitter{}, nil)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Conad", City: "Roma"})
	require.NoError(t, err)
	require.Equal(t, crawl.StateDone, summary.State)
	require.Zero(t, summary.Extracted)
	require.Empty(t, summary.FailedURLs)
}

func TestRunDropsObservationsWithoutPrice(t *testing.T) {
	rootURL := baseURL + "/it/it/milano/carrefour-mil/"
	fetcher := &fakeFetcher{pages: map[string][]byte{
		rootURL: rootPage("/sub/misc"),
		baseURL + "/sub/misc": []byte(`<html><body><div class="grid">` +
			`<h2 class="grid__title">Snacks</h2>` +
			`<div class="tile"><span class="tile__description">Patatine Classiche</span></div>` +
			`<div class="tile"><span class="tile__description">Grissini</span>` +
			`<span class="product-price__effective">1,10 €</span></div>` +
			`</div></body></html>`),
	}}
	pool := &syncSubmitter{}

	o := newOrchestrator(t, fetcher, pool, nil)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Carrefour", City: "Milano"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Extracted)
	require.Len(t, pool.tasks, 1)
	require.Equal(t, "Grissini", pool.tasks[0].Observation.Product)
}

func TestRunAllFansOutPerTarget(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		baseURL + "/it/it/milano/carrefour-mil/": rootPage(),
		baseURL + "/it/it/roma/conad-rom/":       rootPage(),
	}}

	o := newOrchestrator(t, fetcher, &syncSubmitter{}, nil)
	summaries := o.RunAll(context.Background(), []crawl.Target{
		{Store: "Carrefour", City: "Milano"},
		{Store: "Conad", City: "Roma"},
	})
	require.Len(t, summaries, 2)
	require.Equal(t, "Carrefour", summaries[0].Store)
	require.Equal(t, "Conad", summaries[1].Store)
	for _, s := range summaries {
		require.Equal(t, crawl.StateDone, s.State)
	}
}

// End-to-end through the real pool, engine, and in-memory catalog.
func TestRunThroughPersistencePipeline(t *testing.T) {
	rootURL := baseURL + "/it/it/milano/carrefour-mil/"
	fetcher := &fakeFetcher{pages: map[string][]byte{
		rootURL: rootPage("/sub/latte"),
		baseURL + "/sub/latte": listingPage("Latticini e uova", map[string]string{
			"Latte Intero - 1000": "1,49 €",
			"Uova Fresche":        "2,99 €",
		}),
	}}

	catalogStore := memory.New()
	engine := upsert.New(catalogStore, fakeClock{now: time.Now().UTC()}, zap.NewNop())
	pool := persist.New(engine, persist.Config{Workers: 2}, zap.NewNop())

	o := newOrchestrator(t, fetcher, pool, nil)
	summary, err := o.Run(context.Background(), crawl.Target{Store: "Carrefour", City: "Milano"})
	require.NoError(t, err)
	pool.Close()

	require.Equal(t, 2, summary.Extracted)
	require.Equal(t, 2, summary.Persisted)
	require.Equal(t, 2, catalogStore.PriceCount())
}
