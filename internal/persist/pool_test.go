package persist_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pricewatch-it/pricewatch/internal/catalog"
	"github.com/pricewatch-it/pricewatch/internal/persist"
)

type fakeUpserter struct {
	mu        sync.Mutex
	calls     []catalog.Observation
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	delay     time.Duration
	failOn    string
	staleOn   string
	unblockCh chan struct{}
}

func (f *fakeUpserter) Upsert(_ context.Context, obs catalog.Observation, _ catalog.ConflictPolicy) (catalog.UpsertResult, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.unblockCh != nil {
		<-f.unblockCh
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls = append(f.calls, obs)
	f.mu.Unlock()

	if obs.Product == f.failOn {
		return catalog.UpsertResult{}, errors.New("upsert exploded")
	}
	if obs.Product == f.staleOn {
		return catalog.UpsertResult{SkippedReason: catalog.SkipReasonStale}, nil
	}
	return catalog.UpsertResult{Updated: true}, nil
}

func (f *fakeUpserter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func observation(product string) catalog.Observation {
	return catalog.Observation{
		StoreName: "Carrefour",
		City:      "Milano",
		Product:   product,
		Price:     catalog.Price{Amount: 1.99, Valid: true},
	}
}

func TestPoolProcessesAllTasks(t *testing.T) {
	engine := &fakeUpserter{}
	pool := persist.New(engine, persist.Config{Workers: 3}, zap.NewNop())

	var done atomic.Int32
	for i := 0; i < 20; i++ {
		err := pool.Submit(context.Background(), persist.Task{
			Observation: observation("Latte Intero"),
			Policy:      catalog.PolicyOverwrite,
			Done:        func(catalog.UpsertResult, error) { done.Add(1) },
		})
		require.NoError(t, err)
	}
	pool.Close()

	require.Equal(t, 20, engine.callCount())
	require.Equal(t, int32(20), done.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	engine := &fakeUpserter{delay: 10 * time.Millisecond}
	pool := persist.New(engine, persist.Config{Workers: 2}, zap.NewNop())

	for i := 0; i < 12; i++ {
		require.NoError(t, pool.Submit(context.Background(), persist.Task{
			Observation: observation("Pane Integrale"),
			Policy:      catalog.PolicyOverwrite,
		}))
	}
	pool.Close()

	require.LessOrEqual(t, engine.maxSeen.Load(), int32(2))
	require.Equal(t, 12, engine.callCount())
}

func TestPoolReportsFailuresThroughCallback(t *testing.T) {
	engine := &fakeUpserter{failOn: "Broken", staleOn: "Stale"}
	pool := persist.New(engine, persist.Config{Workers: 1}, zap.NewNop())

	results := make(chan error, 3)
	skipped := make(chan string, 3)
	submit := func(product string) {
		require.NoError(t, pool.Submit(context.Background(), persist.Task{
			Observation: observation(product),
			Policy:      catalog.PolicyNewerWins,
			Done: func(res catalog.UpsertResult, err error) {
				results <- err
				skipped <- res.SkippedReason
			},
		}))
	}
	submit("Broken")
	submit("Stale")
	submit("Latte Intero")
	pool.Close()

	var failures, stale int
	for i := 0; i < 3; i++ {
		if err := <-results; err != nil {
			failures++
		}
		if reason := <-skipped; reason == catalog.SkipReasonStale {
			stale++
		}
	}
	require.Equal(t, 1, failures)
	require.Equal(t, 1, stale)
}

func TestPoolDrainsAcceptedTasksAfterCancel(t *testing.T) {
	engine := &fakeUpserter{unblockCh: make(chan struct{})}
	pool := persist.New(engine, persist.Config{Workers: 1, QueueDepth: 8}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(ctx, persist.Task{
			Observation: observation("Olio Extravergine"),
			Policy:      catalog.PolicyOverwrite,
		}))
	}

	// Cancel the submitting job while the worker is blocked mid-task.
	cancel()
	close(engine.unblockCh)
	pool.Close()

	require.Equal(t, 4, engine.callCount())
}

func TestPoolSubmitHonorsContextWhenQueueFull(t *testing.T) {
	engine := &fakeUpserter{unblockCh: make(chan struct{})}
	pool := persist.New(engine, persist.Config{Workers: 1, QueueDepth: 1}, zap.NewNop())
	defer pool.Close()
	defer close(engine.unblockCh)

	// First task occupies the worker, second fills the queue.
	require.NoError(t, pool.Submit(context.Background(), persist.Task{Observation: observation("A")}))
	require.Eventually(t, func() bool { return engine.inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, pool.Submit(context.Background(), persist.Task{Observation: observation("B")}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, persist.Task{Observation: observation("C")})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
