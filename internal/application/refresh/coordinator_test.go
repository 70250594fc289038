package refresh

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/casefolio/internal/domain/catalog"
	domain "github.com/turtacn/casefolio/internal/domain/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/database/redis"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

type fetchFunc func(ctx context.Context, name string) (json.RawMessage, error)

func (f fetchFunc) FetchRaw(ctx context.Context, name string) (json.RawMessage, error) {
	return f(ctx, name)
}

type recordingMerger struct {
	mu    sync.Mutex
	calls []map[string]int64
}

func (m *recordingMerger) MergePrices(_ context.Context, prices map[string]int64) domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, prices)
	return domain.MergePrices(domain.NewRecord(), prices)
}

func (m *recordingMerger) Calls() []map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]int64(nil), m.calls...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	results []*Result
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, res *Result) error {
	n.mu.Lock()
	n.results = append(n.results, res)
	n.mu.Unlock()
	return nil
}

func quoteJSON(median string) json.RawMessage {
	return json.RawMessage(`{"success":true,"lowest_price":"$1.00","median_price":"` + median + `","volume":"10"}`)
}

func testItems(names ...string) []catalog.Item {
	out := make([]catalog.Item, len(names))
	for i, n := range names {
		out[i] = catalog.Item{Name: n, Type: catalog.TypeCase}
	}
	return out
}

func newTestCoordinator(f fetchFunc, m PriceMerger, opts ...Option) *Coordinator {
	opts = append([]Option{WithInterval(time.Millisecond), WithRequestTimeout(time.Second)}, opts...)
	return NewCoordinator(f, m, logging.NewNopLogger(), opts...)
}

func waitRun(t *testing.T, run *Run) *Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := run.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestCoordinator_MergesMedianPrices(t *testing.T) {
	merger := &recordingMerger{}
	c := newTestCoordinator(func(_ context.Context, name string) (json.RawMessage, error) {
		switch name {
		case "A":
			return quoteJSON("$1.50"), nil
		case "B":
			return json.RawMessage(`{"success":false}`), nil
		case "C":
			return json.RawMessage(`{"success":true,"lowest_price":"$0.90"}`), nil
		default:
			return nil, errors.New(errors.ErrCodeUpstream, "Steam API returned 429")
		}
	}, merger)

	run, err := c.Start(context.Background(), testItems("A", "B", "C", "D"))
	require.NoError(t, err)
	res := waitRun(t, run)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Done)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.Cancelled)
	assert.Equal(t, map[string]int64{"A": 150}, res.Prices)
	require.Len(t, res.Items, 4)
	assert.Equal(t, "Steam API returned 429", res.Items[3].Error)
	assert.Len(t, res.Quotes(), 2)

	calls := merger.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]int64{"A": 150}, calls[0])
	assert.Equal(t, res, c.LastResult())
	assert.Nil(t, c.Current())
}

func TestCoordinator_NoPricesStillMerges(t *testing.T) {
	merger := &recordingMerger{}
	c := newTestCoordinator(func(context.Context, string) (json.RawMessage, error) {
		return json.RawMessage(`{"success":false}`), nil
	}, merger)

	run, err := c.Start(context.Background(), testItems("A"))
	require.NoError(t, err)
	waitRun(t, run)

	calls := merger.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0])
}

func TestCoordinator_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	c := newTestCoordinator(func(ctx context.Context, _ string) (json.RawMessage, error) {
		<-release
		return quoteJSON("$2.00"), nil
	}, &recordingMerger{})

	run, err := c.Start(context.Background(), testItems("A"))
	require.NoError(t, err)

	_, err = c.Start(context.Background(), testItems("B"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRefreshInProgress))

	close(release)
	waitRun(t, run)

	run2, err := c.Start(context.Background(), testItems("B"))
	require.NoError(t, err)
	assert.NotEqual(t, run.ID(), run2.ID())
	waitRun(t, run2)
}

func TestCoordinator_CancelKeepsPartialPrices(t *testing.T) {
	merger := &recordingMerger{}
	entered := make(chan struct{})
	c := newTestCoordinator(func(ctx context.Context, name string) (json.RawMessage, error) {
		if name == "A" {
			return quoteJSON("$3.25"), nil
		}
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}, merger)

	run, err := c.Start(context.Background(), testItems("A", "B", "C"))
	require.NoError(t, err)

	<-entered
	require.NoError(t, c.Cancel())
	res := waitRun(t, run)

	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.Done)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, map[string]int64{"A": 325}, res.Prices)
	require.Len(t, merger.Calls(), 1)
}

func TestCoordinator_CancelBeforeAnyPriceSkipsMerge(t *testing.T) {
	merger := &recordingMerger{}
	entered := make(chan struct{})
	c := newTestCoordinator(func(ctx context.Context, _ string) (json.RawMessage, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}, merger)

	run, err := c.Start(context.Background(), testItems("A", "B"))
	require.NoError(t, err)
	<-entered
	run.Cancel()
	res := waitRun(t, run)

	assert.True(t, res.Cancelled)
	assert.Empty(t, merger.Calls())
}

func TestCoordinator_CancelWhenIdle(t *testing.T) {
	c := newTestCoordinator(func(context.Context, string) (json.RawMessage, error) { return nil, nil }, &recordingMerger{})
	err := c.Cancel()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRefreshNotRunning))
}

func TestCoordinator_StatusDuringRun(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	c := newTestCoordinator(func(_ context.Context, name string) (json.RawMessage, error) {
		if name == "B" {
			entered <- struct{}{}
			<-release
		}
		return quoteJSON("$1.00"), nil
	}, &recordingMerger{})

	st := c.Status()
	assert.False(t, st.Running)
	assert.Nil(t, st.LastResult)

	run, err := c.Start(context.Background(), testItems("A", "B", "C", "D"))
	require.NoError(t, err)
	<-entered

	st = c.Status()
	assert.True(t, st.Running)
	assert.Equal(t, run.ID(), st.RunID)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.Done)
	assert.Equal(t, 25, st.Progress)
	assert.Equal(t, "B", st.Current)
	require.NotNil(t, st.StartedAt)

	close(release)
	waitRun(t, run)

	st = c.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, 4, st.LastResult.Done)
	require.NotNil(t, st.FinishedAt)
}

func TestCoordinator_EmptyItemsUsesCatalog(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	c := newTestCoordinator(func(_ context.Context, name string) (json.RawMessage, error) {
		mu.Lock()
		seen[name] = true
		mu.Unlock()
		return quoteJSON("$0.10"), nil
	}, &recordingMerger{})

	run, err := c.Start(context.Background(), nil)
	require.NoError(t, err)
	res := waitRun(t, run)

	assert.Equal(t, len(catalog.All()), res.Total)
	mu.Lock()
	defer mu.Unlock()
	for _, it := range catalog.All() {
		assert.True(t, seen[it.Name], it.Name)
	}
}

func TestCoordinator_NotifiersRunAfterCompletion(t *testing.T) {
	n := &recordingNotifier{}
	c := newTestCoordinator(func(context.Context, string) (json.RawMessage, error) {
		return quoteJSON("$1.00"), nil
	}, &recordingMerger{}, WithNotifiers(n, NewLogNotifier(logging.NewNopLogger())))

	run, err := c.Start(context.Background(), testItems("A"))
	require.NoError(t, err)
	res := waitRun(t, run)

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.results, 1)
	assert.Equal(t, res, n.results[0])
}

func TestCoordinator_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)
	factory := redis.NewLockFactory(client, "casefolio:", logging.NewNopLogger())

	other := factory.NewMutex("refresh", redis.WithLockTTL(time.Minute))
	ok, err := other.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	c := newTestCoordinator(func(context.Context, string) (json.RawMessage, error) {
		return quoteJSON("$1.00"), nil
	}, &recordingMerger{}, WithLock(factory.NewMutex("refresh", redis.WithLockTTL(time.Minute))))

	_, err = c.Start(context.Background(), testItems("A"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRefreshLocked))

	require.NoError(t, other.Unlock(context.Background()))

	run, err := c.Start(context.Background(), testItems("A"))
	require.NoError(t, err)
	waitRun(t, run)
	assert.False(t, mr.Exists("casefolio:lock:refresh"))
}

func TestCoordinator_Schedule(t *testing.T) {
	merger := &recordingMerger{}
	c := newTestCoordinator(func(context.Context, string) (json.RawMessage, error) {
		return quoteJSON("$1.00"), nil
	}, merger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Schedule(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(merger.Calls()) >= 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

//Personal.AI order the ending
