package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/testutil"
	"github.com/turtacn/casefolio/pkg/errors"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchRaw(ctx context.Context, name string) (json.RawMessage, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) LookupNameID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func TestQuote_EmptyName(t *testing.T) {
	f := new(MockFetcher)
	svc := NewService(f, logging.NewNopLogger())

	for _, name := range []string{"", "   "} {
		_, err := svc.Quote(context.Background(), name)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeMissingParam))
		assert.Equal(t, "Item name required", errors.Reason(err))
	}
	f.AssertNotCalled(t, "FetchRaw", mock.Anything, mock.Anything)
}

func TestQuote_RelaysUpstream(t *testing.T) {
	f := new(MockFetcher)
	body := json.RawMessage(`{"success":true,"median_price":"$1.20"}`)
	f.On("FetchRaw", mock.Anything, "Clutch Case").Return(body, nil)

	raw, err := NewService(f, logging.NewNopLogger()).Quote(context.Background(), "Clutch Case")
	require.NoError(t, err)
	assert.Equal(t, body, raw)
}

func TestQuote_UpstreamError(t *testing.T) {
	f := new(MockFetcher)
	f.On("FetchRaw", mock.Anything, "Clutch Case").Return(nil, errors.New(errors.ErrCodeUpstream, "Steam API returned 503"))

	log := testutil.NewMockLogger()
	_, err := NewService(f, log).Quote(context.Background(), "Clutch Case")
	require.Error(t, err)
	assert.Equal(t, 500, errors.HTTPStatusForCode(errors.GetCode(err)))
	assert.Equal(t, "Steam API returned 503", errors.Reason(err))

	entries := log.Filter("error")
	require.Len(t, entries, 1)
	assert.Equal(t, "Error fetching from Steam", entries[0].Message)
	item, _ := entries[0].Field("item")
	assert.Equal(t, "Clutch Case", item)
}

func TestBatch_OrderAndIsolation(t *testing.T) {
	f := new(MockFetcher)
	f.On("FetchRaw", mock.Anything, "A").Return(json.RawMessage(`{"success":true,"median_price":"$1.00"}`), nil)
	f.On("FetchRaw", mock.Anything, "B").Return(nil, errors.New(errors.ErrCodeUpstream, "Steam API returned 500"))
	f.On("FetchRaw", mock.Anything, "C").Return(json.RawMessage(`{"success":false}`), nil)
	f.On("FetchRaw", mock.Anything, "D").Return(json.RawMessage(`[1]`), nil)

	results := NewService(f, logging.NewNopLogger()).Batch(context.Background(), []string{"A", "B", "C", "D"})
	require.Len(t, results, 4)

	out, err := json.Marshal(map[string]interface{}{"results": results})
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[
		{"name":"A","success":true,"median_price":"$1.00"},
		{"name":"B","success":false},
		{"name":"C","success":false},
		{"name":"D","success":false}
	]}`, string(out))

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())
	assert.False(t, results[3].OK())
}

func TestBatch_Empty(t *testing.T) {
	results := NewService(new(MockFetcher), logging.NewNopLogger()).Batch(context.Background(), nil)
	out, err := json.Marshal(results)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

// slowFetcher records the peak number of concurrent calls.
type slowFetcher struct {
	mu      sync.Mutex
	current int
	peak    int
	calls   int32
}

func (f *slowFetcher) FetchRaw(_ context.Context, name string) (json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.current++
	if f.current > f.peak {
		f.peak = f.current
	}
	f.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.current--
	f.mu.Unlock()
	return json.RawMessage(fmt.Sprintf(`{"success":true,"volume":%q}`, name)), nil
}

func TestBatch_BoundedConcurrency(t *testing.T) {
	f := &slowFetcher{}
	svc := NewService(f, logging.NewNopLogger(), WithConcurrency(2))

	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("item-%d", i)
	}
	results := svc.Batch(context.Background(), names)

	assert.Equal(t, int32(10), atomic.LoadInt32(&f.calls))
	assert.LessOrEqual(t, f.peak, 2)
	for i, r := range results {
		assert.Equal(t, names[i], r.Name)
		assert.Contains(t, string(r.Data), names[i])
	}
}

func TestBatchResult_EmptyObject(t *testing.T) {
	out, err := json.Marshal(BatchResult{Name: "X", Data: json.RawMessage(" { } ")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X"}`, string(out))
}

func TestBatchResult_UpstreamNameDropped(t *testing.T) {
	out, err := json.Marshal(BatchResult{
		Name: "Clutch Case",
		Data: json.RawMessage(`{"success":true,"name":"upstream","median_price":"$1.20"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Clutch Case","success":true,"median_price":"$1.20"}`, string(out))
}

func TestBatch_MalformedObjectIsFailure(t *testing.T) {
	f := new(MockFetcher)
	f.On("FetchRaw", mock.Anything, "Broken").Return(json.RawMessage(`{"success":true,`), nil)

	results := NewService(f, logging.NewNopLogger()).Batch(context.Background(), []string{"Broken"})
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.True(t, errors.IsCode(results[0].Err, errors.ErrCodeUpstreamResponse))

	out, err := json.Marshal(results)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Broken","success":false}]`, string(out))
}

func TestNameID(t *testing.T) {
	f := new(MockFetcher)
	r := new(MockResolver)
	r.On("LookupNameID", mock.Anything, "Clutch Case").Return(int64(176042949), nil)

	svc := NewService(f, logging.NewNopLogger(), WithNameIDResolver(r))
	id, err := svc.NameID(context.Background(), "Clutch Case")
	require.NoError(t, err)
	assert.Equal(t, int64(176042949), id)

	_, err = NewService(f, logging.NewNopLogger()).NameID(context.Background(), "Clutch Case")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

//Personal.AI order the ending
