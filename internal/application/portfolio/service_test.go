package portfolio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/casefolio/internal/domain/currency"
	domain "github.com/turtacn/casefolio/internal/domain/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/storage"
	"github.com/turtacn/casefolio/pkg/errors"
)

// recordingStore counts saves and keeps the last saved record.
type recordingStore struct {
	mu      sync.Mutex
	initial domain.Record
	saves   int
	last    domain.Record
}

func (s *recordingStore) Load(context.Context) domain.Record {
	if s.initial.Items == nil {
		return domain.NewRecord()
	}
	return s.initial
}

func (s *recordingStore) Save(_ context.Context, rec domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.last = rec.Clone()
}

func newTestService(t *testing.T) (Service, *recordingStore) {
	t.Helper()
	st := &recordingStore{}
	return NewService(context.Background(), st, logging.NewNopLogger()), st
}

func price(c int64) *int64 { return &c }

func TestAdd_PersistsEveryMutation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Add(ctx, &AddInput{Name: "Clutch Case", Quantity: 2, PriceCents: price(150)})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Items["Clutch Case"].Quantity)
	assert.Equal(t, int64(150), rec.Prices["Clutch Case"])
	assert.NotNil(t, rec.Meta.LastPriceUpdate)

	_, err = svc.SetQuantity(ctx, "Clutch Case", 5)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, "Clutch Case")
	require.NoError(t, err)

	assert.Equal(t, 3, st.saves)
	assert.False(t, st.last.Holds("Clutch Case"))
	assert.Equal(t, int64(150), st.last.Prices["Clutch Case"])
}

func TestAdd_WithoutPriceKeepsKnownPrice(t *testing.T) {
	st := &recordingStore{initial: domain.MergePricesAt(domain.NewRecord(), map[string]int64{"Fever Case": 95}, time.UnixMilli(10))}
	svc := NewService(context.Background(), st, logging.NewNopLogger())

	rec, err := svc.Add(context.Background(), &AddInput{Name: "Fever Case", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Items["Fever Case"].Quantity)
	assert.Equal(t, int64(95), rec.Prices["Fever Case"])
	assert.Equal(t, int64(10), *rec.Meta.LastPriceUpdate)
}

func TestAdd_Validation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, &AddInput{Name: "  ", Quantity: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingParam))

	_, err = svc.Add(ctx, &AddInput{Name: "Clutch Case", Quantity: 1, PriceCents: price(-1)})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = svc.Add(ctx, nil)
	assert.Error(t, err)

	_, err = svc.SetQuantity(ctx, "", 3)
	assert.Error(t, err)
	_, err = svc.Remove(ctx, "")
	assert.Error(t, err)

	assert.Equal(t, 0, st.saves)
}

func TestSnapshot_IsACopy(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Add(context.Background(), &AddInput{Name: "Clutch Case", Quantity: 1, PriceCents: price(1)})
	require.NoError(t, err)

	snap := svc.Snapshot()
	snap.Items["Injected"] = domain.Holding{Quantity: 9}
	assert.False(t, svc.Snapshot().Holds("Injected"))
}

func TestMergePrices(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, &AddInput{Name: "Clutch Case", Quantity: 2, PriceCents: price(150)})
	require.NoError(t, err)

	rec := svc.MergePrices(ctx, map[string]int64{"Clutch Case": 200, "Kilowatt Case": 80})
	assert.Equal(t, int64(400), domain.TotalValue(rec))
	assert.Equal(t, int64(80), rec.Prices["Kilowatt Case"])
	assert.Equal(t, 2, st.saves)
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sum := svc.Summary()
	assert.Equal(t, NeverUpdated, sum.LastPriceUpdateText)
	assert.Nil(t, sum.LastPriceUpdate)
	assert.Equal(t, "$0.00", sum.Total)
	assert.Empty(t, sum.Entries)

	_, err := svc.Add(ctx, &AddInput{Name: "Operation Breakout Weapon Case", Quantity: 2, PriceCents: price(200)})
	require.NoError(t, err)

	sum = svc.Summary()
	assert.Equal(t, int64(400), sum.TotalCents)
	assert.Equal(t, int64(340), sum.NetCents)
	assert.Equal(t, "$4.00", sum.Total)
	assert.Equal(t, "$3.40", sum.Net)
	assert.Equal(t, "0.15", sum.TaxRate)
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, 1, sum.UniqueItems)
	assert.Equal(t, 2, sum.TotalQuantity)
	require.NotNil(t, sum.LastPriceUpdate)
	assert.NotEqual(t, NeverUpdated, sum.LastPriceUpdateText)

	require.Len(t, sum.Entries, 1)
	assert.Equal(t, "Operation Breakout Case", sum.Entries[0].DisplayName)
	assert.Equal(t, "$2.00", sum.Entries[0].UnitPrice)
	assert.Equal(t, "$4.00", sum.Entries[0].LineValue)
}

func TestSummary_CustomTaxAndCurrency(t *testing.T) {
	st := &recordingStore{}
	svc := NewService(context.Background(), st, logging.NewNopLogger(),
		WithTaxRate(decimal.Zero),
		WithFormatter(currency.NewFormatter("EUR")),
	)
	_, err := svc.Add(context.Background(), &AddInput{Name: "Clutch Case", Quantity: 1, PriceCents: price(100)})
	require.NoError(t, err)

	sum := svc.Summary()
	assert.Equal(t, int64(100), sum.NetCents)
	assert.Equal(t, "EUR", sum.Currency)
}

func TestService_WithRealStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	store := storage.NewStore(backend, "cs2-portfolio", logging.NewNopLogger(), nil)

	svc := NewService(ctx, store, logging.NewNopLogger())
	_, err := svc.Add(ctx, &AddInput{Name: "Clutch Case", Quantity: 3, PriceCents: price(120)})
	require.NoError(t, err)

	// A second session sees the persisted record.
	again := NewService(ctx, store, logging.NewNopLogger())
	assert.Equal(t, svc.Snapshot(), again.Snapshot())

	_, err = svc.SetQuantity(ctx, "Clutch Case", 7)
	require.NoError(t, err)
	rec := again.Reload(ctx)
	assert.Equal(t, 7, rec.Items["Clutch Case"].Quantity)
}

func TestService_ConcurrentMutations(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.MergePrices(ctx, map[string]int64{"Clutch Case": 1})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, st.saves)
}

//Personal.AI order the ending
