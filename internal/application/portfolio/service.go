// Package portfolio holds the session copy of the portfolio record and
// persists it after every change.
package portfolio

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/casefolio/internal/domain/currency"
	domain "github.com/turtacn/casefolio/internal/domain/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/pkg/errors"
)

// NeverUpdated is shown when no price refresh has completed.
const NeverUpdated = "Never"

// Store persists the record. Save failures are handled by the store.
type Store interface {
	Load(ctx context.Context) domain.Record
	Save(ctx context.Context, rec domain.Record)
}

// Service defines the portfolio operations used by handlers and the refresh
// coordinator. Mutations return the record as it stands afterwards.
type Service interface {
	Snapshot() domain.Record
	Add(ctx context.Context, input *AddInput) (domain.Record, error)
	SetQuantity(ctx context.Context, name string, quantity int) (domain.Record, error)
	Remove(ctx context.Context, name string) (domain.Record, error)
	MergePrices(ctx context.Context, prices map[string]int64) domain.Record
	Summary() *Summary
	// Reload replaces the session record with the stored one.
	Reload(ctx context.Context) domain.Record
}

// AddInput contains input for adding an item. A nil PriceCents keeps the
// last known price.
type AddInput struct {
	Name       string
	Quantity   int
	PriceCents *int64
}

// SummaryEntry is a held item with formatted prices.
type SummaryEntry struct {
	domain.Entry
	UnitPrice string `json:"unit_price"`
	LineValue string `json:"line_value"`
}

// Summary is the valuation view of the portfolio.
type Summary struct {
	TotalCents          int64          `json:"total_cents"`
	NetCents            int64          `json:"net_cents"`
	Total               string         `json:"total"`
	Net                 string         `json:"net"`
	TaxRate             string         `json:"tax_rate"`
	Currency            string         `json:"currency"`
	UniqueItems         int            `json:"unique_items"`
	TotalQuantity       int            `json:"total_quantity"`
	LastPriceUpdate     *time.Time     `json:"last_price_update"`
	LastPriceUpdateText string         `json:"last_price_update_text"`
	Entries             []SummaryEntry `json:"entries"`
}

type Option func(*serviceImpl)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *serviceImpl) { s.taxRate = rate }
}

func WithFormatter(f *currency.Formatter) Option {
	return func(s *serviceImpl) { s.formatter = f }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

type serviceImpl struct {
	mu        sync.Mutex
	rec       domain.Record
	store     Store
	taxRate   decimal.Decimal
	formatter *currency.Formatter
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

// DefaultTaxRate is the Steam marketplace fee.
var DefaultTaxRate = decimal.RequireFromString("0.15")

// NewService loads the stored record and returns a service around it.
func NewService(ctx context.Context, store Store, logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		store:     store,
		taxRate:   DefaultTaxRate,
		formatter: currency.NewFormatter(""),
		logger:    logger,
		metrics:   prometheus.NewNopAppMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rec = store.Load(ctx)
	s.observe(s.rec)
	logger.Info("Portfolio loaded",
		logging.Int("items", domain.UniqueCount(s.rec)),
		logging.Int64("value_cents", domain.TotalValue(s.rec)),
	)
	return s
}

func (s *serviceImpl) Snapshot() domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// apply runs op on the current record, keeps and persists the result.
func (s *serviceImpl) apply(ctx context.Context, op func(domain.Record) domain.Record) domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = op(s.rec)
	s.store.Save(ctx, s.rec)
	s.observe(s.rec)
	return s.rec.Clone()
}

func validName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.MissingParam("item name is required")
	}
	return name, nil
}

func (s *serviceImpl) Add(ctx context.Context, input *AddInput) (domain.Record, error) {
	if input == nil {
		return domain.Record{}, errors.MissingParam("item is required")
	}
	name, err := validName(input.Name)
	if err != nil {
		return domain.Record{}, err
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return domain.Record{}, errors.InvalidParam("price must not be negative").WithDetail(name)
	}

	rec := s.apply(ctx, func(r domain.Record) domain.Record {
		if input.PriceCents == nil {
			return domain.SetQuantity(r, name, input.Quantity)
		}
		return domain.AddItem(r, name, input.Quantity, *input.PriceCents)
	})
	s.logger.Info("Item added", logging.String("item", name), logging.Int("quantity", rec.Items[name].Quantity))
	return rec, nil
}

func (s *serviceImpl) SetQuantity(ctx context.Context, name string, quantity int) (domain.Record, error) {
	if _, err := validName(name); err != nil {
		return domain.Record{}, err
	}
	return s.apply(ctx, func(r domain.Record) domain.Record {
		return domain.SetQuantity(r, name, quantity)
	}), nil
}

// Remove deletes name from the holdings. Removing an item that is not held
// succeeds and still persists.
func (s *serviceImpl) Remove(ctx context.Context, name string) (domain.Record, error) {
	if _, err := validName(name); err != nil {
		return domain.Record{}, err
	}
	return s.apply(ctx, func(r domain.Record) domain.Record {
		return domain.RemoveItem(r, name)
	}), nil
}

func (s *serviceImpl) MergePrices(ctx context.Context, prices map[string]int64) domain.Record {
	rec := s.apply(ctx, func(r domain.Record) domain.Record {
		return domain.MergePrices(r, prices)
	})
	s.logger.Info("Prices merged", logging.Int("count", len(prices)))
	return rec
}

func (s *serviceImpl) Reload(ctx context.Context) domain.Record {
	rec := s.store.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.observe(s.rec)
	return s.rec.Clone()
}

func (s *serviceImpl) Summary() *Summary {
	rec := s.Snapshot()

	total := domain.TotalValue(rec)
	net := domain.NetValue(rec, s.taxRate)
	sum := &Summary{
		TotalCents:          total,
		NetCents:            net,
		Total:               s.formatter.Format(total),
		Net:                 s.formatter.Format(net),
		TaxRate:             s.taxRate.String(),
		Currency:            s.formatter.Code(),
		UniqueItems:         domain.UniqueCount(rec),
		TotalQuantity:       domain.TotalQuantity(rec),
		LastPriceUpdateText: NeverUpdated,
	}
	if ts, ok := rec.Meta.LastUpdate(); ok {
		sum.LastPriceUpdate = &ts
		sum.LastPriceUpdateText = ts.Local().Format(time.DateTime)
	}

	entries := domain.Entries(rec)
	sum.Entries = make([]SummaryEntry, len(entries))
	for i, e := range entries {
		sum.Entries[i] = SummaryEntry{
			Entry:     e,
			UnitPrice: s.formatter.Format(e.UnitCents),
			LineValue: s.formatter.Format(e.LineCents),
		}
	}
	return sum
}

func (s *serviceImpl) observe(rec domain.Record) {
	prometheus.RecordPortfolioValue(s.metrics, domain.TotalValue(rec), domain.NetValue(rec, s.taxRate), domain.UniqueCount(rec))
}

//Personal.AI order the ending
