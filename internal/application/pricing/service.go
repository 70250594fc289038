// Package pricing relays Steam priceoverview quotes, one at a time or in
// batches.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/casefolio/internal/infrastructure/market"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

const DefaultBatchConcurrency = 4

// Service is the price proxy.
type Service interface {
	// Quote returns the upstream document for name unchanged.
	Quote(ctx context.Context, name string) (json.RawMessage, error)
	// Batch quotes every name independently. Results keep the input order
	// and a failed item never fails the batch.
	Batch(ctx context.Context, names []string) []BatchResult
	// NameID resolves the market item_nameid for name.
	NameID(ctx context.Context, name string) (int64, error)
}

// NameIDResolver looks up market item ids.
type NameIDResolver interface {
	LookupNameID(ctx context.Context, name string) (int64, error)
}

// BatchResult is one entry of a batch response. It marshals as the upstream
// object with a leading "name" field, or {"name":..., "success":false}.
type BatchResult struct {
	Name string
	Data json.RawMessage
	Err  error
}

func (r BatchResult) OK() bool {
	return r.Err == nil && len(r.Data) > 0
}

// MarshalJSON writes the upstream object's fields after "name". An upstream
// "name" field is dropped so the item name is the only one.
func (r BatchResult) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(r.Name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	buf.Write(name)
	if !r.OK() {
		buf.WriteString(`,"success":false}`)
		return buf.Bytes(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(r.Data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		if key == "name" {
			continue
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Option func(*serviceImpl)

func WithConcurrency(n int) Option {
	return func(s *serviceImpl) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithNameIDResolver(r NameIDResolver) Option {
	return func(s *serviceImpl) { s.resolver = r }
}

type serviceImpl struct {
	fetcher     market.Fetcher
	resolver    NameIDResolver
	concurrency int
	logger      logging.Logger
}

func NewService(fetcher market.Fetcher, logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		fetcher:     fetcher,
		concurrency: DefaultBatchConcurrency,
		logger:      logger,
	}
	if r, ok := fetcher.(NameIDResolver); ok {
		s.resolver = r
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Quote(ctx context.Context, name string) (json.RawMessage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.MissingParam("Item name required")
	}
	raw, err := s.fetcher.FetchRaw(ctx, name)
	if err != nil {
		s.logger.Error("Error fetching from Steam", logging.String("item", name), logging.Err(err))
		return nil, err
	}
	return raw, nil
}

func (s *serviceImpl) Batch(ctx context.Context, names []string) []BatchResult {
	results := make([]BatchResult, len(names))
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, name)
			return nil
		})
	}
	g.Wait()
	return results
}

func (s *serviceImpl) fetchOne(ctx context.Context, name string) BatchResult {
	res := BatchResult{Name: name}
	raw, err := s.fetcher.FetchRaw(ctx, name)
	if err != nil {
		s.logger.Warn("Batch item failed", logging.String("item", name), logging.Err(err))
		res.Err = err
		return res
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) < 2 || trimmed[0] != '{' || !json.Valid(trimmed) {
		res.Err = errors.New(errors.ErrCodeUpstreamResponse, "quote is not a JSON object").WithDetail(name)
		return res
	}
	res.Data = raw
	return res
}

func (s *serviceImpl) NameID(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.MissingParam("Item name required")
	}
	if s.resolver == nil {
		return 0, errors.New(errors.ErrCodeServiceUnavailable, "name id lookup is not configured")
	}
	return s.resolver.LookupNameID(ctx, name)
}

//Personal.AI order the ending
