// Package refresh fetches quotes for the catalog one item per tick and
// merges the median prices into the portfolio.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/casefolio/internal/domain/catalog"
	domain "github.com/turtacn/casefolio/internal/domain/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/market"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/pkg/errors"
)

const (
	DefaultInterval       = 2 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	notifyTimeout         = 10 * time.Second
)

var (
	ErrInProgress = errors.New(errors.ErrCodeRefreshInProgress, "price refresh already in progress")
	ErrNotRunning = errors.New(errors.ErrCodeRefreshNotRunning, "no price refresh running")
	ErrLocked     = errors.New(errors.ErrCodeRefreshLocked, "price refresh locked by another instance")
)

// PriceMerger receives the collected prices in one mutation.
type PriceMerger interface {
	MergePrices(ctx context.Context, prices map[string]int64) domain.Record
}

// Lock guards runs across processes.
type Lock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type Option func(*Coordinator)

// WithInterval sets the delay between upstream requests.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

func WithDecoder(d *market.Decoder) Option {
	return func(c *Coordinator) { c.decoder = d }
}

func WithLock(l Lock) Option {
	return func(c *Coordinator) { c.lock = l }
}

func WithNotifiers(n ...Notifier) Option {
	return func(c *Coordinator) { c.notifiers = append(c.notifiers, n...) }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// Coordinator runs at most one refresh at a time.
type Coordinator struct {
	fetcher        market.Fetcher
	decoder        *market.Decoder
	merger         PriceMerger
	lock           Lock
	notifiers      []Notifier
	interval       time.Duration
	requestTimeout time.Duration
	logger         logging.Logger
	metrics        *prometheus.AppMetrics

	running atomic.Bool

	mu      sync.RWMutex
	current *Run
	last    *Result
}

func NewCoordinator(fetcher market.Fetcher, merger PriceMerger, logger logging.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:        fetcher,
		merger:         merger,
		interval:       DefaultInterval,
		requestTimeout: DefaultRequestTimeout,
		logger:         logger,
		metrics:        prometheus.NewNopAppMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder, _ = market.NewDecoder(market.DefaultFieldPaths())
	}
	return c
}

// SetInterval changes the dispatch interval for runs started afterwards.
func (c *Coordinator) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
}

// Interval returns the current dispatch interval.
func (c *Coordinator) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

// Start launches a run over items, or over the whole catalog when items is
// empty. The run stops early when ctx ends or Cancel is called.
func (c *Coordinator) Start(ctx context.Context, items []catalog.Item) (*Run, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrInProgress
	}
	if len(items) == 0 {
		items = catalog.All()
	}

	if c.lock != nil {
		ok, err := c.lock.TryLock(ctx)
		if err != nil {
			c.running.Store(false)
			return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to acquire refresh lock")
		}
		if !ok {
			c.running.Store(false)
			return nil, ErrLocked
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
		progress:  Progress{Total: len(items)},
	}

	c.mu.Lock()
	c.current = run
	interval := c.interval
	c.mu.Unlock()

	c.logger.Info("Price refresh started",
		logging.String("run_id", run.id),
		logging.Int("items", len(items)),
		logging.Duration("interval", interval),
	)
	go c.execute(runCtx, run, items, interval)
	return run, nil
}

// Cancel stops the current run.
func (c *Coordinator) Cancel() error {
	c.mu.RLock()
	run := c.current
	c.mu.RUnlock()
	if run == nil {
		return ErrNotRunning
	}
	run.Cancel()
	c.logger.Info("Price refresh cancel requested", logging.String("run_id", run.id))
	return nil
}

// Current returns the in-flight run, if any.
func (c *Coordinator) Current() *Run {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// LastResult returns the most recent finished run, if any.
func (c *Coordinator) LastResult() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	run, last := c.current, c.last
	c.mu.RUnlock()

	st := Status{LastResult: last}
	if last != nil {
		finished := last.FinishedAt
		st.FinishedAt = &finished
	}
	if run == nil {
		return st
	}
	p := run.Progress()
	started := run.startedAt
	st.Running = true
	st.RunID = run.id
	st.Total = p.Total
	st.Done = p.Done
	st.Failed = p.Failed
	st.Progress = p.Percent()
	st.Current = p.Current
	st.StartedAt = &started
	st.FinishedAt = nil
	return st
}

func (c *Coordinator) execute(ctx context.Context, run *Run, items []catalog.Item, interval time.Duration) {
	defer run.cancel()

	res := &Result{
		RunID:     run.id,
		StartedAt: run.startedAt,
		Total:     len(items),
		Prices:    make(map[string]int64),
		Items:     make([]ItemResult, 0, len(items)),
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

dispatch:
	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				break dispatch
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break dispatch
		}

		run.update(func(p *Progress) { p.Current = item.Name })
		ir, ok := c.fetch(ctx, item)
		if !ok && ctx.Err() != nil {
			// the request was cut short by cancellation, not by the market
			break dispatch
		}

		res.Items = append(res.Items, ir)
		if ir.OK() && ir.Quote.HasMedian() {
			res.Prices[item.Name] = ir.Quote.MedianCents()
		}
		res.Done++
		if !ir.OK() {
			res.Failed++
		}
		run.update(func(p *Progress) {
			p.Done = res.Done
			p.Failed = res.Failed
		})
		c.metrics.RefreshProgress.WithLabelValues().Set(float64(res.Done) / float64(res.Total))
	}
	res.Cancelled = ctx.Err() != nil

	// A cancelled run with nothing collected leaves the timestamp alone.
	if len(res.Prices) > 0 || !res.Cancelled {
		c.merger.MergePrices(context.WithoutCancel(ctx), res.Prices)
	}
	res.FinishedAt = time.Now()

	c.complete(ctx, run, res)
}

func (c *Coordinator) fetch(ctx context.Context, item catalog.Item) (ItemResult, bool) {
	ir := ItemResult{Name: item.Name, Type: item.Type}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	raw, err := c.fetcher.FetchRaw(reqCtx, item.Name)
	if err != nil {
		ir.Error = errors.Reason(err)
		c.metrics.RefreshItemsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Refresh item failed", logging.String("item", item.Name), logging.Err(err))
		return ir, false
	}
	q, err := c.decoder.Decode(raw)
	if err != nil {
		ir.Error = errors.Reason(err)
		c.metrics.RefreshItemsTotal.WithLabelValues("error").Inc()
		return ir, false
	}
	ir.Quote = &q
	if !q.Success {
		c.metrics.RefreshItemsTotal.WithLabelValues("unavailable").Inc()
		return ir, true
	}
	c.metrics.RefreshItemsTotal.WithLabelValues("ok").Inc()
	return ir, true
}

func (c *Coordinator) complete(ctx context.Context, run *Run, res *Result) {
	outcome := "completed"
	if res.Cancelled {
		outcome = "cancelled"
	}
	c.metrics.RefreshRunsTotal.WithLabelValues(outcome).Inc()
	c.metrics.RefreshRunDuration.WithLabelValues().Observe(res.Duration().Seconds())
	c.metrics.RefreshProgress.WithLabelValues().Set(0)

	if c.lock != nil {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := c.lock.Unlock(unlockCtx); err != nil {
			c.logger.Warn("Failed to release refresh lock", logging.Err(err))
		}
		cancel()
	}

	run.finish(res)
	c.mu.Lock()
	c.last = res
	c.current = nil
	c.mu.Unlock()

	for _, n := range c.notifiers {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		err := n.Notify(nctx, res)
		cancel()
		status := "ok"
		if err != nil {
			status = "error"
			c.logger.Warn("Refresh notifier failed", logging.String("notifier", n.Name()), logging.Err(err))
		}
		c.metrics.RefreshEventsTotal.WithLabelValues(n.Name(), status).Inc()
	}

	c.running.Store(false)
	close(run.done)
}

// Schedule starts a run every period until ctx ends. Ticks that find a run
// in progress are skipped.
func (c *Coordinator) Schedule(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	c.logger.Info("Scheduled price refresh enabled", logging.Duration("every", every))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Start(ctx, nil); err != nil {
				c.logger.Debug("Scheduled refresh skipped", logging.Err(err))
			}
		}
	}
}

//Personal.AI order the ending
