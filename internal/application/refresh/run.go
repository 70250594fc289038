package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/casefolio/internal/domain/catalog"
	"github.com/turtacn/casefolio/internal/infrastructure/market"
)

// ItemResult is the outcome of one upstream fetch.
type ItemResult struct {
	Name  string        `json:"name"`
	Type  catalog.Type  `json:"type,omitempty"`
	Quote *market.Quote `json:"quote,omitempty"`
	Error string        `json:"error,omitempty"`
}

// OK reports whether the item produced a usable quote.
func (r ItemResult) OK() bool {
	return r.Error == "" && r.Quote != nil && r.Quote.Success
}

// Result summarises a finished run.
type Result struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Total      int              `json:"total"`
	Done       int              `json:"done"`
	Failed     int              `json:"failed"`
	Cancelled  bool             `json:"cancelled"`
	Prices     map[string]int64 `json:"prices"`
	Items      []ItemResult     `json:"items"`
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Quotes indexes the successful quotes by item name.
func (r *Result) Quotes() map[string]market.Quote {
	out := make(map[string]market.Quote, len(r.Items))
	for _, it := range r.Items {
		if it.OK() {
			out[it.Name] = *it.Quote
		}
	}
	return out
}

// Progress is a point-in-time view of a run.
type Progress struct {
	Total   int
	Done    int
	Failed  int
	Current string
}

// Percent rounds done/total to a whole percentage.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Done*100 + p.Total/2) / p.Total
}

// Run is one in-flight refresh.
type Run struct {
	id        string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	mu       sync.RWMutex
	progress Progress
	result   *Result
}

func (r *Run) ID() string { return r.id }

func (r *Run) StartedAt() time.Time { return r.startedAt }

// Done is closed once the result is available.
func (r *Run) Done() <-chan struct{} { return r.done }

// Result returns nil until Done is closed.
func (r *Run) Result() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Cancel stops dispatch. Prices collected so far are still merged.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the run finishes or ctx ends.
func (r *Run) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-r.done:
		return r.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) Progress() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress
}

func (r *Run) update(fn func(p *Progress)) {
	r.mu.Lock()
	fn(&r.progress)
	r.mu.Unlock()
}

func (r *Run) finish(res *Result) {
	r.mu.Lock()
	r.result = res
	r.progress.Current = ""
	r.mu.Unlock()
}

// Status is the coordinator view served to clients.
type Status struct {
	Running    bool       `json:"running"`
	RunID      string     `json:"run_id,omitempty"`
	Total      int        `json:"total"`
	Done       int        `json:"done"`
	Failed     int        `json:"failed"`
	Progress   int        `json:"progress"`
	Current    string     `json:"current,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	LastResult *Result    `json:"last_result,omitempty"`
}

//Personal.AI order the ending
