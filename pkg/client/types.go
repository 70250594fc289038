package client

import "time"

// Quote is a market price overview. Prices are the upstream display
// strings, e.g. "$0.42".
type Quote struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price,omitempty"`
	MedianPrice string `json:"median_price,omitempty"`
	Volume      string `json:"volume,omitempty"`
}

// BatchQuote is one entry of a batch price response.
type BatchQuote struct {
	Name string `json:"name"`
	Quote
}

type SummaryEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
	LineCents   int64  `json:"line_cents"`
	UnitPrice   string `json:"unit_price"`
	LineValue   string `json:"line_value"`
}

// Summary is the valuation of the portfolio.
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

// Record is the stored portfolio document.
type Record struct {
	Items  map[string]Holding `json:"items"`
	Prices map[string]int64   `json:"prices"`
	Meta   struct {
		LastPriceUpdate *int64 `json:"lastPriceUpdate"`
	} `json:"meta"`
}

type Holding struct {
	Quantity int `json:"quantity"`
}

type RefreshItem struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Quote *Quote `json:"quote,omitempty"`
	Error string `json:"error,omitempty"`
}

type RefreshResult struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Total      int              `json:"total"`
	Done       int              `json:"done"`
	Failed     int              `json:"failed"`
	Cancelled  bool             `json:"cancelled"`
	Prices     map[string]int64 `json:"prices"`
	Items      []RefreshItem    `json:"items"`
}

type RefreshStatus struct {
	Running    bool           `json:"running"`
	RunID      string         `json:"run_id,omitempty"`
	Total      int            `json:"total"`
	Done       int            `json:"done"`
	Failed     int            `json:"failed"`
	Progress   int            `json:"progress"`
	Current    string         `json:"current,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	LastResult *RefreshResult `json:"last_result,omitempty"`
}

type CatalogItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	PriceCents  int64  `json:"price_cents"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

//Personal.AI order the ending
