// Package market talks to the Steam Community Market.
package market

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/pkg/errors"
)

const (
	DefaultBaseURL   = "https://steamcommunity.com"
	DefaultAppID     = 730
	DefaultCurrency  = 1
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	endpointPriceOverview = "priceoverview"
	endpointListing       = "listing"

	// listing pages are large HTML documents; the name id sits in an inline script.
	maxListingBytes = 4 << 20
	nameIDMarker    = "Market_LoadOrderSpread( "
)

// Fetcher returns the raw priceoverview document for an item.
type Fetcher interface {
	FetchRaw(ctx context.Context, name string) (json.RawMessage, error)
}

// Config holds the upstream parameters. Zero fields take the defaults above.
type Config struct {
	BaseURL   string
	AppID     int
	Currency  int
	UserAgent string
	Timeout   time.Duration
}

// Client issues priceoverview and listing requests. It never retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     logging.Logger
	metrics    *prometheus.AppMetrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(cfg Config, log logging.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.AppID == 0 {
		cfg.AppID = DefaultAppID
	}
	if cfg.Currency == 0 {
		cfg.Currency = DefaultCurrency
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
		metrics:    prometheus.NewNopAppMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// escapeComponent matches encodeURIComponent: spaces become %20, not '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// PriceOverviewURL builds the priceoverview request URL for name.
func (c *Client) PriceOverviewURL(name string) string {
	return fmt.Sprintf("%s/market/priceoverview/?appid=%d&currency=%d&market_hash_name=%s",
		c.cfg.BaseURL, c.cfg.AppID, c.cfg.Currency, escapeComponent(name))
}

// ListingURL builds the market listing page URL for name.
func (c *Client) ListingURL(name string) string {
	return fmt.Sprintf("%s/market/listings/%d/%s", c.cfg.BaseURL, c.cfg.AppID, escapeComponent(name))
}

// FetchRaw returns the upstream JSON unchanged. A non-2xx status fails with
// the message "Steam API returned <status>".
func (c *Client) FetchRaw(ctx context.Context, name string) (json.RawMessage, error) {
	body, err := c.get(ctx, endpointPriceOverview, c.PriceOverviewURL(name), 0)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New(errors.ErrCodeUpstreamResponse, "Steam API returned invalid JSON").WithDetail(name)
	}
	return json.RawMessage(body), nil
}

// LookupNameID scrapes the item_nameid from the listing page.
func (c *Client) LookupNameID(ctx context.Context, name string) (int64, error) {
	body, err := c.get(ctx, endpointListing, c.ListingURL(name), maxListingBytes)
	if err != nil {
		return 0, err
	}
	id, ok := parseNameID(string(body))
	if !ok {
		return 0, errors.New(errors.ErrCodeNameIDNotFound, "item name id not found").WithDetail(name)
	}
	return id, nil
}

func parseNameID(html string) (int64, bool) {
	idx := strings.Index(html, nameIDMarker)
	if idx < 0 {
		return 0, false
	}
	rest := html[idx+len(nameIDMarker):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstream, "failed to build request")
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		prometheus.RecordUpstreamCall(c.metrics, endpoint, 0, time.Since(start), err)
		c.logger.Warn("Steam request failed", logging.String("endpoint", endpoint), logging.Err(err))
		if isTimeout(err) {
			return nil, errors.Wrap(err, errors.ErrCodeUpstreamTimeout, "Steam API request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeUpstream, "Steam API request failed")
	}
	defer resp.Body.Close()
	prometheus.RecordUpstreamCall(c.metrics, endpoint, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn("Steam returned error status",
			logging.String("endpoint", endpoint),
			logging.Int("status", resp.StatusCode),
		)
		return nil, errors.Newf(errors.ErrCodeUpstream, "Steam API returned %d", resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Wrap(err, errors.ErrCodeUpstreamTimeout, "Steam API request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeUpstream, "failed to read Steam response")
	}
	return body, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

//Personal.AI order the ending
