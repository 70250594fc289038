package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric recorded by casefolio.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Market upstream
	UpstreamRequestsTotal   CounterVec
	UpstreamRequestDuration HistogramVec
	CacheHitsTotal          CounterVec
	CacheMissesTotal        CounterVec

	// Persistence
	StorageOperationsTotal CounterVec
	StorageErrorsTotal     CounterVec

	// Refresh coordinator
	RefreshRunsTotal   CounterVec
	RefreshItemsTotal  CounterVec
	RefreshProgress    GaugeVec
	RefreshRunDuration HistogramVec
	RefreshEventsTotal CounterVec

	// Portfolio
	PortfolioValueCents  GaugeVec
	PortfolioUniqueItems GaugeVec

	// System health
	HealthCheckStatus GaugeVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultUpstreamDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30}
	DefaultRefreshDurationBuckets  = []float64{5, 15, 30, 60, 90, 120, 300, 600}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.UpstreamRequestsTotal = collector.RegisterCounter("upstream_requests_total", "Market API requests", "endpoint", "status")
	m.UpstreamRequestDuration = collector.RegisterHistogram("upstream_request_duration_seconds", "Market API request duration", DefaultUpstreamDurationBuckets, "endpoint")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.StorageOperationsTotal = collector.RegisterCounter("storage_operations_total", "Portfolio storage operations", "backend", "operation")
	m.StorageErrorsTotal = collector.RegisterCounter("storage_errors_total", "Portfolio storage failures", "backend", "operation")

	m.RefreshRunsTotal = collector.RegisterCounter("refresh_runs_total", "Price refresh runs by outcome", "outcome")
	m.RefreshItemsTotal = collector.RegisterCounter("refresh_items_total", "Items fetched during refresh", "status")
	m.RefreshProgress = collector.RegisterGauge("refresh_progress_ratio", "Progress of the running refresh (0-1)")
	m.RefreshRunDuration = collector.RegisterHistogram("refresh_run_duration_seconds", "Duration of a price refresh run", DefaultRefreshDurationBuckets)
	m.RefreshEventsTotal = collector.RegisterCounter("refresh_events_total", "Refresh completion notifications", "notifier", "status")

	m.PortfolioValueCents = collector.RegisterGauge("portfolio_value_cents", "Portfolio value in cents", "kind")
	m.PortfolioUniqueItems = collector.RegisterGauge("portfolio_unique_items", "Distinct items held")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// NewNopAppMetrics returns AppMetrics whose vectors discard every sample.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:       noopCounterVec{},
		HTTPRequestDuration:     noopHistogramVec{},
		HTTPActiveRequests:      noopGaugeVec{},
		UpstreamRequestsTotal:   noopCounterVec{},
		UpstreamRequestDuration: noopHistogramVec{},
		CacheHitsTotal:          noopCounterVec{},
		CacheMissesTotal:        noopCounterVec{},
		StorageOperationsTotal:  noopCounterVec{},
		StorageErrorsTotal:      noopCounterVec{},
		RefreshRunsTotal:        noopCounterVec{},
		RefreshItemsTotal:       noopCounterVec{},
		RefreshProgress:         noopGaugeVec{},
		RefreshRunDuration:      noopHistogramVec{},
		RefreshEventsTotal:      noopCounterVec{},
		PortfolioValueCents:     noopGaugeVec{},
		PortfolioUniqueItems:    noopGaugeVec{},
		HealthCheckStatus:       noopGaugeVec{},
	}
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordUpstreamCall(metrics *AppMetrics, endpoint string, statusCode int, duration time.Duration, err error) {
	status := strconv.Itoa(statusCode)
	if err != nil && statusCode == 0 {
		status = "error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordStorageOperation(metrics *AppMetrics, backend, operation string, err error) {
	metrics.StorageOperationsTotal.WithLabelValues(backend, operation).Inc()
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(backend, operation).Inc()
	}
}

func RecordPortfolioValue(metrics *AppMetrics, grossCents, netCents int64, uniqueItems int) {
	metrics.PortfolioValueCents.WithLabelValues("gross").Set(float64(grossCents))
	metrics.PortfolioValueCents.WithLabelValues("net").Set(float64(netCents))
	metrics.PortfolioUniqueItems.WithLabelValues().Set(float64(uniqueItems))
}

//Personal.AI order the ending
