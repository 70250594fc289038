package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/casefolio/internal/application/portfolio"
	"github.com/turtacn/casefolio/internal/application/pricing"
	"github.com/turtacn/casefolio/internal/application/refresh"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/internal/infrastructure/storage"
	"github.com/turtacn/casefolio/internal/interfaces/http/handlers"
	"github.com/turtacn/casefolio/internal/interfaces/http/middleware"
)

type fetchFunc func(ctx context.Context, name string) (json.RawMessage, error)

func (f fetchFunc) FetchRaw(ctx context.Context, name string) (json.RawMessage, error) {
	return f(ctx, name)
}

type RouterTestSuite struct {
	suite.Suite
	router    http.Handler
	portfolio portfolio.Service
	release   chan struct{}
	cancel    context.CancelFunc
}

func (s *RouterTestSuite) SetupTest() {
	log := logging.NewNopLogger()
	s.release = make(chan struct{})
	release := s.release

	fetcher := fetchFunc(func(ctx context.Context, name string) (json.RawMessage, error) {
		if name == "Slow Case" {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return json.RawMessage(`{"success":true,"lowest_price":"$1.00","median_price":"$1.25","volume":"7"}`), nil
	})

	store := storage.NewStore(storage.NewMemoryBackend(), "cs2-portfolio", log, nil)
	s.portfolio = portfolio.NewService(context.Background(), store, log)
	pricingSvc := pricing.NewService(fetcher, log)
	coordinator := refresh.NewCoordinator(fetcher, s.portfolio, log, refresh.WithInterval(time.Millisecond))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "casefolio"}, log)
	s.Require().NoError(err)
	metrics := prometheus.NewAppMetrics(collector)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.router = NewRouter(RouterConfig{
		PriceHandler:      handlers.NewPriceHandler(pricingSvc, log, 1<<20),
		PortfolioHandler:  handlers.NewPortfolioHandler(s.portfolio, log, 1<<20),
		RefreshHandler:    handlers.NewRefreshHandler(ctx, coordinator, log, 1<<20),
		CatalogHandler:    handlers.NewCatalogHandler(s.portfolio, pricingSvc, nil),
		HealthHandler:     handlers.NewHealthHandler("test", metrics),
		CORSMiddleware:    middleware.NewCORSMiddleware(middleware.DefaultCORSConfig()),
		LoggingMiddleware: middleware.NewLoggingMiddleware(log, middleware.DefaultLoggingConfig()),
		Metrics:           metrics,
		MetricsCollector:  collector,
	})
}

func (s *RouterTestSuite) TearDownTest() {
	select {
	case <-s.release:
	default:
		close(s.release)
	}
	s.cancel()
}

func (s *RouterTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *RouterTestSuite) summary(w *httptest.ResponseRecorder) portfolio.Summary {
	var sum portfolio.Summary
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &sum))
	return sum
}

func (s *RouterTestSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", "").Code)

	s.do(http.MethodGet, "/api/portfolio", "")
	w = s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `casefolio_http_requests_total{method="GET",path="/api/portfolio`)
}

func (s *RouterTestSuite) TestPrices() {
	w := s.do(http.MethodGet, "/api/prices?item=Clutch%20Case", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true,"lowest_price":"$1.00","median_price":"$1.25","volume":"7"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/prices?item=", "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/prices", `{"items":["Clutch Case"]}`)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"results":[{"name":"Clutch Case","success":true,"lowest_price":"$1.00","median_price":"$1.25","volume":"7"}]}`, w.Body.String())
}

func (s *RouterTestSuite) TestPortfolioLifecycle() {
	w := s.do(http.MethodGet, "/api/portfolio", "")
	s.Equal(http.StatusOK, w.Code)
	sum := s.summary(w)
	s.Equal("Never", sum.LastPriceUpdateText)
	s.Equal("$0.00", sum.Total)

	w = s.do(http.MethodPost, "/api/portfolio/items", `{"name":"Clutch Case","quantity":2,"price":200}`)
	s.Equal(http.StatusCreated, w.Code)
	sum = s.summary(w)
	s.Equal(int64(400), sum.TotalCents)
	s.Equal(int64(340), sum.NetCents)

	w = s.do(http.MethodPut, "/api/portfolio/items/Clutch%20Case", `{"quantity":5}`)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1000), s.summary(w).TotalCents)

	w = s.do(http.MethodPut, "/api/portfolio/items/Clutch%20Case", `{}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/portfolio/items/Clutch%20Case", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(0, s.summary(w).UniqueItems)

	w = s.do(http.MethodGet, "/api/portfolio/record", "")
	s.Equal(http.StatusOK, w.Code)
	var rec struct {
		Items  map[string]interface{} `json:"items"`
		Prices map[string]int64       `json:"prices"`
		Meta   struct {
			LastPriceUpdate *int64 `json:"lastPriceUpdate"`
		} `json:"meta"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &rec))
	s.Empty(rec.Items)
	s.Equal(map[string]int64{"Clutch Case": 200}, rec.Prices)
	s.NotNil(rec.Meta.LastPriceUpdate)
}

func (s *RouterTestSuite) TestPortfolio_AddValidation() {
	w := s.do(http.MethodPost, "/api/portfolio/items", `{"name":"  "}`)
	s.Equal(http.StatusBadRequest, w.Code)
	var resp handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.NotEmpty(resp.Code)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/portfolio/items", `{`).Code)
}

func (s *RouterTestSuite) TestCatalog() {
	_, err := s.portfolio.Add(context.Background(), &portfolio.AddInput{Name: "Clutch Case", Quantity: 3, PriceCents: ptr(int64(150))})
	s.Require().NoError(err)

	w := s.do(http.MethodGet, "/api/catalog?type=case&q=clutch", "")
	s.Equal(http.StatusOK, w.Code)
	var resp handlers.CatalogResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Equal(1, resp.Total)
	s.Equal("Clutch Case", resp.Items[0].Name)
	s.Equal("$1.50", resp.Items[0].Price)
	s.Equal(3, resp.Items[0].Quantity)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/catalog?type=sticker", "").Code)

	w = s.do(http.MethodGet, "/api/catalog/nameid?item=Clutch%20Case", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RouterTestSuite) TestRefresh() {
	w := s.do(http.MethodDelete, "/api/refresh", "")
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/refresh", `{"items":["Slow Case"]}`)
	s.Require().Equal(http.StatusAccepted, w.Code)
	var st refresh.Status
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &st))
	s.True(st.Running)
	s.Equal(1, st.Total)

	w = s.do(http.MethodPost, "/api/refresh", "")
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "price refresh already in progress")

	close(s.release)
	s.Eventually(func() bool {
		var st refresh.Status
		w := s.do(http.MethodGet, "/api/refresh", "")
		return json.Unmarshal(w.Body.Bytes(), &st) == nil && !st.Running && st.LastResult != nil
	}, 5*time.Second, 5*time.Millisecond)

	s.Equal(int64(125), s.portfolio.Snapshot().Price("Slow Case"))
	s.NotEqual("Never", s.portfolio.Summary().LastPriceUpdateText)
}

func (s *RouterTestSuite) TestRefresh_BadType() {
	w := s.do(http.MethodPost, "/api/refresh", `{"type":"knife"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestNewRouter_NilHandlers(t *testing.T) {
	router := NewRouter(RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func ptr[T any](v T) *T { return &v }

//Personal.AI order the ending
