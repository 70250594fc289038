package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/internal/interfaces/http/handlers"
	"github.com/turtacn/casefolio/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the HTTP route tree. Nil handlers leave their routes out.
type RouterConfig struct {
	PriceHandler     *handlers.PriceHandler
	PortfolioHandler *handlers.PortfolioHandler
	RefreshHandler   *handlers.RefreshHandler
	CatalogHandler   *handlers.CatalogHandler
	HealthHandler    *handlers.HealthHandler

	CORSMiddleware    *middleware.CORSMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware

	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		registerPriceRoutes(api, cfg.PriceHandler)
		registerPortfolioRoutes(api, cfg.PortfolioHandler)
		registerRefreshRoutes(api, cfg.RefreshHandler)
		registerCatalogRoutes(api, cfg.CatalogHandler)
	})

	return r
}

func registerPriceRoutes(r chi.Router, h *handlers.PriceHandler) {
	if h == nil {
		return
	}
	r.Get("/prices", h.Get)
	r.Post("/prices", h.Batch)
}

func registerPortfolioRoutes(r chi.Router, h *handlers.PortfolioHandler) {
	if h == nil {
		return
	}
	r.Route("/portfolio", func(pr chi.Router) {
		pr.Get("/", h.Get)
		pr.Get("/record", h.Record)
		pr.Post("/items", h.AddItem)
		pr.Put("/items/{name}", h.UpdateItem)
		pr.Delete("/items/{name}", h.RemoveItem)
	})
}

func registerRefreshRoutes(r chi.Router, h *handlers.RefreshHandler) {
	if h == nil {
		return
	}
	r.Post("/refresh", h.Start)
	r.Get("/refresh", h.Status)
	r.Delete("/refresh", h.Cancel)
}

func registerCatalogRoutes(r chi.Router, h *handlers.CatalogHandler) {
	if h == nil {
		return
	}
	r.Get("/catalog", h.List)
	r.Get("/catalog/nameid", h.NameID)
}

//Personal.AI order the ending
