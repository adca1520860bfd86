package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signal-dashboard/config"
	"signal-dashboard/observability"
)

// RouterOption customizes NewRouter
type RouterOption func(*routerOptions)

type routerOptions struct {
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
}

// WithRouterMetrics records HTTP metrics into metrics and serves gatherer on /metrics
func WithRouterMetrics(metrics *observability.Metrics, gatherer prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.metrics = metrics
		o.gatherer = gatherer
	}
}

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config, opts ...RouterOption) http.Handler {
	o := routerOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware(o.metrics))

	// Pages
	r.Get("/", h.HandleOverview)
	r.Get("/markets/{market}", h.HandleMarket)
	r.Get("/stocks/{symbol}", h.HandleStockDetail)

	// Metrics endpoint for Prometheus
	if o.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Get("/overview", h.HandleAPIOverview)
		r.Get("/markets/{market}", h.HandleAPIMarket)
		r.Get("/stocks/{symbol}", h.HandleAPIStockDetail)
		r.Get("/signals/top", h.HandleTopSignals)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", h.HandleGetWatchlist)
			r.Put("/{symbol}", h.HandleAddToWatchlist)
			r.Delete("/{symbol}", h.HandleRemoveFromWatchlist)
		})
	})

	return r
}
