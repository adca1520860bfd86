package app

import (
	"context"
	"fmt"
	"strings"

	"signal-dashboard/config"
	"signal-dashboard/internal/dashboard"
	"signal-dashboard/observability"
	"signal-dashboard/querycache"
	"signal-dashboard/services"
	"signal-dashboard/watchlist"
)

// Health status values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// App struct holds application dependencies
type App struct {
	cfg       *config.Config
	metrics   *observability.Metrics
	client    *services.SignalsClient
	cache     *querycache.Cache
	api       services.SignalsAPI
	watchlist *watchlist.Store
	dashboard *dashboard.Service
}

// Health describes the state of the app's dependencies
type Health struct {
	Status          string                                   `json:"status"`
	BaseURL         string                                   `json:"base_url,omitempty"`
	ConfigError     string                                   `json:"config_error,omitempty"`
	CacheEntries    int                                      `json:"cache_entries"`
	WatchlistSize   int                                      `json:"watchlist_size"`
	CircuitBreakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers"`
}

// New wires the signals client, query cache, watchlist and dashboard from configuration.
// opts are applied to the transport after the app's own metrics option.
func New(cfg *config.Config, metrics *observability.Metrics, opts ...services.TransportOption) *App {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}

	transportOpts := append([]services.TransportOption{services.WithMetrics(metrics)}, opts...)
	client := services.NewSignalsClient(services.NewTransport(cfg, transportOpts...))
	cache := querycache.NewFromConfig(cfg, metrics)
	api := querycache.NewCachedClient(client, cache)
	store := watchlist.New(metrics)

	return &App{
		cfg:       cfg,
		metrics:   metrics,
		client:    client,
		cache:     cache,
		api:       api,
		watchlist: store,
		dashboard: dashboard.NewService(api, store, metrics),
	}
}

// Startup is called when the app starts
func (a *App) Startup(ctx context.Context) {
	if baseURL, err := a.client.Transport().BaseURL(); err != nil {
		observability.WithError(err).WarnContext(ctx, "signals API base URL is unusable, every request will fail")
	} else {
		observability.L().InfoContext(ctx, "signals API configured", "base_url", baseURL, "list_shape_policy", a.cfg.API.ListShapePolicy)
	}
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	observability.L().InfoContext(ctx, "clearing query cache", "entries", a.cache.Len())
	a.cache.Clear()
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// API returns the cached signals API
func (a *App) API() services.SignalsAPI {
	return a.api
}

// Cache returns the query cache
func (a *App) Cache() *querycache.Cache {
	return a.cache
}

// Dashboard returns the page assembly service
func (a *App) Dashboard() *dashboard.Service {
	return a.dashboard
}

// Watchlist returns the session watchlist
func (a *App) Watchlist() *watchlist.Store {
	return a.watchlist
}

// AddToWatchlist adds a symbol after normalizing it. added is false when it was already present.
func (a *App) AddToWatchlist(symbol string) (string, bool, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", false, err
	}
	added := a.watchlist.Add(normalized)
	if added {
		observability.WithSymbol(normalized).Info("added to watchlist", "size", a.watchlist.Len())
	}
	return normalized, added, nil
}

// RemoveFromWatchlist removes a symbol after normalizing it. removed is false when it was absent.
func (a *App) RemoveFromWatchlist(symbol string) (string, bool, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", false, err
	}
	removed := a.watchlist.Remove(normalized)
	if removed {
		observability.WithSymbol(normalized).Info("removed from watchlist", "size", a.watchlist.Len())
	}
	return normalized, removed, nil
}

// Health reports base URL configuration and circuit breaker state.
// Any open breaker or an unusable base URL makes the app degraded.
func (a *App) Health() Health {
	h := Health{
		Status:          StatusOK,
		CacheEntries:    a.cache.Len(),
		WatchlistSize:   a.watchlist.Len(),
		CircuitBreakers: map[string]services.CircuitBreakerStatus{},
	}

	transport := a.client.Transport()
	if baseURL, err := transport.BaseURL(); err != nil {
		h.Status = StatusDegraded
		h.ConfigError = err.Error()
	} else {
		h.BaseURL = baseURL
	}

	if breakers := transport.Breakers(); breakers != nil {
		h.CircuitBreakers = breakers.Status()
		for _, cb := range h.CircuitBreakers {
			if cb.State == "open" {
				h.Status = StatusDegraded
				break
			}
		}
	}

	return h
}

// NormalizeSymbol upper-cases a user-supplied symbol and validates it
func NormalizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return "", fmt.Errorf("symbol is required")
	}
	if !services.ValidSymbol(normalized) {
		return "", fmt.Errorf("invalid symbol %q", symbol)
	}
	return normalized, nil
}
