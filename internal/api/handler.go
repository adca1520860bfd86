package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"signal-dashboard/config"
	"signal-dashboard/internal/app"
	"signal-dashboard/internal/views"
	"signal-dashboard/models"
	"signal-dashboard/services"
	"signal-dashboard/viewmodel"
)

// MaxSignalsLimit caps the limit query parameter of the top signals endpoint
const MaxSignalsLimit = 100

// Handler handles dashboard page and JSON requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleOverview serves the overview page
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	page := h.app.Dashboard().Overview(r.Context())
	h.pageResponse(w, r, http.StatusOK, "Overview", views.Overview(page))
}

// HandleMarket serves the stock table of one market
func (h *Handler) HandleMarket(w http.ResponseWriter, r *http.Request) {
	market, err := models.ParseMarket(chi.URLParam(r, "market"))
	if err != nil {
		h.pageResponse(w, r, http.StatusNotFound, "Not found", views.NotFound("Market "+chi.URLParam(r, "market")))
		return
	}

	filter, err := ParseStockTypeFilter(r)
	if err != nil {
		h.pageResponse(w, r, http.StatusBadRequest, "Invalid filter", views.ErrorState(err.Error()))
		return
	}

	page := h.app.Dashboard().Market(r.Context(), market, filter)
	h.pageResponse(w, r, http.StatusOK, string(market)+" Market", views.Market(page))
}

// HandleStockDetail serves the detail page of one symbol
func (h *Handler) HandleStockDetail(w http.ResponseWriter, r *http.Request) {
	symbol, err := app.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		h.pageResponse(w, r, http.StatusBadRequest, "Invalid symbol", views.ErrorState(err.Error()))
		return
	}

	page := h.app.Dashboard().StockDetail(r.Context(), symbol)
	if page.Stock.Error != nil && services.IsNotFound(page.Stock.Error) {
		h.pageResponse(w, r, http.StatusNotFound, "Not found", views.NotFound("Stock "+symbol))
		return
	}

	h.pageResponse(w, r, http.StatusOK, symbol, views.StockDetail(page))
}

// HandleAPIOverview returns the overview page data
func (h *Handler) HandleAPIOverview(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Dashboard().Overview(r.Context()))
}

// HandleAPIMarket returns the market page data
func (h *Handler) HandleAPIMarket(w http.ResponseWriter, r *http.Request) {
	market, err := models.ParseMarket(chi.URLParam(r, "market"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	filter, err := ParseStockTypeFilter(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.Dashboard().Market(r.Context(), market, filter))
}

// HandleAPIStockDetail returns the stock detail page data. Section failures are reported inline.
func (h *Handler) HandleAPIStockDetail(w http.ResponseWriter, r *http.Request) {
	symbol, err := app.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.Dashboard().StockDetail(r.Context(), symbol))
}

// HandleTopSignals returns the ranked signals, optionally for one market
func (h *Handler) HandleTopSignals(w http.ResponseWriter, r *http.Request) {
	params := services.TopSignalsParams{Limit: h.ParseLimitParam(r, 10)}
	if m := r.URL.Query().Get("market"); m != "" {
		market, err := models.ParseMarket(m)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		params.Market = market
	}

	signals, err := h.app.API().GetTopSignals(r.Context(), params)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.jsonResponse(w, signals)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := h.app.Health()
	if health.Status != app.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(health)
		return
	}
	h.jsonResponse(w, health)
}

// WatchlistResponse is the result of a watchlist request
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
	Symbol  string   `json:"symbol,omitempty"`
	Changed bool     `json:"changed"`
}

// HandleGetWatchlist returns the watchlist symbols in insertion order
func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, WatchlistResponse{Symbols: h.app.Watchlist().Symbols()})
}

// HandleAddToWatchlist adds a symbol. Adding a present symbol is a no-op.
func (h *Handler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol, added, err := h.app.AddToWatchlist(chi.URLParam(r, "symbol"))
	if err != nil {
		h.watchlistError(w, r, err.Error())
		return
	}

	if isHTMXRequest(r) {
		h.htmlResponse(w, views.WatchlistButton(symbol, true), r)
		return
	}
	h.jsonResponse(w, WatchlistResponse{Symbols: h.app.Watchlist().Symbols(), Symbol: symbol, Changed: added})
}

// HandleRemoveFromWatchlist removes a symbol. Removing an absent symbol is a no-op.
func (h *Handler) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol, removed, err := h.app.RemoveFromWatchlist(chi.URLParam(r, "symbol"))
	if err != nil {
		h.watchlistError(w, r, err.Error())
		return
	}

	if isHTMXRequest(r) {
		h.htmlResponse(w, views.WatchlistButton(symbol, false), r)
		return
	}
	h.jsonResponse(w, WatchlistResponse{Symbols: h.app.Watchlist().Symbols(), Symbol: symbol, Changed: removed})
}

func (h *Handler) watchlistError(w http.ResponseWriter, r *http.Request, message string) {
	if isHTMXRequest(r) {
		h.htmlError(w, message, r)
		return
	}
	h.jsonError(w, message, http.StatusBadRequest)
}

// ParseStockTypeFilter reads the type query parameter, defaulting to ALL
func ParseStockTypeFilter(r *http.Request) (string, error) {
	filter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type")))
	switch filter {
	case "", viewmodel.FilterAll:
		return viewmodel.FilterAll, nil
	case string(models.StockTypeGrowth), string(models.StockTypeDividend), string(models.StockTypeHybrid):
		return filter, nil
	default:
		return "", &services.APIError{
			Kind:    services.KindValidation,
			Message: "unknown stock type filter " + strconv.Quote(filter),
			Code:    services.CodeInvalidInput,
		}
	}
}

// ParseLimitParam parses the limit query parameter, capped at MaxSignalsLimit
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > MaxSignalsLimit {
				return MaxSignalsLimit
			}
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// apiError reports a failed signals API call with the upstream classification
func (h *Handler) apiError(w http.ResponseWriter, err error) {
	apiErr, ok := services.AsAPIError(err)
	if !ok {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusBadGateway
	switch {
	case apiErr.Kind == services.KindValidation:
		status = http.StatusBadRequest
	case services.IsNotFound(apiErr):
		status = http.StatusNotFound
	case apiErr.Code == services.CodeCircuitOpen || apiErr.Kind == services.KindConfiguration:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"error": apiErr})
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// pageResponse renders a full page, or only its body for HTMX requests
func (h *Handler) pageResponse(w http.ResponseWriter, r *http.Request, status int, title string, body templComponent) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if isHTMXRequest(r) {
		body.Render(r.Context(), w)
		return
	}
	views.Layout(title, body).Render(r.Context(), w)
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	component.Render(r.Context(), w)
}

// htmlError renders an error state as HTML
func (h *Handler) htmlError(w http.ResponseWriter, message string, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	views.ErrorState(message).Render(r.Context(), w)
}
