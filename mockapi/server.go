// Package mockapi serves a fake signals API from fixtures, with failure injection for tests
// and local development.
package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"signal-dashboard/models"
)

// AnyPath matches every request when used as a failure key
const AnyPath = "*"

// Server is an http.Handler that answers the signals API routes under /api/v1.
type Server struct {
	mu       sync.RWMutex
	router   chi.Router
	server   *httptest.Server
	fixtures *Fixtures

	// Error injection keyed by path below /api/v1, or AnyPath
	failures map[string]Failure

	// Request tracking for assertions
	requestLog []RequestLog

	now func() time.Time
}

// Failure replaces the normal response of a path.
// With Raw set the body is written verbatim with Status (default 200).
// Otherwise an unsuccessful envelope is written with Status (default 500).
type Failure struct {
	Status  int
	Code    string
	Message string
	Raw     string
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
	Query  string
}

// NewServer creates a handler serving fixtures. Nil fixtures use DefaultFixtures.
func NewServer(fixtures *Fixtures) *Server {
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}

	s := &Server{
		fixtures:   fixtures,
		failures:   make(map[string]Failure),
		requestLog: make([]RequestLog, 0),
		now:        time.Now,
	}
	s.router = s.routes()
	return s
}

// NewTestServer starts a listening server on a loopback port.
func NewTestServer(fixtures *Fixtures) *Server {
	s := NewServer(fixtures)
	s.server = httptest.NewServer(s)
	return s
}

// URL returns the base URL of a server started with NewTestServer.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down a server started with NewTestServer.
func (s *Server) Close() {
	if s.server != nil {
		s.server.Close()
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RequestLog returns all logged requests.
func (s *Server) RequestLog() []RequestLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RequestLog{}, s.requestLog...)
}

// ClearRequestLog clears the request log.
func (s *Server) ClearRequestLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestLog = make([]RequestLog, 0)
}

// SetFailure makes requests to path fail. path is relative to /api/v1, e.g. "/stocks/AAPL/backtest".
func (s *Server) SetFailure(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = f
}

// ClearFailures removes all injected failures.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
}

// SetFixtures replaces the served data.
func (s *Server) SetFixtures(f *Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures = f
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.recordRequest)
		r.Use(s.injectFailure)

		r.Get("/stocks", s.handleListStocks)
		r.Route("/stocks/{symbol}", func(r chi.Router) {
			r.Get("/", s.handleGetStock)
			r.Get("/prices", s.handlePrices)
			r.Get("/fundamentals", s.handleFundamentals)
			r.Get("/indicators", s.handleIndicators)
			r.Get("/signal", s.handleSignal)
			r.Get("/signal/history", s.handleSignalHistory)
			r.Get("/backtest", s.handleBacktest)
		})
		r.Get("/signals/top", s.handleTopSignals)
		r.Get("/markets/{market}/stocks", s.handleMarketStocks)
		r.Get("/markets/{market}/highlights", s.handleMarketHighlights)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestLog = append(s.requestLog, RequestLog{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")

		s.mu.RLock()
		f, ok := s.failures[path]
		if !ok {
			f, ok = s.failures[AnyPath]
		}
		s.mu.RUnlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if f.Raw != "" {
			status := f.Status
			if status == 0 {
				status = http.StatusOK
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(f.Raw))
			return
		}

		status := f.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		s.writeError(w, status, f.Code, f.Message)
	})
}

func (s *Server) data() *Fixtures {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixtures
}

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	f := s.data()
	q := r.URL.Query()

	stocks := make([]models.Stock, 0, len(f.Stocks))
	for _, st := range f.Stocks {
		if m := q.Get("market"); m != "" && !strings.EqualFold(string(st.Market), m) {
			continue
		}
		if sector := q.Get("sector"); sector != "" && !strings.EqualFold(st.Sector, sector) {
			continue
		}
		if t := q.Get("stock_type"); t != "" && !st.HasStockType(models.StockType(strings.ToUpper(t))) {
			continue
		}
		if a := q.Get("asset_type"); a != "" && !strings.EqualFold(string(st.AssetType), a) {
			continue
		}
		stocks = append(stocks, st)
	}

	stocks = paginate(stocks, atoi(q.Get("page")), atoi(q.Get("limit")))
	s.writeList(w, f, stocks)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	s.writeData(w, stock)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}

	f := s.data()
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	prices := make([]models.StockPrice, 0)
	for _, p := range f.Prices[stock.Symbol] {
		day := p.Time.DateString()
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		prices = append(prices, p)
	}
	s.writeList(w, f, prices)
}

func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	fundamental, ok := s.data().Fundamentals[stock.Symbol]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "no fundamentals for "+stock.Symbol)
		return
	}
	s.writeData(w, fundamental)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	f := s.data()
	indicators := f.Indicators[stock.Symbol]
	if indicators == nil {
		indicators = []models.TechnicalIndicators{}
	}
	s.writeList(w, f, indicators)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	signal, ok := s.data().SignalForStock(stock)
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "no signal for "+stock.Symbol)
		return
	}
	s.writeData(w, signal)
}

func (s *Server) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	f := s.data()
	history := f.SignalHistory[stock.Symbol]
	if history == nil {
		history = []models.Signal{}
	}
	s.writeList(w, f, history)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.stock(w, r)
	if !ok {
		return
	}
	result, ok := s.data().Backtests[stock.Symbol]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "no backtest for "+stock.Symbol)
		return
	}
	s.writeData(w, result)
}

func (s *Server) handleTopSignals(w http.ResponseWriter, r *http.Request) {
	f := s.data()
	market := r.URL.Query().Get("market")

	markets := make(map[string]models.Market, len(f.Stocks))
	for _, st := range f.Stocks {
		markets[st.ID] = st.Market
		markets[st.Symbol] = st.Market
	}

	signals := make([]models.Signal, 0, len(f.Signals))
	for _, sig := range f.Signals {
		if market != "" && !strings.EqualFold(string(markets[sig.StockID]), market) {
			continue
		}
		signals = append(signals, sig)
	}

	if limit := atoi(r.URL.Query().Get("limit")); limit > 0 && limit < len(signals) {
		signals = signals[:limit]
	}
	s.writeList(w, f, signals)
}

func (s *Server) handleMarketStocks(w http.ResponseWriter, r *http.Request) {
	market, ok := s.market(w, r)
	if !ok {
		return
	}

	f := s.data()
	assetType := r.URL.Query().Get("asset_type")

	stocks := make([]models.Stock, 0)
	for _, st := range f.Stocks {
		if st.Market != market {
			continue
		}
		if assetType != "" && !strings.EqualFold(string(st.AssetType), assetType) {
			continue
		}
		stocks = append(stocks, st)
	}
	s.writeList(w, f, stocks)
}

func (s *Server) handleMarketHighlights(w http.ResponseWriter, r *http.Request) {
	market, ok := s.market(w, r)
	if !ok {
		return
	}
	highlights := s.data().Highlights[string(market)]
	if highlights == nil {
		highlights = models.MarketHighlights{}
	}
	s.writeData(w, highlights)
}

func (s *Server) stock(w http.ResponseWriter, r *http.Request) (models.Stock, bool) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	stock, ok := s.data().StockBySymbol(symbol)
	if !ok {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "stock "+symbol+" not found")
		return models.Stock{}, false
	}
	return stock, true
}

func (s *Server) market(w http.ResponseWriter, r *http.Request) (models.Market, bool) {
	market, err := models.ParseMarket(chi.URLParam(r, "market"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_MARKET", err.Error())
		return "", false
	}
	return market, true
}

func (s *Server) meta() map[string]any {
	return map[string]any{
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"cache_hit": false,
	}
}

func (s *Server) writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"meta":    s.meta(),
	})
}

func (s *Server) writeList(w http.ResponseWriter, f *Fixtures, items any) {
	if f.WrapLists {
		s.writeData(w, map[string]any{"items": items})
		return
	}
	s.writeData(w, items)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
		"meta": s.meta(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return items[:0]
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
