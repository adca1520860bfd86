package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"signal-dashboard/config"
	"signal-dashboard/mockapi"
	"signal-dashboard/models"
	"signal-dashboard/observability"
	"signal-dashboard/services"
	"signal-dashboard/watchlist"
)

func newTestService(t *testing.T) (*Service, *mockapi.Server, *observability.Metrics) {
	t.Helper()

	api := mockapi.NewTestServer(nil)
	t.Cleanup(api.Close)

	cfg := config.NewTestConfig()
	cfg.API.RawBaseURL = api.URL()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	client := services.NewSignalsClient(services.NewTransport(cfg, services.WithMetrics(metrics)))
	return NewService(client, watchlist.New(metrics), metrics), api, metrics
}

func TestOverview(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.Watchlist().Add("KO")

	page := svc.Overview(context.Background())

	if !page.TopSignals.OK() {
		t.Fatalf("Expected top signals to load, got %v", page.TopSignals.Error)
	}
	if len(page.TopSignals.Data) != 4 {
		t.Fatalf("Expected 4 top signals, got %d", len(page.TopSignals.Data))
	}

	first := page.TopSignals.Data[0]
	if first.Signal.ID != "sig-aapl" {
		t.Errorf("Expected server rank order, got %s first", first.Signal.ID)
	}
	if first.Badge.Label != "BUY" || first.Badge.Confidence != "(86%)" {
		t.Errorf("Unexpected badge %+v", first.Badge)
	}

	if page.ActiveSignal.Data != 4 {
		t.Errorf("Expected 4 active signals, got %d", page.ActiveSignal.Data)
	}
	if len(page.Watchlist) != 1 || page.Watchlist[0] != "KO" {
		t.Errorf("Expected watchlist [KO], got %v", page.Watchlist)
	}
	if len(page.Markets) != 2 {
		t.Errorf("Expected 2 markets, got %v", page.Markets)
	}
}

func TestOverview_RequestLimits(t *testing.T) {
	svc, api, _ := newTestService(t)

	svc.Overview(context.Background())

	queries := map[string]bool{}
	for _, req := range api.RequestLog() {
		if req.Path == "/api/v1/signals/top" {
			queries[req.Query] = true
		}
	}
	if !queries["limit=10"] || !queries["limit=100"] {
		t.Errorf("Expected top signal requests with limits 10 and 100, got %v", queries)
	}
}

func TestOverview_FailureKeepsWatchlist(t *testing.T) {
	svc, api, metrics := newTestService(t)
	svc.Watchlist().Add("AAPL")
	api.SetFailure("/signals/top", mockapi.Failure{Status: http.StatusServiceUnavailable, Code: "UNAVAILABLE", Message: "ranking offline"})

	page := svc.Overview(context.Background())

	if page.TopSignals.OK() || page.ActiveSignal.OK() {
		t.Fatal("Expected both signal sections to fail")
	}
	if page.TopSignals.Error.Message != "ranking offline" {
		t.Errorf("Expected server message, got %q", page.TopSignals.Error.Message)
	}
	if page.TopSignals.Data == nil || len(page.TopSignals.Data) != 0 {
		t.Errorf("Expected empty rows on failure, got %v", page.TopSignals.Data)
	}
	if len(page.Watchlist) != 1 {
		t.Errorf("Expected watchlist to render regardless, got %v", page.Watchlist)
	}
	if got := testutil.ToFloat64(metrics.SectionErrorsTotal.WithLabelValues(PageOverview, "top_signals")); got != 1 {
		t.Errorf("Expected 1 section error, got %f", got)
	}
}

func TestMarket_JoinAndFilter(t *testing.T) {
	svc, _, _ := newTestService(t)

	page := svc.Market(context.Background(), models.MarketUS, "")
	if page.Filter != "ALL" {
		t.Errorf("Expected default filter ALL, got %q", page.Filter)
	}
	if !page.Stocks.OK() || len(page.Stocks.Data) != 4 {
		t.Fatalf("Expected 4 US stocks, got %d (%v)", len(page.Stocks.Data), page.Stocks.Error)
	}
	if page.Signals.Data != 2 {
		t.Errorf("Expected 2 US signals, got %d", page.Signals.Data)
	}

	bySymbol := map[string]int{}
	for i, row := range page.Stocks.Data {
		bySymbol[row.Stock.Symbol] = i
	}
	aapl := page.Stocks.Data[bySymbol["AAPL"]]
	if aapl.Signal == nil || aapl.Signal.ID != "sig-aapl" || aapl.TypeLabel != "Growth Stock" {
		t.Errorf("Expected AAPL joined with its signal, got %+v", aapl)
	}
	if msft := page.Stocks.Data[bySymbol["MSFT"]]; msft.Signal != nil {
		t.Errorf("Expected MSFT without signal, got %+v", msft.Signal)
	}
	if spy := page.Stocks.Data[bySymbol["SPY"]]; spy.Asset != "ETF" || spy.TypeLabel != "" {
		t.Errorf("Expected SPY labelled as ETF only, got %+v", spy)
	}

	growth := svc.Market(context.Background(), models.MarketUS, "GROWTH")
	if len(growth.Stocks.Data) != 1 || growth.Stocks.Data[0].Stock.Symbol != "AAPL" {
		t.Errorf("Expected only AAPL for GROWTH, got %+v", growth.Stocks.Data)
	}
}

func TestMarket_SignalFailureStillListsStocks(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.SetFailure("/signals/top", mockapi.Failure{Status: http.StatusBadGateway, Raw: "bad gateway"})

	page := svc.Market(context.Background(), models.MarketNGX, "ALL")

	if !page.Stocks.OK() || len(page.Stocks.Data) != 2 {
		t.Fatalf("Expected NGX stocks to load, got %v", page.Stocks.Error)
	}
	for _, row := range page.Stocks.Data {
		if row.Signal != nil {
			t.Errorf("Expected no joined signals, got %+v", row.Signal)
		}
	}
	if page.Signals.OK() || page.Signals.Error.Kind != services.KindHTTP || page.Signals.Error.Status != http.StatusBadGateway {
		t.Errorf("Expected HTTP 502 signal error, got %+v", page.Signals.Error)
	}
}

func TestStockDetail(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.Watchlist().Add("AAPL")

	page := svc.StockDetail(context.Background(), "AAPL")

	for name, err := range map[string]*services.APIError{
		"stock":        page.Stock.Error,
		"prices":       page.Prices.Error,
		"signal":       page.Signal.Error,
		"fundamentals": page.Fundamentals.Error,
		"indicators":   page.Indicators.Error,
		"backtest":     page.Backtest.Error,
	} {
		if err != nil {
			t.Errorf("Expected %s to load, got %v", name, err)
		}
	}

	if !page.InWatchlist {
		t.Error("Expected AAPL to be in the watchlist")
	}
	if page.LatestPrice == nil || page.LatestPrice.Close.String() != "184" {
		t.Errorf("Expected latest close 184, got %+v", page.LatestPrice)
	}
	if page.ChangeText != "+0.55%" {
		t.Errorf("Expected +0.55%%, got %q", page.ChangeText)
	}
	if page.LatestIndicators == nil || page.LatestIndicators.RSI == nil || *page.LatestIndicators.RSI != 58.2 {
		t.Errorf("Expected the latest indicator snapshot, got %+v", page.LatestIndicators)
	}
	if page.SignalBadge == nil || page.SignalBadge.Variant != "success" {
		t.Errorf("Expected success badge, got %+v", page.SignalBadge)
	}
	if page.TypeLabel != "Growth Stock" || page.AssetLabel != "" {
		t.Errorf("Unexpected labels %q %q", page.TypeLabel, page.AssetLabel)
	}
}

func TestStockDetail_IndependentSectionFailure(t *testing.T) {
	svc, api, metrics := newTestService(t)
	api.SetFailure("/stocks/AAPL/backtest", mockapi.Failure{Status: http.StatusInternalServerError, Code: "BACKTEST_FAILED", Message: "backtest engine down"})

	page := svc.StockDetail(context.Background(), "AAPL")

	if page.Backtest.OK() {
		t.Fatal("Expected backtest to fail")
	}
	if page.Backtest.Error.Code != "BACKTEST_FAILED" || page.Backtest.Error.Kind != services.KindLogical {
		t.Errorf("Unexpected backtest error %+v", page.Backtest.Error)
	}
	if page.Backtest.Data != nil {
		t.Error("Expected no backtest data on failure")
	}
	if !page.Stock.OK() || !page.Prices.OK() || !page.Signal.OK() {
		t.Error("Expected the other sections to load")
	}
	if page.ChangeText == "" {
		t.Error("Expected derived values despite the backtest failure")
	}
	if got := testutil.ToFloat64(metrics.SectionErrorsTotal.WithLabelValues(PageStockDetail, "backtest")); got != 1 {
		t.Errorf("Expected 1 backtest section error, got %f", got)
	}
}

func TestStockDetail_MissingResources(t *testing.T) {
	svc, _, _ := newTestService(t)

	// KO has no backtest and no indicators in the default data
	page := svc.StockDetail(context.Background(), "KO")

	if page.Backtest.OK() || !services.IsNotFound(page.Backtest.Error) {
		t.Errorf("Expected not found backtest, got %+v", page.Backtest.Error)
	}
	if !page.Indicators.OK() || len(page.Indicators.Data) != 0 {
		t.Errorf("Expected empty indicators, got %+v", page.Indicators)
	}
	if page.LatestIndicators != nil {
		t.Error("Expected no latest indicators for an empty series")
	}
	if page.TypeLabel != "Dividend Stock" {
		t.Errorf("Expected Dividend Stock, got %q", page.TypeLabel)
	}
}

func TestStockDetail_InvalidSymbol(t *testing.T) {
	svc, api, _ := newTestService(t)

	page := svc.StockDetail(context.Background(), "../etc")

	if page.Stock.OK() || page.Stock.Error.Kind != services.KindValidation {
		t.Errorf("Expected validation error, got %+v", page.Stock.Error)
	}
	if page.SignalBadge != nil || page.LatestPrice != nil {
		t.Error("Expected no derived values")
	}
	if n := len(api.RequestLog()); n != 0 {
		t.Errorf("Expected no requests for an invalid symbol, got %d", n)
	}
}

func TestStockDetail_UnreachableAPI(t *testing.T) {
	api := mockapi.NewTestServer(nil)
	baseURL := api.URL()
	api.Close()

	cfg := config.NewTestConfig()
	cfg.API.RawBaseURL = baseURL
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	client := services.NewSignalsClient(services.NewTransport(cfg, services.WithMetrics(metrics)))
	svc := NewService(client, watchlist.New(metrics), metrics)

	page := svc.StockDetail(context.Background(), "AAPL")

	if page.Stock.OK() || page.Stock.Error.Kind != services.KindNetwork || page.Stock.Error.Status != 0 {
		t.Errorf("Expected network error with status 0, got %+v", page.Stock.Error)
	}
}
