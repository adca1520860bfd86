package views

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"signal-dashboard/internal/dashboard"
	"signal-dashboard/models"
	"signal-dashboard/services"
	"signal-dashboard/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func TestLayout(t *testing.T) {
	body := render(t, Layout("Overview", ErrorState("boom")))

	for _, want := range []string{"<!doctype html>", "<title>Overview | Signal Dashboard</title>", `href="/markets/US"`, `href="/markets/NGX"`, "boom"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected layout to contain %q", want)
		}
	}
}

func TestErrorState_Escapes(t *testing.T) {
	body := render(t, ErrorState("<script>alert(1)</script>"))
	if strings.Contains(body, "<script>") {
		t.Errorf("Expected message to be escaped, got %s", body)
	}
}

func TestWatchlistButton(t *testing.T) {
	add := render(t, WatchlistButton("AAPL", false))
	if !strings.Contains(add, `hx-put="/api/watchlist/AAPL"`) || !strings.Contains(add, "Add to Watchlist") {
		t.Errorf("Unexpected add button %s", add)
	}

	remove := render(t, WatchlistButton("AAPL", true))
	if !strings.Contains(remove, `hx-delete="/api/watchlist/AAPL"`) || !strings.Contains(remove, "Remove from Watchlist") {
		t.Errorf("Unexpected remove button %s", remove)
	}
}

func TestOverview(t *testing.T) {
	confidence := 86.0
	page := &dashboard.OverviewPage{
		TopSignals: dashboard.Section[[]dashboard.SignalRow]{Data: []dashboard.SignalRow{{
			Signal: models.Signal{StockID: "stk-aapl", SignalType: models.SignalTypeBuy, RiskLevel: models.RiskLevelLow},
			Badge:  viewmodel.SignalBadge(models.SignalTypeBuy, &confidence),
		}}},
		ActiveSignal: dashboard.Section[int]{Data: 12},
		Watchlist:    []string{"KO"},
		Markets:      models.Markets,
	}

	body := render(t, Overview(page))
	for _, want := range []string{`<span class="badge badge-success">BUY (86%)</span>`, `<span class="value">12</span>`, `href="/stocks/KO"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected overview to contain %q", want)
		}
	}
}

func TestOverview_SectionError(t *testing.T) {
	page := &dashboard.OverviewPage{
		TopSignals:   dashboard.Section[[]dashboard.SignalRow]{Error: &services.APIError{Kind: services.KindNetwork, Message: "connection refused"}},
		ActiveSignal: dashboard.Section[int]{Error: &services.APIError{Kind: services.KindNetwork, Message: "connection refused"}},
	}

	body := render(t, Overview(page))
	if !strings.Contains(body, "Failed to load top signals: connection refused") {
		t.Errorf("Expected section error, got %s", body)
	}
	if !strings.Contains(body, "Your watchlist is empty.") {
		t.Error("Expected the watchlist to render despite the failure")
	}
}

func TestMarket(t *testing.T) {
	growth := models.StockTypeGrowth
	confidence := 70.0
	sig := models.Signal{SignalType: models.SignalTypeSell}
	page := &dashboard.MarketPage{
		Market: models.MarketNGX,
		Filter: "GROWTH",
		Stocks: dashboard.Section[[]viewmodel.StockRow]{Data: []viewmodel.StockRow{
			{Stock: models.Stock{Symbol: "MTNN", Name: "MTN Nigeria", StockType: &growth}, Signal: &sig,
				Badge: viewmodel.SignalBadge(models.SignalTypeSell, &confidence), TypeLabel: "Growth Stock"},
			{Stock: models.Stock{Symbol: "NEWCO", Name: "New Co"}},
		}},
	}

	body := render(t, Market(page))
	for _, want := range []string{
		"NGX Market",
		`<a class="filter" href="/markets/NGX?type=ALL">All</a>`,
		`<a class="filter active" href="/markets/NGX?type=GROWTH">Growth</a>`,
		"badge-danger", "No signal", "Growth Stock",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected market page to contain %q", want)
		}
	}
}

func TestStockDetail(t *testing.T) {
	rsi := 61.5
	revenue := 394_330_000_000.0
	change := decimal.RequireFromString("-1.25")
	badge := viewmodel.SignalBadge(models.SignalTypeHold, nil)
	price := models.StockPrice{Close: decimal.RequireFromString("187.4")}

	page := &dashboard.StockDetailPage{
		Symbol:           "AAPL",
		Stock:            dashboard.Section[*models.Stock]{Data: &models.Stock{Symbol: "AAPL", Name: "Apple Inc.", Market: models.MarketUS, Currency: "USD"}},
		Signal:           dashboard.Section[*models.Signal]{Data: &models.Signal{SignalType: models.SignalTypeHold, Explanation: models.SignalExplanation{Summary: "Wait", Triggers: []string{"Range bound"}}}},
		Fundamentals:     dashboard.Section[*models.Fundamental]{Data: &models.Fundamental{Revenue: &revenue}},
		Backtest:         dashboard.Section[*models.BacktestResult]{Error: &services.APIError{Kind: services.KindHTTP, Status: 404, Message: "HTTP 404: Not Found"}},
		InWatchlist:      true,
		LatestPrice:      &price,
		Change:           &change,
		ChangeText:       viewmodel.FormatChange(change),
		LatestIndicators: &models.TechnicalIndicators{RSI: &rsi},
		SignalBadge:      &badge,
	}

	body := render(t, StockDetail(page))
	for _, want := range []string{
		"Apple Inc.", "187.40", `<span class="change negative">-1.25%</span>`, "badge-warning", "Range bound",
		"USD 394.33B", "61.50", "N/A", "No data available.", "Remove from Watchlist",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected stock detail to contain %q", want)
		}
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := Overview(&dashboard.OverviewPage{}).Render(ctx, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %s", buf.String())
	}
}

func TestSectionErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *services.APIError
		want string
	}{
		{"not found", &services.APIError{Kind: services.KindHTTP, Status: 404, Message: "HTTP 404: Not Found"}, "No data available."},
		{"network", &services.APIError{Kind: services.KindNetwork, Message: "connection refused"}, "Failed to load prices: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sectionErrorMessage("prices", tt.err); got != tt.want {
				t.Errorf("sectionErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStockMeta(t *testing.T) {
	page := &dashboard.StockDetailPage{
		Stock:     dashboard.Section[*models.Stock]{Data: &models.Stock{Market: models.MarketNGX, Sector: "Telecoms"}},
		TypeLabel: "Growth Stock",
	}
	if got, want := stockMeta(page), "NGX · Telecoms · Growth Stock"; got != want {
		t.Errorf("stockMeta() = %q, want %q", got, want)
	}
}

func TestFundamentalTerms_DividendData(t *testing.T) {
	yield := 3.1
	dps := 1.84
	page := &dashboard.StockDetailPage{
		Fundamentals: dashboard.Section[*models.Fundamental]{Data: &models.Fundamental{DividendYield: &yield, DividendPerShare: &dps}},
	}

	names := make([]string, 0)
	for _, item := range fundamentalTerms(page) {
		names = append(names, item.Name)
	}
	got := strings.Join(names, ",")
	if want := "EPS,P/E Ratio,Debt Ratio,Dividend Yield,Dividend / Share"; got != want {
		t.Errorf("fundamentalTerms() names = %s, want %s", got, want)
	}
}
