// Package dashboard assembles the data behind each dashboard page.
// Every remote resource is loaded independently so one failure never hides the others.
package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"signal-dashboard/models"
	"signal-dashboard/observability"
	"signal-dashboard/services"
	"signal-dashboard/viewmodel"
	"signal-dashboard/watchlist"
)

const (
	TopSignalsLimit    = 10
	SignalCountLimit   = 100
	MarketSignalsLimit = 100
	DefaultInterval    = "1d"
)

// Page names used for section metrics
const (
	PageOverview    = "overview"
	PageMarket      = "market"
	PageStockDetail = "stock_detail"
)

// Section is one independently loaded part of a page
type Section[T any] struct {
	Data  T                  `json:"data"`
	Error *services.APIError `json:"error,omitempty"`
}

// OK reports whether the section loaded
func (s Section[T]) OK() bool {
	return s.Error == nil
}

// OverviewPage is the landing page
type OverviewPage struct {
	TopSignals   Section[[]SignalRow] `json:"top_signals"`
	ActiveSignal Section[int]         `json:"active_signals"`
	Watchlist    []string             `json:"watchlist"`
	Markets      []models.Market      `json:"markets"`
}

// SignalRow is a signal with its display badge
type SignalRow struct {
	Signal models.Signal   `json:"signal"`
	Badge  viewmodel.Badge `json:"badge"`
}

// MarketPage lists the stocks of one market with their signals
type MarketPage struct {
	Market  models.Market                 `json:"market"`
	Filter  string                        `json:"filter"`
	Stocks  Section[[]viewmodel.StockRow] `json:"stocks"`
	Signals Section[int]                  `json:"signals"`
}

// StockDetailPage is everything known about one symbol
type StockDetailPage struct {
	Symbol       string                                `json:"symbol"`
	Stock        Section[*models.Stock]                `json:"stock"`
	Prices       Section[[]models.StockPrice]          `json:"prices"`
	Signal       Section[*models.Signal]               `json:"signal"`
	Fundamentals Section[*models.Fundamental]          `json:"fundamentals"`
	Indicators   Section[[]models.TechnicalIndicators] `json:"indicators"`
	Backtest     Section[*models.BacktestResult]       `json:"backtest"`
	InWatchlist  bool                                  `json:"in_watchlist"`

	LatestPrice      *models.StockPrice          `json:"latest_price,omitempty"`
	Change           *decimal.Decimal            `json:"change,omitempty"`
	ChangeText       string                      `json:"change_text,omitempty"`
	LatestIndicators *models.TechnicalIndicators `json:"latest_indicators,omitempty"`
	SignalBadge      *viewmodel.Badge            `json:"signal_badge,omitempty"`
	TypeLabel        string                      `json:"type_label,omitempty"`
	AssetLabel       string                      `json:"asset_label,omitempty"`
}

// Service loads dashboard pages from the signals API
type Service struct {
	api       services.SignalsAPI
	watchlist *watchlist.Store
	metrics   *observability.Metrics
}

// NewService creates a new Service instance
func NewService(api services.SignalsAPI, store *watchlist.Store, metrics *observability.Metrics) *Service {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Service{api: api, watchlist: store, metrics: metrics}
}

// Watchlist returns the session watchlist
func (s *Service) Watchlist() *watchlist.Store {
	return s.watchlist
}

// Overview loads the top signals and the active signal count
func (s *Service) Overview(ctx context.Context) *OverviewPage {
	page := &OverviewPage{
		Watchlist: s.watchlist.Symbols(),
		Markets:   models.Markets,
	}

	var g errgroup.Group
	g.Go(func() error {
		signals := load(ctx, s, PageOverview, "top_signals", func(ctx context.Context) ([]models.Signal, error) {
			return s.api.GetTopSignals(ctx, services.TopSignalsParams{Limit: TopSignalsLimit})
		})
		page.TopSignals = Section[[]SignalRow]{Data: signalRows(signals.Data), Error: signals.Error}
		return nil
	})
	g.Go(func() error {
		signals := load(ctx, s, PageOverview, "active_signals", func(ctx context.Context) ([]models.Signal, error) {
			return s.api.GetTopSignals(ctx, services.TopSignalsParams{Limit: SignalCountLimit})
		})
		page.ActiveSignal = Section[int]{Data: len(signals.Data), Error: signals.Error}
		return nil
	})
	_ = g.Wait()

	return page
}

// Market loads the stocks of market joined with its top signals, filtered by stock type
func (s *Service) Market(ctx context.Context, market models.Market, filter string) *MarketPage {
	if filter == "" {
		filter = viewmodel.FilterAll
	}
	page := &MarketPage{Market: market, Filter: filter}

	var (
		stocks  Section[[]models.Stock]
		signals Section[[]models.Signal]
		g       errgroup.Group
	)
	g.Go(func() error {
		stocks = load(ctx, s, PageMarket, "stocks", func(ctx context.Context) ([]models.Stock, error) {
			return s.api.GetMarketStocks(ctx, market, services.MarketStocksParams{})
		})
		return nil
	})
	g.Go(func() error {
		signals = load(ctx, s, PageMarket, "signals", func(ctx context.Context) ([]models.Signal, error) {
			return s.api.GetTopSignals(ctx, services.TopSignalsParams{Market: market, Limit: MarketSignalsLimit})
		})
		return nil
	})
	_ = g.Wait()

	filtered := viewmodel.FilterByStockType(stocks.Data, filter)
	page.Stocks = Section[[]viewmodel.StockRow]{
		Data:  viewmodel.JoinStocks(filtered, signals.Data),
		Error: stocks.Error,
	}
	page.Signals = Section[int]{Data: len(signals.Data), Error: signals.Error}

	return page
}

// StockDetail loads the six resources of one symbol concurrently and derives the display values
func (s *Service) StockDetail(ctx context.Context, symbol string) *StockDetailPage {
	page := &StockDetailPage{
		Symbol:      symbol,
		InWatchlist: s.watchlist.Contains(symbol),
	}

	var g errgroup.Group
	g.Go(func() error {
		page.Stock = load(ctx, s, PageStockDetail, "stock", func(ctx context.Context) (*models.Stock, error) {
			return s.api.GetStock(ctx, symbol)
		})
		return nil
	})
	g.Go(func() error {
		page.Prices = load(ctx, s, PageStockDetail, "prices", func(ctx context.Context) ([]models.StockPrice, error) {
			return s.api.GetPrices(ctx, symbol, services.PriceParams{Interval: DefaultInterval})
		})
		return nil
	})
	g.Go(func() error {
		page.Signal = load(ctx, s, PageStockDetail, "signal", func(ctx context.Context) (*models.Signal, error) {
			return s.api.GetSignal(ctx, symbol)
		})
		return nil
	})
	g.Go(func() error {
		page.Fundamentals = load(ctx, s, PageStockDetail, "fundamentals", func(ctx context.Context) (*models.Fundamental, error) {
			return s.api.GetFundamentals(ctx, symbol)
		})
		return nil
	})
	g.Go(func() error {
		page.Indicators = load(ctx, s, PageStockDetail, "indicators", func(ctx context.Context) ([]models.TechnicalIndicators, error) {
			return s.api.GetIndicators(ctx, symbol)
		})
		return nil
	})
	g.Go(func() error {
		page.Backtest = load(ctx, s, PageStockDetail, "backtest", func(ctx context.Context) (*models.BacktestResult, error) {
			return s.api.GetBacktest(ctx, symbol)
		})
		return nil
	})
	_ = g.Wait()

	page.derive()
	return page
}

func (p *StockDetailPage) derive() {
	if latest, ok := viewmodel.Latest(p.Prices.Data); ok {
		p.LatestPrice = &latest
	}
	if change, ok := viewmodel.PercentChange(p.Prices.Data); ok {
		p.Change = &change
		p.ChangeText = viewmodel.FormatChange(change)
	}
	if latest, ok := viewmodel.Latest(p.Indicators.Data); ok {
		p.LatestIndicators = &latest
	}
	if sig := p.Signal.Data; sig != nil {
		badge := viewmodel.SignalBadge(sig.SignalType, &sig.ConfidenceScore)
		p.SignalBadge = &badge
	}
	if stock := p.Stock.Data; stock != nil {
		p.TypeLabel = viewmodel.StockTypeLabel(stock.StockType)
		p.AssetLabel = viewmodel.AssetTypeLabel(stock.AssetType)
	}
}

func signalRows(signals []models.Signal) []SignalRow {
	rows := make([]SignalRow, 0, len(signals))
	for _, sig := range signals {
		rows = append(rows, SignalRow{
			Signal: sig,
			Badge:  viewmodel.SignalBadge(sig.SignalType, &sig.ConfidenceScore),
		})
	}
	return rows
}

// load runs fn and captures its failure in the section instead of returning it
func load[T any](ctx context.Context, s *Service, page, section string, fn func(ctx context.Context) (T, error)) Section[T] {
	data, err := fn(ctx)
	if err == nil {
		return Section[T]{Data: data}
	}

	apiErr, ok := services.AsAPIError(err)
	if !ok {
		apiErr = &services.APIError{
			Kind:    services.KindUnknown,
			Message: err.Error(),
			Code:    services.CodeUnknownError,
		}
	}

	s.metrics.RecordSectionError(page, section)
	observability.WithError(err).Warn("page section failed",
		"page", page,
		"section", section,
		"kind", apiErr.Kind,
		"status", apiErr.Status)

	var zero T
	return Section[T]{Data: zero, Error: apiErr}
}
