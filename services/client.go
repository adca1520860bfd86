package services

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"signal-dashboard/models"
)

// Resource names used for metrics, logging and circuit breakers
const (
	ResourceStocks           = "stocks"
	ResourceStock            = "stock"
	ResourcePrices           = "prices"
	ResourceFundamentals     = "fundamentals"
	ResourceIndicators       = "indicators"
	ResourceSignal           = "signal"
	ResourceSignalHistory    = "signal_history"
	ResourceTopSignals       = "top_signals"
	ResourceMarketStocks     = "market_stocks"
	ResourceMarketHighlights = "market_highlights"
	ResourceBacktest         = "backtest"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-_]{0,19}$`)

// StockListParams filters the stock listing. Zero values are omitted from the query.
type StockListParams struct {
	Market    models.Market
	Sector    string
	StockType models.StockType
	AssetType models.AssetType
	Page      int
	Limit     int
}

// PriceParams bounds a price series. Dates are YYYY-MM-DD.
type PriceParams struct {
	StartDate string
	EndDate   string
	Interval  string
}

// TopSignalsParams filters the ranked signal list
type TopSignalsParams struct {
	Market models.Market
	Limit  int
}

// MarketStocksParams filters the stocks of one market
type MarketStocksParams struct {
	AssetType models.AssetType
}

// SignalsClient exposes one typed method per signals API resource
type SignalsClient struct {
	transport *Transport
}

// NewSignalsClient creates a new SignalsClient instance
func NewSignalsClient(transport *Transport) *SignalsClient {
	return &SignalsClient{transport: transport}
}

// Transport returns the underlying transport
func (c *SignalsClient) Transport() *Transport {
	return c.transport
}

// ListStocks returns the stock listing in server order
func (c *SignalsClient) ListStocks(ctx context.Context, params StockListParams) ([]models.Stock, error) {
	query := url.Values{}
	if params.Market != "" {
		if err := validateMarket(params.Market); err != nil {
			return nil, err
		}
		query.Set("market", string(params.Market))
	}
	if params.Sector != "" {
		query.Set("sector", params.Sector)
	}
	if params.StockType != "" {
		query.Set("stock_type", string(params.StockType))
	}
	if params.AssetType != "" {
		query.Set("asset_type", string(params.AssetType))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	return getList[models.Stock](ctx, c, ResourceStocks, "/stocks", query)
}

// GetStock returns a single stock by symbol
func (c *SignalsClient) GetStock(ctx context.Context, symbol string) (*models.Stock, error) {
	path, err := symbolPath(symbol, "")
	if err != nil {
		return nil, err
	}
	return getObject[models.Stock](ctx, c, ResourceStock, path, nil)
}

// GetPrices returns the time-ordered price series of a symbol
func (c *SignalsClient) GetPrices(ctx context.Context, symbol string, params PriceParams) ([]models.StockPrice, error) {
	path, err := symbolPath(symbol, "/prices")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if params.StartDate != "" {
		query.Set("start_date", params.StartDate)
	}
	if params.EndDate != "" {
		query.Set("end_date", params.EndDate)
	}
	if params.Interval != "" {
		query.Set("interval", params.Interval)
	}

	return getList[models.StockPrice](ctx, c, ResourcePrices, path, query)
}

// GetFundamentals returns the latest fundamentals of a symbol
func (c *SignalsClient) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamental, error) {
	path, err := symbolPath(symbol, "/fundamentals")
	if err != nil {
		return nil, err
	}
	return getObject[models.Fundamental](ctx, c, ResourceFundamentals, path, nil)
}

// GetIndicators returns the indicator series of a symbol, oldest first
func (c *SignalsClient) GetIndicators(ctx context.Context, symbol string) ([]models.TechnicalIndicators, error) {
	path, err := symbolPath(symbol, "/indicators")
	if err != nil {
		return nil, err
	}
	return getList[models.TechnicalIndicators](ctx, c, ResourceIndicators, path, nil)
}

// GetSignal returns the current signal of a symbol
func (c *SignalsClient) GetSignal(ctx context.Context, symbol string) (*models.Signal, error) {
	path, err := symbolPath(symbol, "/signal")
	if err != nil {
		return nil, err
	}
	return getObject[models.Signal](ctx, c, ResourceSignal, path, nil)
}

// GetSignalHistory returns past signals of a symbol
func (c *SignalsClient) GetSignalHistory(ctx context.Context, symbol string) ([]models.Signal, error) {
	path, err := symbolPath(symbol, "/signal/history")
	if err != nil {
		return nil, err
	}
	return getList[models.Signal](ctx, c, ResourceSignalHistory, path, nil)
}

// GetTopSignals returns signals ranked by the server. The order is preserved.
func (c *SignalsClient) GetTopSignals(ctx context.Context, params TopSignalsParams) ([]models.Signal, error) {
	query := url.Values{}
	if params.Market != "" {
		if err := validateMarket(params.Market); err != nil {
			return nil, err
		}
		query.Set("market", string(params.Market))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	return getList[models.Signal](ctx, c, ResourceTopSignals, "/signals/top", query)
}

// GetMarketStocks returns the stocks of one market
func (c *SignalsClient) GetMarketStocks(ctx context.Context, market models.Market, params MarketStocksParams) ([]models.Stock, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	query := url.Values{}
	if params.AssetType != "" {
		query.Set("asset_type", string(params.AssetType))
	}

	return getList[models.Stock](ctx, c, ResourceMarketStocks, "/markets/"+string(market)+"/stocks", query)
}

// GetMarketHighlights returns the free-form highlights object of one market
func (c *SignalsClient) GetMarketHighlights(ctx context.Context, market models.Market) (models.MarketHighlights, error) {
	if err := validateMarket(market); err != nil {
		return nil, err
	}

	highlights, err := getObject[models.MarketHighlights](ctx, c, ResourceMarketHighlights, "/markets/"+string(market)+"/highlights", nil)
	if err != nil {
		return nil, err
	}
	return *highlights, nil
}

// GetBacktest returns the backtest summary of a symbol's signals
func (c *SignalsClient) GetBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error) {
	path, err := symbolPath(symbol, "/backtest")
	if err != nil {
		return nil, err
	}
	return getObject[models.BacktestResult](ctx, c, ResourceBacktest, path, nil)
}

func getList[T any](ctx context.Context, c *SignalsClient, resource, path string, query url.Values) ([]T, error) {
	raw, err := c.transport.Do(ctx, resource, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](raw, resource, c.transport.listPolicy, c.transport.metrics)
}

func getObject[T any](ctx context.Context, c *SignalsClient, resource, path string, query url.Values) (*T, error) {
	raw, err := c.transport.Do(ctx, resource, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[T](raw, resource)
}

// ValidSymbol reports whether symbol is acceptable as a path segment
func ValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

func symbolPath(symbol, suffix string) (string, error) {
	if !ValidSymbol(symbol) {
		return "", newValidationError("invalid symbol %q", symbol)
	}
	return "/stocks/" + url.PathEscape(symbol) + suffix, nil
}

func validateMarket(market models.Market) error {
	for _, m := range models.Markets {
		if m == market {
			return nil
		}
	}
	return newValidationError("unsupported market %q", market)
}
