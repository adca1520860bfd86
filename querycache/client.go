package querycache

import (
	"context"
	"errors"

	"signal-dashboard/models"
	"signal-dashboard/services"
)

// CachedClient serves SignalsAPI calls through a Cache
type CachedClient struct {
	api   services.SignalsAPI
	cache *Cache
}

// NewCachedClient wraps api with cache
func NewCachedClient(api services.SignalsAPI, cache *Cache) *CachedClient {
	return &CachedClient{api: api, cache: cache}
}

// Cache returns the underlying cache
func (c *CachedClient) Cache() *Cache {
	return c.cache
}

func (c *CachedClient) ListStocks(ctx context.Context, params services.StockListParams) ([]models.Stock, error) {
	return cached(ctx, c, StocksKey(params), services.ResourceStocks, func(ctx context.Context) ([]models.Stock, error) {
		return c.api.ListStocks(ctx, params)
	})
}

func (c *CachedClient) GetStock(ctx context.Context, symbol string) (*models.Stock, error) {
	return cached(ctx, c, StockKey(symbol), services.ResourceStock, func(ctx context.Context) (*models.Stock, error) {
		return c.api.GetStock(ctx, symbol)
	})
}

func (c *CachedClient) GetPrices(ctx context.Context, symbol string, params services.PriceParams) ([]models.StockPrice, error) {
	return cached(ctx, c, PricesKey(symbol, params), services.ResourcePrices, func(ctx context.Context) ([]models.StockPrice, error) {
		return c.api.GetPrices(ctx, symbol, params)
	})
}

func (c *CachedClient) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamental, error) {
	return cached(ctx, c, FundamentalsKey(symbol), services.ResourceFundamentals, func(ctx context.Context) (*models.Fundamental, error) {
		return c.api.GetFundamentals(ctx, symbol)
	})
}

func (c *CachedClient) GetIndicators(ctx context.Context, symbol string) ([]models.TechnicalIndicators, error) {
	return cached(ctx, c, IndicatorsKey(symbol), services.ResourceIndicators, func(ctx context.Context) ([]models.TechnicalIndicators, error) {
		return c.api.GetIndicators(ctx, symbol)
	})
}

func (c *CachedClient) GetSignal(ctx context.Context, symbol string) (*models.Signal, error) {
	return cached(ctx, c, SignalKey(symbol), services.ResourceSignal, func(ctx context.Context) (*models.Signal, error) {
		return c.api.GetSignal(ctx, symbol)
	})
}

func (c *CachedClient) GetSignalHistory(ctx context.Context, symbol string) ([]models.Signal, error) {
	return cached(ctx, c, SignalHistoryKey(symbol), services.ResourceSignalHistory, func(ctx context.Context) ([]models.Signal, error) {
		return c.api.GetSignalHistory(ctx, symbol)
	})
}

func (c *CachedClient) GetTopSignals(ctx context.Context, params services.TopSignalsParams) ([]models.Signal, error) {
	return cached(ctx, c, TopSignalsKey(params), services.ResourceTopSignals, func(ctx context.Context) ([]models.Signal, error) {
		return c.api.GetTopSignals(ctx, params)
	})
}

func (c *CachedClient) GetMarketStocks(ctx context.Context, market models.Market, params services.MarketStocksParams) ([]models.Stock, error) {
	return cached(ctx, c, MarketStocksKey(market, params), services.ResourceMarketStocks, func(ctx context.Context) ([]models.Stock, error) {
		return c.api.GetMarketStocks(ctx, market, params)
	})
}

func (c *CachedClient) GetMarketHighlights(ctx context.Context, market models.Market) (models.MarketHighlights, error) {
	return cached(ctx, c, MarketHighlightsKey(market), services.ResourceMarketHighlights, func(ctx context.Context) (models.MarketHighlights, error) {
		return c.api.GetMarketHighlights(ctx, market)
	})
}

func (c *CachedClient) GetBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error) {
	return cached(ctx, c, BacktestKey(symbol), services.ResourceBacktest, func(ctx context.Context) (*models.BacktestResult, error) {
		return c.api.GetBacktest(ctx, symbol)
	})
}

var _ services.SignalsAPI = (*CachedClient)(nil)

// cached runs a query through the cache. A caller that stops waiting gets the same
// network error the transport reports for a cancelled request.
func cached[T any](ctx context.Context, c *CachedClient, key, resource string, fn func(ctx context.Context) (T, error)) (T, error) {
	value, err := Get(ctx, c.cache, key, resource, fn)
	if err == nil || ctx.Err() == nil || !errors.Is(err, ctx.Err()) {
		return value, err
	}
	if _, ok := services.AsAPIError(err); !ok {
		var zero T
		return zero, services.NewNetworkError(err)
	}
	return value, err
}
