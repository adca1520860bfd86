package services

import (
	"context"

	"signal-dashboard/models"
)

// SignalsAPI is the typed view of the remote signals API
type SignalsAPI interface {
	ListStocks(ctx context.Context, params StockListParams) ([]models.Stock, error)
	GetStock(ctx context.Context, symbol string) (*models.Stock, error)
	GetPrices(ctx context.Context, symbol string, params PriceParams) ([]models.StockPrice, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamental, error)
	GetIndicators(ctx context.Context, symbol string) ([]models.TechnicalIndicators, error)
	GetSignal(ctx context.Context, symbol string) (*models.Signal, error)
	GetSignalHistory(ctx context.Context, symbol string) ([]models.Signal, error)
	GetTopSignals(ctx context.Context, params TopSignalsParams) ([]models.Signal, error)
	GetMarketStocks(ctx context.Context, market models.Market, params MarketStocksParams) ([]models.Stock, error)
	GetMarketHighlights(ctx context.Context, market models.Market) (models.MarketHighlights, error)
	GetBacktest(ctx context.Context, symbol string) (*models.BacktestResult, error)
}

// Compile-time interface verification
var _ SignalsAPI = (*SignalsClient)(nil)
