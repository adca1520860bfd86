package querycache

import (
	"strconv"
	"strings"

	"signal-dashboard/models"
	"signal-dashboard/services"
)

// Key joins query key parts with ':'
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func StockKey(symbol string) string {
	return Key("stock", symbol)
}

func PricesKey(symbol string, params services.PriceParams) string {
	return Key("prices", symbol, params.Interval, params.StartDate, params.EndDate)
}

func FundamentalsKey(symbol string) string {
	return Key("fundamentals", symbol)
}

func IndicatorsKey(symbol string) string {
	return Key("indicators", symbol)
}

func SignalKey(symbol string) string {
	return Key("signal", symbol)
}

func SignalHistoryKey(symbol string) string {
	return Key("signal-history", symbol)
}

func BacktestKey(symbol string) string {
	return Key("backtest", symbol)
}

func TopSignalsKey(params services.TopSignalsParams) string {
	return Key("top-signals", string(params.Market), strconv.Itoa(params.Limit))
}

func StocksKey(params services.StockListParams) string {
	return Key("stocks", string(params.Market), params.Sector, string(params.StockType),
		string(params.AssetType), strconv.Itoa(params.Page), strconv.Itoa(params.Limit))
}

func MarketStocksKey(market models.Market, params services.MarketStocksParams) string {
	return Key("market-stocks", string(market), string(params.AssetType))
}

func MarketHighlightsKey(market models.Market) string {
	return Key("market-highlights", string(market))
}
