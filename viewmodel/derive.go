package viewmodel

import (
	"github.com/shopspring/decimal"

	"signal-dashboard/models"
)

// FilterAll disables stock type filtering
const FilterAll = "ALL"

var hundred = decimal.NewFromInt(100)

// SignalsByStock indexes signals by their StockID. A later signal for the same
// stock replaces an earlier one.
func SignalsByStock(signals []models.Signal) map[string]models.Signal {
	index := make(map[string]models.Signal, len(signals))
	for _, s := range signals {
		index[s.StockID] = s
	}
	return index
}

// SignalFor finds the signal of a stock, matching on the stock id first and then the symbol
func SignalFor(index map[string]models.Signal, stock models.Stock) (models.Signal, bool) {
	if stock.ID != "" {
		if s, ok := index[stock.ID]; ok {
			return s, true
		}
	}
	s, ok := index[stock.Symbol]
	return s, ok
}

// Latest returns the last element of a time-ordered series
func Latest[T any](series []T) (T, bool) {
	if len(series) == 0 {
		var zero T
		return zero, false
	}
	return series[len(series)-1], true
}

// PercentChange returns the change of the last close against the previous close,
// rounded to two decimals. ok is false with fewer than two prices or a zero previous close.
func PercentChange(prices []models.StockPrice) (decimal.Decimal, bool) {
	if len(prices) < 2 {
		return decimal.Zero, false
	}

	last := prices[len(prices)-1].Close
	prev := prices[len(prices)-2].Close
	if prev.IsZero() {
		return decimal.Zero, false
	}

	return last.Sub(prev).Div(prev).Mul(hundred).Round(2), true
}

// FormatChange renders a percent change with an explicit sign, e.g. "+20.00%"
func FormatChange(change decimal.Decimal) string {
	sign := ""
	if !change.IsNegative() {
		sign = "+"
	}
	return sign + change.StringFixed(2) + "%"
}

// FilterByStockType keeps stocks whose stock type equals filter. FilterAll returns stocks unchanged.
func FilterByStockType(stocks []models.Stock, filter string) []models.Stock {
	if filter == "" || filter == FilterAll {
		return stocks
	}

	filtered := make([]models.Stock, 0, len(stocks))
	for _, s := range stocks {
		if s.HasStockType(models.StockType(filter)) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// StockRow pairs a stock with its signal, if any
type StockRow struct {
	Stock     models.Stock   `json:"stock"`
	Signal    *models.Signal `json:"signal,omitempty"`
	Badge     Badge          `json:"badge"`
	TypeLabel string         `json:"type_label,omitempty"`
	Asset     string         `json:"asset_label,omitempty"`
}

// JoinStocks builds one row per stock in input order
func JoinStocks(stocks []models.Stock, signals []models.Signal) []StockRow {
	index := SignalsByStock(signals)

	rows := make([]StockRow, 0, len(stocks))
	for _, stock := range stocks {
		row := StockRow{
			Stock:     stock,
			TypeLabel: StockTypeLabel(stock.StockType),
			Asset:     AssetTypeLabel(stock.AssetType),
		}
		if s, ok := SignalFor(index, stock); ok {
			signal := s
			row.Signal = &signal
			row.Badge = SignalBadge(signal.SignalType, &signal.ConfidenceScore)
		}
		rows = append(rows, row)
	}
	return rows
}
