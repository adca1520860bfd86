package mockapi

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"signal-dashboard/models"
)

// Fixtures is the data served by the fake signals API. Keys of the per-symbol maps are symbols.
type Fixtures struct {
	Stocks        []models.Stock                          `json:"stocks"`
	Prices        map[string][]models.StockPrice          `json:"prices"`
	Fundamentals  map[string]models.Fundamental           `json:"fundamentals"`
	Indicators    map[string][]models.TechnicalIndicators `json:"indicators"`
	Signals       []models.Signal                         `json:"signals"` // ranked, best first
	SignalHistory map[string][]models.Signal              `json:"signal_history"`
	Backtests     map[string]models.BacktestResult        `json:"backtests"`
	Highlights    map[string]models.MarketHighlights      `json:"highlights"`

	// WrapLists answers list endpoints with {"items": [...]} instead of a bare array
	WrapLists bool `json:"wrap_lists"`
}

// LoadFixtures reads fixtures from a YAML file. Field names follow the JSON wire format.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes YAML fixtures
func ParseFixtures(data []byte) (*Fixtures, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	// models carry JSON tags only, so YAML goes through the JSON decoder
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert fixtures: %w", err)
	}

	var f Fixtures
	if err := json.Unmarshal(encoded, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &f, nil
}

// StockBySymbol finds a stock by symbol
func (f *Fixtures) StockBySymbol(symbol string) (models.Stock, bool) {
	for _, s := range f.Stocks {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return models.Stock{}, false
}

// SignalForStock returns the current signal of a stock
func (f *Fixtures) SignalForStock(stock models.Stock) (models.Signal, bool) {
	for _, sig := range f.Signals {
		if sig.StockID == stock.ID || sig.StockID == stock.Symbol {
			return sig, true
		}
	}
	return models.Signal{}, false
}

// DefaultFixtures returns a small data set covering both markets
func DefaultFixtures() *Fixtures {
	created := models.NewTimestamp(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))
	growth := models.StockTypeGrowth
	dividend := models.StockTypeDividend
	hybrid := models.StockTypeHybrid

	stocks := []models.Stock{
		{ID: "stk-aapl", Symbol: "AAPL", Name: "Apple Inc.", Market: models.MarketUS, Sector: "Technology",
			AssetType: models.AssetTypeStock, StockType: &growth, Currency: "USD", IsActive: true, CreatedAt: created},
		{ID: "stk-ko", Symbol: "KO", Name: "The Coca-Cola Company", Market: models.MarketUS, Sector: "Consumer Defensive",
			AssetType: models.AssetTypeStock, StockType: &dividend, Currency: "USD", IsActive: true, CreatedAt: created},
		{ID: "stk-msft", Symbol: "MSFT", Name: "Microsoft Corporation", Market: models.MarketUS, Sector: "Technology",
			AssetType: models.AssetTypeStock, StockType: &hybrid, Currency: "USD", IsActive: true, CreatedAt: created},
		{ID: "stk-spy", Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Market: models.MarketUS,
			AssetType: models.AssetTypeETF, Currency: "USD", IsActive: true, CreatedAt: created},
		{ID: "stk-dangcem", Symbol: "DANGCEM", Name: "Dangote Cement Plc", Market: models.MarketNGX, Sector: "Industrial Goods",
			AssetType: models.AssetTypeStock, StockType: &dividend, Currency: "NGN", IsActive: true, CreatedAt: created},
		{ID: "stk-mtnn", Symbol: "MTNN", Name: "MTN Nigeria Communications Plc", Market: models.MarketNGX, Sector: "ICT",
			AssetType: models.AssetTypeStock, StockType: &growth, Currency: "NGN", IsActive: true, CreatedAt: created},
	}

	signalAt := models.NewTimestamp(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	signals := []models.Signal{
		newSignal("sig-aapl", "stk-aapl", models.SignalTypeBuy, 86, models.RiskLevelMedium, models.HoldingPeriodLong,
			"Earnings momentum with price above the 50-day average", signalAt),
		newSignal("sig-dangcem", "stk-dangcem", models.SignalTypeBuy, 78, models.RiskLevelLow, models.HoldingPeriodLong,
			"Stable dividend with improving margins", signalAt),
		newSignal("sig-ko", "stk-ko", models.SignalTypeHold, 64, models.RiskLevelLow, models.HoldingPeriodMedium,
			"Fairly valued, dividend intact", signalAt),
		newSignal("sig-mtnn", "stk-mtnn", models.SignalTypeSell, 59, models.RiskLevelHigh, models.HoldingPeriodShort,
			"Currency headwinds weigh on earnings", signalAt),
	}

	rsi, macd, sma20, sma50 := 58.2, 1.35, 184.1, 179.6
	revenue, eps, pe, growthRate := 383_285_000_000.0, 6.43, 28.9, 7.8
	yield, perShare, payout := 3.1, 1.84, 74.0

	return &Fixtures{
		Stocks: stocks,
		Prices: map[string][]models.StockPrice{
			"AAPL":    generatePrices(30, 180),
			"KO":      generatePrices(30, 60),
			"DANGCEM": generatePrices(30, 480),
		},
		Fundamentals: map[string]models.Fundamental{
			"AAPL": {Date: signalAt, Revenue: &revenue, EPS: &eps, PERatio: &pe, EarningsGrowth: &growthRate},
			"KO":   {Date: signalAt, DividendYield: &yield, DividendPerShare: &perShare, DividendPayoutRatio: &payout},
		},
		Indicators: map[string][]models.TechnicalIndicators{
			"AAPL": {
				{Date: models.NewTimestamp(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))},
				{Date: signalAt, RSI: &rsi, MACD: &macd, SMA20: &sma20, SMA50: &sma50},
			},
		},
		Signals: signals,
		SignalHistory: map[string][]models.Signal{
			"AAPL": {signals[0]},
		},
		Backtests: map[string]models.BacktestResult{
			"AAPL": {TotalReturn: 18.4, WinRate: 0.62, MaxDrawdown: -9.7, SharpeRatio: 1.21,
				TotalSignals: 21, ProfitableSignals: 13,
				PeriodStart: models.NewTimestamp(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
				PeriodEnd:   signalAt},
		},
		Highlights: map[string]models.MarketHighlights{
			"US":  {"top_gainer": "AAPL", "buy_signals": 1},
			"NGX": {"top_gainer": "DANGCEM", "buy_signals": 1},
		},
	}
}

func newSignal(id, stockID string, signalType models.SignalType, confidence float64, risk models.RiskLevel,
	period models.HoldingPeriod, summary string, at models.Timestamp) models.Signal {
	return models.Signal{
		ID:              id,
		StockID:         stockID,
		SignalType:      signalType,
		ConfidenceScore: confidence,
		RiskLevel:       risk,
		HoldingPeriod:   period,
		Explanation: models.SignalExplanation{
			Summary:                summary,
			Triggers:               []string{summary},
			Risks:                  []string{"Broad market drawdown"},
			InvalidationConditions: []string{"Close below the 50-day average"},
		},
		CreatedAt: at,
	}
}

// generatePrices returns count daily prices ending on 2024-03-01
func generatePrices(count int, base float64) []models.StockPrice {
	prices := make([]models.StockPrice, count)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(count - 1))
	for i := 0; i < count; i++ {
		variance := float64(i%10) - 5
		closePrice := decimal.NewFromFloat(base + variance)
		prices[i] = models.StockPrice{
			Time:   models.NewTimestamp(start.AddDate(0, 0, i)),
			Open:   closePrice.Sub(decimal.NewFromInt(1)),
			High:   closePrice.Add(decimal.NewFromInt(2)),
			Low:    closePrice.Sub(decimal.NewFromInt(2)),
			Close:  closePrice,
			Volume: 1_000_000 + int64(i*10_000),
		}
	}
	return prices
}
