package models

import "github.com/shopspring/decimal"

// StockPrice represents one OHLCV observation. Series are ordered by Time ascending.
type StockPrice struct {
	Time   Timestamp       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// TechnicalIndicators is a dated snapshot of indicator values.
// A nil field was not computed, which is distinct from zero.
type TechnicalIndicators struct {
	Date           Timestamp `json:"date"`
	RSI            *float64  `json:"rsi,omitempty"`
	MACD           *float64  `json:"macd,omitempty"`
	SMA20          *float64  `json:"sma_20,omitempty"`
	SMA50          *float64  `json:"sma_50,omitempty"`
	EMA12          *float64  `json:"ema_12,omitempty"`
	EMA26          *float64  `json:"ema_26,omitempty"`
	BollingerUpper *float64  `json:"bollinger_upper,omitempty"`
	BollingerLower *float64  `json:"bollinger_lower,omitempty"`
	VolumeAvg      *float64  `json:"volume_avg,omitempty"`
}

// Fundamental is a dated snapshot of financial ratios and dividend metrics.
// Nil fields are absent from the source data.
type Fundamental struct {
	Date                Timestamp `json:"date"`
	Revenue             *float64  `json:"revenue,omitempty"`
	EPS                 *float64  `json:"eps,omitempty"`
	PERatio             *float64  `json:"pe_ratio,omitempty"`
	DebtRatio           *float64  `json:"debt_ratio,omitempty"`
	EarningsGrowth      *float64  `json:"earnings_growth,omitempty"`
	DividendYield       *float64  `json:"dividend_yield,omitempty"`
	DividendPerShare    *float64  `json:"dividend_per_share,omitempty"`
	DividendPayoutRatio *float64  `json:"dividend_payout_ratio,omitempty"`
}

// HasDividendData reports whether any dividend metric is present
func (f Fundamental) HasDividendData() bool {
	return f.DividendYield != nil || f.DividendPerShare != nil || f.DividendPayoutRatio != nil
}

// BacktestResult holds server-computed performance of a stock's signal history
type BacktestResult struct {
	TotalReturn       float64   `json:"total_return"`
	WinRate           float64   `json:"win_rate"` // fraction 0-1
	MaxDrawdown       float64   `json:"max_drawdown"`
	SharpeRatio       float64   `json:"sharpe_ratio"`
	TotalSignals      int       `json:"total_signals"`
	ProfitableSignals int       `json:"profitable_signals"`
	PeriodStart       Timestamp `json:"period_start"`
	PeriodEnd         Timestamp `json:"period_end"`
}
