package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseMarket(t *testing.T) {
	tests := []struct {
		input   string
		want    Market
		wantErr bool
	}{
		{"US", MarketUS, false},
		{"us", MarketUS, false},
		{"ngx", MarketNGX, false},
		{" NGX ", MarketNGX, false},
		{"LSE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMarket(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMarket(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMarket(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMarket(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2024-03-01T14:30:00Z"`, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"rfc3339 fractional", `"2024-03-01T14:30:00.250Z"`, time.Date(2024, 3, 1, 14, 30, 0, 250_000_000, time.UTC)},
		{"iso without zone", `"2024-03-01T14:30:00"`, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"iso without zone fractional", `"2024-03-01T14:30:00.123456"`, time.Date(2024, 3, 1, 14, 30, 0, 123_456_000, time.UTC)},
		{"date only", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
			}
			if !ts.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, ts.Time, tt.want)
			}
		})
	}
}

func TestTimestamp_NullAndInvalid(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil {
		t.Errorf("null should decode, got %v", err)
	}
	if !ts.IsZero() {
		t.Error("null should decode to zero time")
	}

	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unrecognized timestamp")
	}

	out, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("zero timestamp should marshal to null, got %s", out)
	}
	if (Timestamp{}).DateString() != "" {
		t.Error("zero timestamp should have empty DateString")
	}
}

func TestStock_Deserialization(t *testing.T) {
	payload := `{
		"id": "b7c1",
		"symbol": "DANGCEM",
		"name": "Dangote Cement",
		"market": "NGX",
		"sector": "Industrial Goods",
		"asset_type": "STOCK",
		"stock_type": "DIVIDEND",
		"currency": "NGN",
		"is_active": true,
		"created_at": "2024-01-02T08:00:00"
	}`

	var stock Stock
	if err := json.Unmarshal([]byte(payload), &stock); err != nil {
		t.Fatalf("Failed to unmarshal Stock: %v", err)
	}

	if stock.Symbol != "DANGCEM" {
		t.Errorf("Symbol = %v, want 'DANGCEM'", stock.Symbol)
	}
	if stock.Market != MarketNGX {
		t.Errorf("Market = %v, want NGX", stock.Market)
	}
	if !stock.HasStockType(StockTypeDividend) {
		t.Error("expected DIVIDEND stock type")
	}
	if stock.HasStockType(StockTypeGrowth) {
		t.Error("did not expect GROWTH stock type")
	}
	if stock.CreatedAt.DateString() != "2024-01-02" {
		t.Errorf("CreatedAt = %v, want 2024-01-02", stock.CreatedAt.DateString())
	}
}

func TestStock_AbsentStockType(t *testing.T) {
	var stock Stock
	if err := json.Unmarshal([]byte(`{"symbol":"SPY","asset_type":"ETF","stock_type":null}`), &stock); err != nil {
		t.Fatalf("Failed to unmarshal Stock: %v", err)
	}
	if stock.StockType != nil {
		t.Errorf("StockType = %v, want nil", *stock.StockType)
	}
	if stock.HasStockType(StockTypeGrowth) {
		t.Error("stock without type should not match any type")
	}
}

func TestStockPrice_Deserialization(t *testing.T) {
	payload := `{"time":"2024-03-01","open":10.5,"high":12,"low":10.25,"close":11.75,"volume":120000}`

	var price StockPrice
	if err := json.Unmarshal([]byte(payload), &price); err != nil {
		t.Fatalf("Failed to unmarshal StockPrice: %v", err)
	}
	if !price.Close.Equal(decimal.RequireFromString("11.75")) {
		t.Errorf("Close = %v, want 11.75", price.Close)
	}
	if price.Volume != 120000 {
		t.Errorf("Volume = %v, want 120000", price.Volume)
	}
}

func TestTechnicalIndicators_AbsenceIsNotZero(t *testing.T) {
	var ind TechnicalIndicators
	if err := json.Unmarshal([]byte(`{"date":"2024-03-01","rsi":0,"macd":1.5}`), &ind); err != nil {
		t.Fatalf("Failed to unmarshal TechnicalIndicators: %v", err)
	}
	if ind.RSI == nil || *ind.RSI != 0 {
		t.Error("RSI should be present and zero")
	}
	if ind.SMA20 != nil {
		t.Error("SMA20 should be absent")
	}
}

func TestFundamental_HasDividendData(t *testing.T) {
	yield := 4.2
	tests := []struct {
		name string
		f    Fundamental
		want bool
	}{
		{"no dividend data", Fundamental{}, false},
		{"yield only", Fundamental{DividendYield: &yield}, true},
		{"payout only", Fundamental{DividendPayoutRatio: &yield}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.HasDividendData(); got != tt.want {
				t.Errorf("HasDividendData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignal_Deserialization(t *testing.T) {
	payload := `{
		"id": "sig-1",
		"stock_id": "AAPL",
		"signal_type": "BUY",
		"confidence_score": 82,
		"risk_level": "MEDIUM",
		"holding_period": "LONG",
		"explanation": {
			"summary": "Momentum and earnings growth",
			"factors": {"technical": {"rsi": 58}},
			"triggers": ["Golden cross"],
			"risks": ["Valuation"],
			"invalidation_conditions": ["Close below SMA50"],
			"stock_classification": {
				"stock_type": "GROWTH",
				"investor_recommendation": {"best_for": ["Long-term investors"], "strategy": "Accumulate"}
			}
		},
		"created_at": "2024-03-01T09:00:00Z"
	}`

	var sig Signal
	if err := json.Unmarshal([]byte(payload), &sig); err != nil {
		t.Fatalf("Failed to unmarshal Signal: %v", err)
	}
	if sig.SignalType != SignalTypeBuy {
		t.Errorf("SignalType = %v, want BUY", sig.SignalType)
	}
	if !sig.IsActionable() {
		t.Error("BUY should be actionable")
	}
	if sig.Explanation.Factors == nil || sig.Explanation.Factors.Technical["rsi"] != float64(58) {
		t.Error("expected technical factor rsi=58")
	}
	if sig.Explanation.StockClassification == nil {
		t.Fatal("expected stock classification")
	}
	if got := sig.Explanation.StockClassification.InvestorRecommendation.Strategy; got != "Accumulate" {
		t.Errorf("Strategy = %v, want Accumulate", got)
	}
}

func TestSignal_IsActionable(t *testing.T) {
	if (Signal{SignalType: SignalTypeNoSignal}).IsActionable() {
		t.Error("NO_SIGNAL should not be actionable")
	}
}
