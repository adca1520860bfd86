package models

type SignalType string

const (
	SignalTypeBuy      SignalType = "BUY"
	SignalTypeHold     SignalType = "HOLD"
	SignalTypeSell     SignalType = "SELL"
	SignalTypeNoSignal SignalType = "NO_SIGNAL"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

type HoldingPeriod string

const (
	HoldingPeriodShort  HoldingPeriod = "SHORT"
	HoldingPeriodMedium HoldingPeriod = "MEDIUM"
	HoldingPeriodLong   HoldingPeriod = "LONG"
)

// Signal is a recommendation for one stock
type Signal struct {
	ID              string            `json:"id"`
	StockID         string            `json:"stock_id"`
	SignalType      SignalType        `json:"signal_type"`
	ConfidenceScore float64           `json:"confidence_score"` // 0-100
	RiskLevel       RiskLevel         `json:"risk_level"`
	HoldingPeriod   HoldingPeriod     `json:"holding_period"`
	Explanation     SignalExplanation `json:"explanation"`
	CreatedAt       Timestamp         `json:"created_at"`
}

// IsActionable reports whether the signal recommends a trade or hold
func (s Signal) IsActionable() bool {
	return s.SignalType == SignalTypeBuy || s.SignalType == SignalTypeSell || s.SignalType == SignalTypeHold
}

// SignalExplanation describes why a signal was produced
type SignalExplanation struct {
	Summary                string               `json:"summary"`
	Factors                *SignalFactors       `json:"factors,omitempty"`
	Triggers               []string             `json:"triggers"`
	Risks                  []string             `json:"risks"`
	InvalidationConditions []string             `json:"invalidation_conditions"`
	StockClassification    *StockClassification `json:"stock_classification,omitempty"`
}

// SignalFactors is the optional structured factor breakdown
type SignalFactors struct {
	Technical   map[string]any `json:"technical,omitempty"`
	Fundamental map[string]any `json:"fundamental,omitempty"`
	Trend       map[string]any `json:"trend,omitempty"`
}

// StockClassification pairs a stock type with advice for investors
type StockClassification struct {
	StockType              StockType              `json:"stock_type"`
	InvestorRecommendation InvestorRecommendation `json:"investor_recommendation"`
}

type InvestorRecommendation struct {
	BestFor     []string `json:"best_for"`
	Strategy    string   `json:"strategy,omitempty"`
	TimeHorizon string   `json:"time_horizon,omitempty"`
	Action      string   `json:"action,omitempty"`
}
