package viewmodel

import (
	"fmt"

	"signal-dashboard/models"
)

// Badge variants
const (
	VariantSuccess   = "success"
	VariantDanger    = "danger"
	VariantWarning   = "warning"
	VariantSecondary = "secondary"
)

// Badge is the display form of a signal type
type Badge struct {
	Label      string `json:"label"`
	Variant    string `json:"variant"`
	Confidence string `json:"confidence,omitempty"`
}

// SignalBadge maps a signal type to its badge. confidence is optional.
func SignalBadge(signalType models.SignalType, confidence *float64) Badge {
	badge := Badge{Label: string(signalType)}

	switch signalType {
	case models.SignalTypeBuy:
		badge.Variant = VariantSuccess
	case models.SignalTypeSell:
		badge.Variant = VariantDanger
	case models.SignalTypeHold:
		badge.Variant = VariantWarning
	default:
		badge.Variant = VariantSecondary
	}

	if confidence != nil {
		badge.Confidence = fmt.Sprintf("(%s%%)", trimFloat(*confidence))
	}
	return badge
}

// StockTypeLabel returns the display label of a stock type, empty when absent
func StockTypeLabel(stockType *models.StockType) string {
	if stockType == nil {
		return ""
	}
	switch *stockType {
	case models.StockTypeGrowth:
		return "Growth Stock"
	case models.StockTypeDividend:
		return "Dividend Stock"
	case models.StockTypeHybrid:
		return "Hybrid Stock"
	default:
		return ""
	}
}

// AssetTypeLabel returns the display label of an asset type. Plain stocks get no label.
func AssetTypeLabel(assetType models.AssetType) string {
	switch assetType {
	case models.AssetTypeETF:
		return "ETF"
	case models.AssetTypeMutualFund:
		return "Mutual Fund"
	default:
		return ""
	}
}

// FormatRevenue renders revenue in billions, e.g. "USD 394.33B"
func FormatRevenue(currency string, revenue float64) string {
	return fmt.Sprintf("%s %.2fB", currency, revenue/1e9)
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// FormatSignedPercent renders a percentage with an explicit sign for non-negative values
func FormatSignedPercent(value float64) string {
	if value >= 0 {
		return "+" + FormatPercent(value)
	}
	return FormatPercent(value)
}

// FormatNumber renders an optional value with two decimals, "N/A" when absent
func FormatNumber(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *value)
}

// WinRatePercent renders a 0-1 win rate as a percentage with one decimal
func WinRatePercent(winRate float64) string {
	return fmt.Sprintf("%.1f%%", winRate*100)
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
