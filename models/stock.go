package models

import (
	"fmt"
	"strings"
)

// Market identifies one of the two markets the signals API covers
type Market string

const (
	MarketUS  Market = "US"
	MarketNGX Market = "NGX"
)

// Markets lists all supported markets in display order
var Markets = []Market{MarketUS, MarketNGX}

// ParseMarket parses a market name case-insensitively
func ParseMarket(s string) (Market, error) {
	switch Market(strings.ToUpper(strings.TrimSpace(s))) {
	case MarketUS:
		return MarketUS, nil
	case MarketNGX:
		return MarketNGX, nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}

type AssetType string

const (
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeETF        AssetType = "ETF"
	AssetTypeMutualFund AssetType = "MUTUAL_FUND"
)

type StockType string

const (
	StockTypeGrowth   StockType = "GROWTH"
	StockTypeDividend StockType = "DIVIDEND"
	StockTypeHybrid   StockType = "HYBRID"
)

// Stock represents a listed security as returned by the signals API.
// Symbol is the identity key; ID is opaque.
type Stock struct {
	ID        string     `json:"id"`
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	Market    Market     `json:"market"`
	Sector    string     `json:"sector,omitempty"`
	AssetType AssetType  `json:"asset_type,omitempty"`
	StockType *StockType `json:"stock_type,omitempty"`
	Currency  string     `json:"currency"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
}

// HasStockType reports whether the stock carries the given classification
func (s Stock) HasStockType(t StockType) bool {
	return s.StockType != nil && *s.StockType == t
}

// MarketHighlights is the free-form highlights object of a market
type MarketHighlights map[string]any
