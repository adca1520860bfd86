// Package views renders dashboard pages as templ components.
//
// Markup lives in the .templ files. Run `templ generate` after editing them.
package views

import (
	"fmt"
	"strconv"
	"strings"

	"signal-dashboard/internal/dashboard"
	"signal-dashboard/models"
	"signal-dashboard/services"
	"signal-dashboard/viewmodel"
)

// stockTypeFilters are the market page filter tabs
var stockTypeFilters = []struct {
	Value string
	Label string
}{
	{viewmodel.FilterAll, "All"},
	{string(models.StockTypeGrowth), "Growth"},
	{string(models.StockTypeDividend), "Dividend"},
	{string(models.StockTypeHybrid), "Hybrid"},
}

// term is one row of a definition list
type term struct {
	Name  string
	Value string
}

func badgeText(b viewmodel.Badge) string {
	if b.Confidence == "" {
		return b.Label
	}
	return b.Label + " " + b.Confidence
}

func sectionErrorMessage(name string, err *services.APIError) string {
	if services.IsNotFound(err) {
		return "No data available."
	}
	return fmt.Sprintf("Failed to load %s: %s", name, err.Message)
}

func activeSignalCount(s dashboard.Section[int]) string {
	if !s.OK() {
		return "-"
	}
	return strconv.Itoa(s.Data)
}

func filterURL(market models.Market, filter string) string {
	return "/markets/" + string(market) + "?type=" + filter
}

// stockMeta joins the market with whatever classification is known
func stockMeta(page *dashboard.StockDetailPage) string {
	parts := []string{string(page.Stock.Data.Market)}
	for _, p := range []string{page.Stock.Data.Sector, page.TypeLabel, page.AssetLabel} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

func signalTerms(sig *models.Signal) []term {
	return []term{
		{"Risk", string(sig.RiskLevel)},
		{"Holding period", string(sig.HoldingPeriod)},
	}
}

func fundamentalTerms(page *dashboard.StockDetailPage) []term {
	f := page.Fundamentals.Data
	currency := ""
	if page.Stock.Data != nil {
		currency = page.Stock.Data.Currency
	}

	var terms []term
	if f.Revenue != nil {
		terms = append(terms, term{"Revenue", viewmodel.FormatRevenue(currency, *f.Revenue)})
	}
	terms = append(terms,
		term{"EPS", viewmodel.FormatNumber(f.EPS)},
		term{"P/E Ratio", viewmodel.FormatNumber(f.PERatio)},
		term{"Debt Ratio", viewmodel.FormatNumber(f.DebtRatio)},
	)
	if f.EarningsGrowth != nil {
		terms = append(terms, term{"Earnings Growth", viewmodel.FormatSignedPercent(*f.EarningsGrowth)})
	}
	if !f.HasDividendData() {
		return terms
	}
	if f.DividendYield != nil {
		terms = append(terms, term{"Dividend Yield", viewmodel.FormatPercent(*f.DividendYield)})
	}
	terms = append(terms, term{"Dividend / Share", viewmodel.FormatNumber(f.DividendPerShare)})
	if f.DividendPayoutRatio != nil {
		terms = append(terms, term{"Payout Ratio", viewmodel.FormatPercent(*f.DividendPayoutRatio)})
	}
	return terms
}

func indicatorTerms(ind *models.TechnicalIndicators) []term {
	return []term{
		{"RSI", viewmodel.FormatNumber(ind.RSI)},
		{"MACD", viewmodel.FormatNumber(ind.MACD)},
		{"SMA 20", viewmodel.FormatNumber(ind.SMA20)},
		{"SMA 50", viewmodel.FormatNumber(ind.SMA50)},
		{"EMA 12", viewmodel.FormatNumber(ind.EMA12)},
		{"EMA 26", viewmodel.FormatNumber(ind.EMA26)},
	}
}

func backtestTerms(b *models.BacktestResult) []term {
	return []term{
		{"Total Return", viewmodel.FormatSignedPercent(b.TotalReturn)},
		{"Win Rate", viewmodel.WinRatePercent(b.WinRate)},
		{"Max Drawdown", viewmodel.FormatPercent(b.MaxDrawdown)},
		{"Sharpe Ratio", viewmodel.FormatNumber(&b.SharpeRatio)},
		{"Signals", strconv.Itoa(b.ProfitableSignals) + " / " + strconv.Itoa(b.TotalSignals) + " profitable"},
	}
}
