package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/app"
	"signal-dashboard/models"
	"signal-dashboard/services"
	"signal-dashboard/viewmodel"
)

func stockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <SYMBOL>",
		Short: "Print everything known about one symbol",
		Long: `Fetch the stock, prices, signal, fundamentals, indicators and backtest of
a symbol concurrently. Sections that fail are reported inline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := app.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}

			application, err := newQueryApp(cmd, opts)
			if err != nil {
				return err
			}

			page := application.Dashboard().StockDetail(cmd.Context(), symbol)
			if err := printJSON(cmd.OutOrStdout(), page); err != nil {
				return err
			}
			if page.Stock.Error != nil {
				return fmt.Errorf("stock %s: %w", symbol, page.Stock.Error)
			}
			return nil
		},
	}
}

func topCmd(opts *rootOptions) *cobra.Command {
	var (
		market string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top ranked signals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := services.TopSignalsParams{Limit: limit}
			if market != "" {
				m, err := models.ParseMarket(market)
				if err != nil {
					return err
				}
				params.Market = m
			}

			application, err := newQueryApp(cmd, opts)
			if err != nil {
				return err
			}

			signals, err := application.API().GetTopSignals(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), signals)
		},
	}

	cmd.Flags().StringVar(&market, "market", "", "Only signals of this market (US or NGX)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of signals")
	return cmd
}

func marketCmd(opts *rootOptions) *cobra.Command {
	var stockType string

	cmd := &cobra.Command{
		Use:   "market <MARKET>",
		Short: "Print the stocks of a market joined with their signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			market, err := models.ParseMarket(args[0])
			if err != nil {
				return err
			}

			application, err := newQueryApp(cmd, opts)
			if err != nil {
				return err
			}

			page := application.Dashboard().Market(cmd.Context(), market, strings.ToUpper(stockType))
			if err := printJSON(cmd.OutOrStdout(), page); err != nil {
				return err
			}
			if page.Stocks.Error != nil {
				return fmt.Errorf("market %s: %w", market, page.Stocks.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stockType, "type", viewmodel.FilterAll, "Stock type filter: ALL, GROWTH, DIVIDEND or HYBRID")
	return cmd
}
