// Package report renders a RunResult for people and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/pkg/utils"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Percent renders a fractional return as a percentage with two decimals,
// rounding half away from zero (0.30 -> "30.00%").
func Percent(value float64) string {
	return decimal.NewFromFloat(value).Shift(2).StringFixed(2) + "%"
}

// WriteSummary prints the aggregate statistics block.
func WriteSummary(w io.Writer, summary dto.ResultsSummary) error {
	if summary.TradeCount == 0 {
		_, err := fmt.Fprintf(w, "Total Trades: 0\nAverage Return: N/A\nMedian Return: N/A\nWin Rate: N/A\n")
		return err
	}
	_, err := fmt.Fprintf(w,
		"Total Trades: %d\nAverage Return: %s\nMedian Return: %s\nWin Rate: %s\nBest Trade: %s\nWorst Trade: %s\n",
		summary.TradeCount,
		Percent(summary.AverageReturn),
		Percent(summary.MedianReturn),
		Percent(summary.WinRate),
		Percent(summary.BestReturn),
		Percent(summary.WorstReturn),
	)
	return err
}

// WriteTickerTable prints one aligned row per ticker with its outcome.
func WriteTickerTable(w io.Writer, tickers []dto.TickerResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tSTATUS\tRECORDS\tSIGNALS\tTRADES\tREASON")
	for _, t := range tickers {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", t.Ticker, t.Status, t.Records, t.Signals, t.Trades, t.Reason)
	}
	return tw.Flush()
}

var tradeHeader = []string{"ticker", "entry_date", "exit_date", "entry_price", "exit_price", "return"}

// WriteTradesCSV writes every position as a CSV row, header first.
func WriteTradesCSV(w io.Writer, positions []dto.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, p := range positions {
		row := []string{
			p.Ticker,
			utils.FormatDate(p.EntryDate),
			utils.FormatDate(p.ExitDate),
			strconv.FormatFloat(p.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(p.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(p.Return, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRun prints the ticker table followed by the aggregate summary.
func WriteRun(w io.Writer, result *dto.RunResult) error {
	if _, err := fmt.Fprintf(w, "Run %s\n\n", result.RunID); err != nil {
		return err
	}
	if err := WriteTickerTable(w, result.Tickers); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nAggregated Results:"); err != nil {
		return err
	}
	return WriteSummary(w, result.Summary)
}
