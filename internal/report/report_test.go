package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"golang-pe-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, "30.00%", Percent(0.30))
	assert.Equal(t, "-5.00%", Percent(-0.05))
	assert.Equal(t, "6.25%", Percent(0.0625))
	assert.Equal(t, "0.00%", Percent(0))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummary(&buf, dto.ResultsSummary{
		TradeCount:    4,
		AverageReturn: 0.0625,
		MedianReturn:  0.05,
		WinRate:       0.5,
		BestReturn:    0.2,
		WorstReturn:   -0.05,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Total Trades: 4\n")
	assert.Contains(t, out, "Average Return: 6.25%\n")
	assert.Contains(t, out, "Median Return: 5.00%\n")
	assert.Contains(t, out, "Win Rate: 50.00%\n")
}

func TestWriteSummary_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, dto.ResultsSummary{}))
	assert.Contains(t, buf.String(), "Total Trades: 0")
	assert.Contains(t, buf.String(), "Win Rate: N/A")
}

func TestWriteTradesCSV(t *testing.T) {
	entry := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	positions := []dto.Position{
		{Ticker: "ANF", EntryDate: entry, ExitDate: entry.AddDate(0, 0, 42), EntryPrice: 100, ExitPrice: 130, Return: 0.3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, positions))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, tradeHeader, rows[0])
	assert.Equal(t, []string{"ANF", "2024-01-02", "2024-02-13", "100", "130", "0.3"}, rows[1])
}

func TestWriteRun(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRun(&buf, &dto.RunResult{
		RunID: "run-1",
		Tickers: []dto.TickerResult{
			{Ticker: "ANF", Status: dto.TickerProcessed, Records: 31, Signals: 31, Trades: 1},
			{Ticker: "GIL", Status: dto.TickerSkipped, Reason: "no aligned price and fundamentals data"},
		},
		Summary: dto.ResultsSummary{TradeCount: 1, AverageReturn: 0.3, MedianReturn: 0.3, WinRate: 1, BestReturn: 0.3, WorstReturn: 0.3},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Run run-1\n"))
	assert.Contains(t, out, "GIL")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "Aggregated Results:")
	assert.Contains(t, out, "Win Rate: 100.00%")
}
