package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/internal/repository"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(tickers ...string) *config.Config {
	return &config.Config{
		Backtest: config.Backtest{
			Tickers:         tickers,
			StartDate:       "2023-01-01",
			EndDate:         "2025-01-01",
			HoldingPeriod:   DefaultHoldingPeriod,
			SignalThreshold: 0.20,
		},
	}
}

func newTestService(cfg *config.Config, prices *fakePriceRepo, fundamentals *fakeFundamentalsRepo) BacktestService {
	return NewBacktestService(cfg, logger.NewNop(), cache.NewCache(time.Minute, time.Minute), prices, fundamentals)
}

// divergentFundamentals is one observation before the first session with a
// 30% forward premium, so every aligned session signals.
func divergentFundamentals() []dto.FundamentalPoint {
	return []dto.FundamentalPoint{fundamental(-1, 10, 13, 1.5)}
}

func TestRun_SingleTradeScenario(t *testing.T) {
	prices := &fakePriceRepo{series: map[string][]dto.PricePoint{"ANF": linearPrices(31, 100)}}
	fundamentals := &fakeFundamentalsRepo{series: map[string][]dto.FundamentalPoint{"ANF": divergentFundamentals()}}
	svc := newTestService(testConfig("ANF"), prices, fundamentals)

	result, err := svc.Run(context.Background(), dto.BacktestRequest{})
	require.NoError(t, err)

	require.Len(t, result.Positions, 1)
	pos := result.Positions[0]
	assert.Equal(t, "ANF", pos.Ticker)
	assert.Equal(t, day(0), pos.EntryDate)
	assert.Equal(t, day(30), pos.ExitDate)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, 130.0, pos.ExitPrice)
	assert.InDelta(t, 0.30, pos.Return, 1e-12)

	assert.Equal(t, 1, result.Summary.TradeCount)
	assert.InDelta(t, 1.0, result.Summary.WinRate, 1e-12)
	require.Len(t, result.Tickers, 1)
	assert.Equal(t, dto.TickerResult{Ticker: "ANF", Status: dto.TickerProcessed, Records: 31, Signals: 31, Trades: 1}, result.Tickers[0])
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	latest, ok := svc.LatestResult()
	require.True(t, ok)
	assert.Same(t, result, latest)
}

func TestRun_SeriesTooShortForExit(t *testing.T) {
	prices := &fakePriceRepo{series: map[string][]dto.PricePoint{"ANF": linearPrices(30, 100)}}
	fundamentals := &fakeFundamentalsRepo{series: map[string][]dto.FundamentalPoint{"ANF": divergentFundamentals()}}
	svc := newTestService(testConfig("ANF"), prices, fundamentals)

	result, err := svc.Run(context.Background(), dto.BacktestRequest{})
	require.NoError(t, err)

	assert.Empty(t, result.Positions)
	assert.Equal(t, 0, result.Summary.TradeCount)
	assert.Equal(t, 0.0, result.Summary.WinRate)
	assert.Equal(t, dto.TickerProcessed, result.Tickers[0].Status)
	assert.Equal(t, 30, result.Tickers[0].Signals)
}

func TestRun_EmptyFundamentalsSkipsTicker(t *testing.T) {
	prices := &fakePriceRepo{series: map[string][]dto.PricePoint{
		"ANF": linearPrices(40, 100),
		"GIL": linearPrices(40, 50),
	}}
	fundamentals := &fakeFundamentalsRepo{series: map[string][]dto.FundamentalPoint{
		"ANF": {},
		"GIL": divergentFundamentals(),
	}}
	svc := newTestService(testConfig("ANF", "GIL"), prices, fundamentals)

	result, err := svc.Run(context.Background(), dto.BacktestRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tickers, 2)
	assert.Equal(t, dto.TickerSkipped, result.Tickers[0].Status)
	assert.Equal(t, dto.TickerProcessed, result.Tickers[1].Status)
	for _, pos := range result.Positions {
		assert.Equal(t, "GIL", pos.Ticker)
	}
	assert.Len(t, result.Positions, 10)
}

func TestRun_FetchFailuresDoNotAbortRun(t *testing.T) {
	prices := &fakePriceRepo{
		series: map[string][]dto.PricePoint{
			"OK":    linearPrices(31, 100),
			"BADFM": linearPrices(31, 100),
		},
		errs: map[string]error{
			"DOWN":   errors.New("connection refused"),
			"NODATA": repository.ErrNoData,
		},
		panics: map[string]bool{"PANIC": true},
	}
	fundamentals := &fakeFundamentalsRepo{
		series: map[string][]dto.FundamentalPoint{"OK": divergentFundamentals()},
		errs: map[string]error{
			"BADFM": &repository.MalformedPayloadError{Provider: repository.ProviderFMP, Reason: "historical is not a list"},
		},
	}
	svc := newTestService(testConfig("DOWN", "NODATA", "PANIC", "BADFM", "OK"), prices, fundamentals)

	result, err := svc.Run(context.Background(), dto.BacktestRequest{})
	require.NoError(t, err)

	statuses := map[string]dto.TickerStatus{}
	for _, tr := range result.Tickers {
		statuses[tr.Ticker] = tr.Status
	}
	assert.Equal(t, map[string]dto.TickerStatus{
		"DOWN":   dto.TickerFailed,
		"NODATA": dto.TickerSkipped,
		"PANIC":  dto.TickerFailed,
		"BADFM":  dto.TickerFailed,
		"OK":     dto.TickerProcessed,
	}, statuses)
	assert.Equal(t, []string{"DOWN", "NODATA", "PANIC", "BADFM", "OK"}, prices.calls, "tickers run in order")
	require.Len(t, result.Positions, 1)
	assert.Equal(t, "OK", result.Positions[0].Ticker)
}

func TestRun_RequestOverridesConfig(t *testing.T) {
	prices := &fakePriceRepo{series: map[string][]dto.PricePoint{"MSFT": linearPrices(12, 100)}}
	fundamentals := &fakeFundamentalsRepo{series: map[string][]dto.FundamentalPoint{"MSFT": divergentFundamentals()}}
	svc := newTestService(testConfig("ANF"), prices, fundamentals)

	strict := 0.50
	result, err := svc.Run(context.Background(), dto.BacktestRequest{Tickers: []string{" msft"}, HoldingPeriod: 5, SignalThreshold: &strict})
	require.NoError(t, err)
	assert.Empty(t, result.Positions, "0.30 divergence is below a 0.50 threshold")

	loose := 0.10
	result, err = svc.Run(context.Background(), dto.BacktestRequest{Tickers: []string{"MSFT"}, HoldingPeriod: 5, SignalThreshold: &loose})
	require.NoError(t, err)
	assert.Len(t, result.Positions, 7)
	assert.Equal(t, []string{"MSFT"}, result.Request.Tickers)
	assert.Equal(t, 5, result.Request.HoldingPeriod)
}

func TestRun_InvalidRequest(t *testing.T) {
	svc := newTestService(testConfig(), &fakePriceRepo{}, &fakeFundamentalsRepo{})

	_, err := svc.Run(context.Background(), dto.BacktestRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest, "no tickers")

	_, err = svc.Run(context.Background(), dto.BacktestRequest{Tickers: []string{"ANF"}, HoldingPeriod: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Run(context.Background(), dto.BacktestRequest{Tickers: []string{"ANF"}, StartDate: day(10), EndDate: day(1)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRun_CancelledContext(t *testing.T) {
	prices := &fakePriceRepo{series: map[string][]dto.PricePoint{"ANF": linearPrices(31, 100)}}
	fundamentals := &fakeFundamentalsRepo{series: map[string][]dto.FundamentalPoint{"ANF": divergentFundamentals()}}
	svc := newTestService(testConfig("ANF", "GIL"), prices, fundamentals)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Run(ctx, dto.BacktestRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Tickers)
	assert.Empty(t, prices.calls)

	_, ok := svc.LatestResult()
	assert.False(t, ok, "cancelled runs are not kept as latest")
}

func TestResolveRequest_Defaults(t *testing.T) {
	svc := newTestService(testConfig("anf", "GIL", "ANF"), &fakePriceRepo{}, &fakeFundamentalsRepo{})

	req, err := svc.ResolveRequest(dto.BacktestRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ANF", "GIL"}, req.Tickers)
	assert.Equal(t, DefaultHoldingPeriod, req.HoldingPeriod)
	require.NotNil(t, req.SignalThreshold)
	assert.InDelta(t, 0.20, *req.SignalThreshold, 1e-12)
	assert.Equal(t, "2023-01-01", req.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-01-01", req.EndDate.Format("2006-01-02"))
}
