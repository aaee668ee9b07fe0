package service

import (
	"context"
	"fmt"
	"time"

	"golang-pe-backtest/internal/dto"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func ptr(v float64) *float64 {
	return &v
}

func fundamental(offset int, trailing, forward, peg float64) dto.FundamentalPoint {
	return dto.FundamentalPoint{Date: day(offset), TrailingPE: ptr(trailing), ForwardPE: ptr(forward), PEGRatio: ptr(peg)}
}

// linearPrices returns n daily sessions priced start, start+1, ...
func linearPrices(n int, start float64) []dto.PricePoint {
	prices := make([]dto.PricePoint, n)
	for i := range prices {
		prices[i] = dto.PricePoint{Date: day(i), AdjClose: start + float64(i)}
	}
	return prices
}

type fakePriceRepo struct {
	series map[string][]dto.PricePoint
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (f *fakePriceRepo) GetDailyPrices(ctx context.Context, param dto.GetPriceHistoryParam) ([]dto.PricePoint, error) {
	f.calls = append(f.calls, param.Ticker)
	if f.panics[param.Ticker] {
		panic(fmt.Sprintf("boom %s", param.Ticker))
	}
	if err := f.errs[param.Ticker]; err != nil {
		return nil, err
	}
	return f.series[param.Ticker], nil
}

type fakeFundamentalsRepo struct {
	series map[string][]dto.FundamentalPoint
	errs   map[string]error
}

func (f *fakeFundamentalsRepo) GetKeyMetrics(ctx context.Context, ticker string) ([]dto.FundamentalPoint, error) {
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	return f.series[ticker], nil
}
