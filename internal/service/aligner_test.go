package service

import (
	"testing"

	"golang-pe-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignSeries_AsOfJoin(t *testing.T) {
	prices := linearPrices(6, 100) // days 0..5
	fundamentals := []dto.FundamentalPoint{
		fundamental(1, 10, 11, 1.0),
		fundamental(4, 20, 30, 2.0),
	}

	got := AlignSeries(prices, fundamentals)

	require.Len(t, got, 5, "day 0 precedes the first observation")
	assert.Equal(t, day(1), got[0].Date)
	assert.Equal(t, 10.0, got[0].TrailingPE)
	assert.Equal(t, 10.0, got[2].TrailingPE, "day 3 carries day 1 forward")
	assert.Equal(t, day(4), got[3].Date)
	assert.Equal(t, 20.0, got[3].TrailingPE, "observation dated on the session applies")
	assert.Equal(t, 30.0, got[4].ForwardPE)
	assert.Equal(t, 2.0, got[4].PEGRatio)
	assert.Equal(t, 105.0, got[4].AdjClose)
}

func TestAlignSeries_EmptyFundamentals(t *testing.T) {
	got := AlignSeries(linearPrices(10, 100), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, AlignSeries(nil, []dto.FundamentalPoint{fundamental(0, 1, 1, 1)}))
}

func TestAlignSeries_AllFundamentalsAfterPrices(t *testing.T) {
	got := AlignSeries(linearPrices(5, 100), []dto.FundamentalPoint{fundamental(10, 10, 13, 1)})
	assert.Empty(t, got)
}

func TestAlignSeries_IncompleteObservationDropsRows(t *testing.T) {
	incomplete := dto.FundamentalPoint{Date: day(2), TrailingPE: ptr(12), ForwardPE: nil, PEGRatio: ptr(1)}
	fundamentals := []dto.FundamentalPoint{
		fundamental(0, 10, 13, 1),
		incomplete,
		fundamental(4, 11, 12, 1),
	}

	got := AlignSeries(linearPrices(6, 100), fundamentals)

	dates := make([]int, len(got))
	for i, rec := range got {
		dates[i] = int(rec.Date.Sub(day(0)).Hours() / 24)
	}
	assert.Equal(t, []int{0, 1, 4, 5}, dates, "days 2 and 3 attach to the incomplete observation")
}

func TestAlignSeries_UnsortedInputs(t *testing.T) {
	prices := []dto.PricePoint{
		{Date: day(2), AdjClose: 102},
		{Date: day(0), AdjClose: 100},
		{Date: day(1), AdjClose: 101},
	}
	fundamentals := []dto.FundamentalPoint{
		fundamental(1, 20, 20, 1),
		fundamental(0, 10, 10, 1),
	}

	got := AlignSeries(prices, fundamentals)

	require.Len(t, got, 3)
	assert.Equal(t, []float64{100, 101, 102}, []float64{got[0].AdjClose, got[1].AdjClose, got[2].AdjClose})
	assert.Equal(t, []float64{10, 20, 20}, []float64{got[0].TrailingPE, got[1].TrailingPE, got[2].TrailingPE})
	assert.Equal(t, day(2), prices[0].Date, "input must not be reordered")
}
