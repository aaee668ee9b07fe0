package service

import (
	"testing"

	"golang-pe-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
)

func positionsWithReturns(returns ...float64) []dto.Position {
	positions := make([]dto.Position, len(returns))
	for i, r := range returns {
		positions[i] = dto.Position{Ticker: "T", Return: r}
	}
	return positions
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    dto.ResultsSummary
	}{
		{
			name:    "no trades",
			returns: nil,
			want:    dto.ResultsSummary{},
		},
		{
			name:    "zero return is not a win",
			returns: []float64{0.10, -0.05, 0.20, 0.0},
			want: dto.ResultsSummary{
				TradeCount:    4,
				WinningTrades: 2,
				LosingTrades:  2,
				AverageReturn: 0.0625,
				MedianReturn:  0.05,
				WinRate:       0.5,
				BestReturn:    0.20,
				WorstReturn:   -0.05,
			},
		},
		{
			name:    "odd count median",
			returns: []float64{0.3, -0.1, 0.1},
			want: dto.ResultsSummary{
				TradeCount:    3,
				WinningTrades: 2,
				LosingTrades:  1,
				AverageReturn: 0.1,
				MedianReturn:  0.1,
				WinRate:       2.0 / 3.0,
				BestReturn:    0.3,
				WorstReturn:   -0.1,
			},
		},
		{
			name:    "single trade",
			returns: []float64{0.30},
			want: dto.ResultsSummary{
				TradeCount:    1,
				WinningTrades: 1,
				AverageReturn: 0.30,
				MedianReturn:  0.30,
				WinRate:       1,
				BestReturn:    0.30,
				WorstReturn:   0.30,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(positionsWithReturns(tt.returns...))
			assert.Equal(t, tt.want.TradeCount, got.TradeCount)
			assert.Equal(t, tt.want.WinningTrades, got.WinningTrades)
			assert.Equal(t, tt.want.LosingTrades, got.LosingTrades)
			assert.InDelta(t, tt.want.AverageReturn, got.AverageReturn, 1e-12)
			assert.InDelta(t, tt.want.MedianReturn, got.MedianReturn, 1e-12)
			assert.InDelta(t, tt.want.WinRate, got.WinRate, 1e-12)
			assert.InDelta(t, tt.want.BestReturn, got.BestReturn, 1e-12)
			assert.InDelta(t, tt.want.WorstReturn, got.WorstReturn, 1e-12)
		})
	}
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	positions := positionsWithReturns(0.3, -0.2, 0.1)
	Summarize(positions)
	assert.Equal(t, 0.3, positions[0].Return)
}
