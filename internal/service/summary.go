package service

import (
	"golang-pe-backtest/internal/dto"
	"sort"
)

// Summarize computes the run statistics over every closed position. No
// positions is a valid outcome and yields an all-zero summary.
func Summarize(positions []dto.Position) dto.ResultsSummary {
	var result dto.ResultsSummary
	if len(positions) == 0 {
		return result
	}

	returns := make([]float64, len(positions))
	var total float64
	for i, p := range positions {
		returns[i] = p.Return
		total += p.Return
		if p.Return > 0 {
			result.WinningTrades++
		} else {
			result.LosingTrades++
		}
	}

	sort.Float64s(returns)
	result.TradeCount = len(returns)
	result.AverageReturn = total / float64(len(returns))
	result.MedianReturn = median(returns)
	result.WinRate = float64(result.WinningTrades) / float64(result.TradeCount)
	result.WorstReturn = returns[0]
	result.BestReturn = returns[len(returns)-1]
	return result
}

// median expects sorted, non-empty input.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
