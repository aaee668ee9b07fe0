package service

import (
	"golang-pe-backtest/internal/dto"
	"sort"
)

// AlignSeries joins fundamentals onto the price calendar as of each session:
// every price date takes the latest fundamentals observation dated on or
// before it. Sessions before the first observation, and sessions whose
// attached observation is missing a ratio, are dropped. An empty
// fundamentals series gives an empty result.
func AlignSeries(prices []dto.PricePoint, fundamentals []dto.FundamentalPoint) []dto.AlignedRecord {
	if len(prices) == 0 || len(fundamentals) == 0 {
		return []dto.AlignedRecord{}
	}

	prices = sortedPrices(prices)
	fundamentals = sortedFundamentals(fundamentals)

	records := make([]dto.AlignedRecord, 0, len(prices))
	j := -1
	for _, p := range prices {
		for j+1 < len(fundamentals) && !fundamentals[j+1].Date.After(p.Date) {
			j++
		}
		if j < 0 {
			continue
		}
		f := fundamentals[j]
		if !f.Complete() {
			continue
		}
		records = append(records, dto.AlignedRecord{
			Date:       p.Date,
			AdjClose:   p.AdjClose,
			TrailingPE: *f.TrailingPE,
			ForwardPE:  *f.ForwardPE,
			PEGRatio:   *f.PEGRatio,
		})
	}
	return records
}

func sortedPrices(in []dto.PricePoint) []dto.PricePoint {
	if sort.SliceIsSorted(in, func(i, j int) bool { return in[i].Date.Before(in[j].Date) }) {
		return in
	}
	out := append([]dto.PricePoint(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortedFundamentals(in []dto.FundamentalPoint) []dto.FundamentalPoint {
	if sort.SliceIsSorted(in, func(i, j int) bool { return in[i].Date.Before(in[j].Date) }) {
		return in
	}
	out := append([]dto.FundamentalPoint(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
