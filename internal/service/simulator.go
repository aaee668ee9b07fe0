package service

import (
	"golang-pe-backtest/internal/dto"
)

// DefaultHoldingPeriod is the number of sessions a simulated position is held.
const DefaultHoldingPeriod = 30

// SimulateHoldingPeriod opens a position at every signalled session and
// closes it holdingPeriod sessions later. Signals too close to the end of
// the series to reach their exit session are skipped, never truncated.
//
// Signals are evaluated independently: a signal firing while an earlier
// position is still open produces its own, overlapping position.
func SimulateHoldingPeriod(ticker string, records []dto.AlignedRecord, holdingPeriod int) []dto.Position {
	positions := []dto.Position{}
	if holdingPeriod < 1 {
		return positions
	}

	for i, rec := range records {
		if !rec.Signal {
			continue
		}
		exitIndex := i + holdingPeriod
		if exitIndex >= len(records) {
			continue
		}
		positions = append(positions, closePosition(ticker, rec, records[exitIndex]))
	}
	return positions
}

func closePosition(ticker string, entry, exit dto.AlignedRecord) dto.Position {
	return dto.Position{
		Ticker:     ticker,
		EntryDate:  entry.Date,
		ExitDate:   exit.Date,
		EntryPrice: entry.AdjClose,
		ExitPrice:  exit.AdjClose,
		Return:     (exit.AdjClose - entry.AdjClose) / entry.AdjClose,
	}
}
