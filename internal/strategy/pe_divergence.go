package strategy

import (
	"golang-pe-backtest/internal/contract"
	"golang-pe-backtest/internal/dto"
	"math"
)

// DefaultPEDivergenceThreshold is the minimum relative premium of forward
// over trailing P/E that counts as an entry signal.
const DefaultPEDivergenceThreshold = 0.20

// PEDivergenceStrategy flags sessions where the forward P/E sits at least
// Threshold above the trailing P/E, relative to the trailing P/E.
type PEDivergenceStrategy struct {
	Threshold float64
}

func NewPEDivergenceStrategy(threshold float64) *PEDivergenceStrategy {
	return &PEDivergenceStrategy{Threshold: threshold}
}

// PEDiffPct returns (forward - trailing) / trailing. ok is false when the
// ratio is undefined: a zero trailing P/E or any non-finite input or result.
func PEDiffPct(trailingPE, forwardPE float64) (diff float64, ok bool) {
	if trailingPE == 0 {
		return 0, false
	}
	diff = (forwardPE - trailingPE) / trailingPE
	if math.IsNaN(diff) || math.IsInf(diff, 0) {
		return 0, false
	}
	return diff, true
}

// Evaluate returns rec with PEDiffPct and Signal filled in. An undefined
// divergence yields PEDiffPct 0 and no signal; the record itself is kept so
// it still counts as a session for the holding period.
func (s *PEDivergenceStrategy) Evaluate(rec dto.AlignedRecord) dto.AlignedRecord {
	diff, ok := PEDiffPct(rec.TrailingPE, rec.ForwardPE)
	rec.PEDiffPct = diff
	rec.Signal = ok && diff >= s.Threshold
	return rec
}

// Generate evaluates every record independently and returns new records.
func (s *PEDivergenceStrategy) Generate(records []dto.AlignedRecord) []dto.AlignedRecord {
	out := make([]dto.AlignedRecord, len(records))
	for i, rec := range records {
		out[i] = s.Evaluate(rec)
	}
	return out
}

// CountSignals returns how many records carry an entry signal.
func CountSignals(records []dto.AlignedRecord) int {
	n := 0
	for _, rec := range records {
		if rec.Signal {
			n++
		}
	}
	return n
}

var _ contract.SignalContract = (*PEDivergenceStrategy)(nil)
