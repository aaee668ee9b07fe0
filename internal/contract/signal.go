package contract

import (
	"golang-pe-backtest/internal/dto"
)

// SignalContract marks entry sessions on an aligned series. Implementations
// must return a new slice and leave the input untouched.
type SignalContract interface {
	Generate(records []dto.AlignedRecord) []dto.AlignedRecord
}
