package dto

import "time"

// BacktestRequest describes one run. Zero values (nil threshold) are filled
// from config before the run starts.
type BacktestRequest struct {
	Tickers         []string  `json:"tickers"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	HoldingPeriod   int       `json:"holding_period"`
	SignalThreshold *float64  `json:"signal_threshold,omitempty"`
}

// AlignedRecord is one trading session carrying the as-of fundamentals and
// the derived divergence signal.
type AlignedRecord struct {
	Date       time.Time `json:"date"`
	AdjClose   float64   `json:"adj_close"`
	TrailingPE float64   `json:"trailing_pe"`
	ForwardPE  float64   `json:"forward_pe"`
	PEGRatio   float64   `json:"peg_ratio"`
	PEDiffPct  float64   `json:"pe_diff_pct"`
	Signal     bool      `json:"signal"`
}

// Position is a closed simulated trade.
type Position struct {
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Return     float64   `json:"return"`
}

// ResultsSummary aggregates every Position of a run. All fields are zero
// when there were no trades.
type ResultsSummary struct {
	TradeCount    int     `json:"trade_count"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	AverageReturn float64 `json:"average_return"`
	MedianReturn  float64 `json:"median_return"`
	WinRate       float64 `json:"win_rate"`
	BestReturn    float64 `json:"best_return"`
	WorstReturn   float64 `json:"worst_return"`
}

type TickerStatus string

const (
	TickerProcessed TickerStatus = "processed"
	TickerSkipped   TickerStatus = "skipped"
	TickerFailed    TickerStatus = "failed"
)

// TickerResult records what happened to one ticker during a run.
type TickerResult struct {
	Ticker  string       `json:"ticker"`
	Status  TickerStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
	Records int          `json:"records"`
	Signals int          `json:"signals"`
	Trades  int          `json:"trades"`
}

type RunResult struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Request    BacktestRequest `json:"request"`
	Tickers    []TickerResult  `json:"tickers"`
	Positions  []Position      `json:"positions"`
	Summary    ResultsSummary  `json:"summary"`
}

// RunBacktestRequest is the HTTP body of POST /api/backtest. Dates are
// calendar days; every field is optional.
type RunBacktestRequest struct {
	Tickers         []string `json:"tickers" validate:"omitempty,dive,required"`
	StartDate       string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	HoldingPeriod   int      `json:"holding_period" validate:"gte=0"`
	SignalThreshold *float64 `json:"signal_threshold"`
}
