package service

import (
	"context"
	"errors"
	"fmt"
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/contract"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/internal/repository"
	"golang-pe-backtest/internal/strategy"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/common"
	"golang-pe-backtest/pkg/logger"
	"golang-pe-backtest/pkg/utils"
	"math"

	"github.com/google/uuid"
)

// ErrInvalidRequest is returned before any ticker is fetched when the run
// parameters cannot produce a meaningful backtest.
var ErrInvalidRequest = errors.New("invalid backtest request")

// BacktestService runs the P/E divergence backtest over a list of tickers.
type BacktestService interface {
	Run(ctx context.Context, req dto.BacktestRequest) (*dto.RunResult, error)
	ResolveRequest(req dto.BacktestRequest) (dto.BacktestRequest, error)
	LatestResult() (*dto.RunResult, bool)
}

type backtestService struct {
	cfg              *config.Config
	log              *logger.Logger
	priceRepo        repository.PriceRepository
	fundamentalsRepo repository.FundamentalsRepository
	cache            cache.Cache
}

func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	inmemoryCache cache.Cache,
	priceRepo repository.PriceRepository,
	fundamentalsRepo repository.FundamentalsRepository,
) BacktestService {
	return &backtestService{
		cfg:              cfg,
		log:              log,
		priceRepo:        priceRepo,
		fundamentalsRepo: fundamentalsRepo,
		cache:            inmemoryCache,
	}
}

// LatestResult returns the last run that completed without being cancelled.
func (s *backtestService) LatestResult() (*dto.RunResult, bool) {
	return cache.GetTyped[*dto.RunResult](s.cache, common.KEY_LATEST_RUN)
}

// ResolveRequest fills unset fields from config, normalizes tickers and
// validates the result.
func (s *backtestService) ResolveRequest(req dto.BacktestRequest) (dto.BacktestRequest, error) {
	if len(req.Tickers) == 0 {
		req.Tickers = s.cfg.Backtest.Tickers
	}
	req.Tickers = utils.NormalizeTickers(req.Tickers)

	if req.StartDate.IsZero() {
		start, err := utils.ParseDate(s.cfg.Backtest.StartDate)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		req.StartDate = start
	}
	if req.EndDate.IsZero() {
		end, err := utils.ParseDate(s.cfg.Backtest.EndDate)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if end.IsZero() {
			end = utils.TruncateToDay(utils.TimeNowUTC())
		}
		req.EndDate = end
	}
	if req.HoldingPeriod == 0 {
		req.HoldingPeriod = s.cfg.Backtest.HoldingPeriod
	}
	if req.SignalThreshold == nil {
		threshold := s.cfg.Backtest.SignalThreshold
		req.SignalThreshold = &threshold
	}

	switch {
	case len(req.Tickers) == 0:
		return req, fmt.Errorf("%w: no tickers supplied", ErrInvalidRequest)
	case req.HoldingPeriod < 1:
		return req, fmt.Errorf("%w: holding period must be at least 1 session, got %d", ErrInvalidRequest, req.HoldingPeriod)
	case math.IsNaN(*req.SignalThreshold) || math.IsInf(*req.SignalThreshold, 0):
		return req, fmt.Errorf("%w: signal threshold must be finite", ErrInvalidRequest)
	case !req.StartDate.IsZero() && !req.EndDate.After(req.StartDate):
		return req, fmt.Errorf("%w: start date %s is not before end date %s", ErrInvalidRequest, utils.FormatDate(req.StartDate), utils.FormatDate(req.EndDate))
	}
	return req, nil
}

// Run processes the tickers one after another and aggregates every closed
// position once at the end. A ticker that cannot be fetched or has no usable
// data is recorded and skipped; it never aborts the run. Cancelling ctx stops
// the loop and returns the partial result together with ctx.Err().
func (s *backtestService) Run(ctx context.Context, req dto.BacktestRequest) (*dto.RunResult, error) {
	req, err := s.ResolveRequest(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	runLog := s.log.With(logger.StringField("run_id", runID))
	ctx = logger.NewContext(ctx, runLog)

	result := &dto.RunResult{
		RunID:     runID,
		StartedAt: utils.TimeNowUTC(),
		Request:   req,
		Tickers:   make([]dto.TickerResult, 0, len(req.Tickers)),
		Positions: []dto.Position{},
	}

	s.log.InfoContext(ctx, "Starting backtest run",
		logger.IntField("tickers", len(req.Tickers)),
		logger.IntField("holding_period", req.HoldingPeriod),
		logger.Float64Field("signal_threshold", *req.SignalThreshold),
	)

	signals := strategy.NewPEDivergenceStrategy(*req.SignalThreshold)
	for _, ticker := range req.Tickers {
		if !utils.ShouldContinue(ctx, runLog) {
			s.finish(result)
			return result, ctx.Err()
		}

		tickerResult, positions := s.processTicker(ctx, ticker, req, signals)
		result.Tickers = append(result.Tickers, tickerResult)
		result.Positions = append(result.Positions, positions...)
	}

	s.finish(result)
	s.cache.Set(common.KEY_LATEST_RUN, result, cache.NoExpiration)
	s.log.InfoContext(ctx, "Backtest run completed",
		logger.IntField("total_trades", result.Summary.TradeCount),
		logger.Float64Field("average_return", result.Summary.AverageReturn),
		logger.Float64Field("win_rate", result.Summary.WinRate),
		logger.DurationField("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (s *backtestService) finish(result *dto.RunResult) {
	result.Summary = Summarize(result.Positions)
	result.FinishedAt = utils.TimeNowUTC()
}

// processTicker is the failure boundary of a single ticker: errors and
// panics are turned into a skipped or failed TickerResult.
func (s *backtestService) processTicker(ctx context.Context, ticker string, req dto.BacktestRequest, signals contract.SignalContract) (tickerResult dto.TickerResult, positions []dto.Position) {
	tickerResult = dto.TickerResult{Ticker: ticker}
	s.log.InfoContext(ctx, "Processing ticker", logger.StringField("ticker", ticker))

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "Recovered panic while processing ticker",
				logger.StringField("ticker", ticker),
				logger.Field("panic", r),
			)
			tickerResult = dto.TickerResult{Ticker: ticker, Status: dto.TickerFailed, Reason: fmt.Sprintf("panic: %v", r)}
			positions = nil
		}
	}()

	prices, err := s.priceRepo.GetDailyPrices(ctx, dto.GetPriceHistoryParam{
		Ticker:    ticker,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return s.fetchFailed(ctx, tickerResult, "price history", err), nil
	}

	fundamentals, err := s.fundamentalsRepo.GetKeyMetrics(ctx, ticker)
	if err != nil {
		return s.fetchFailed(ctx, tickerResult, "key metrics", err), nil
	}

	records := AlignSeries(prices, fundamentals)
	if len(records) == 0 {
		s.log.WarnContext(ctx, "No data available for ticker, skipping",
			logger.StringField("ticker", ticker),
			logger.IntField("price_points", len(prices)),
			logger.IntField("fundamental_points", len(fundamentals)),
		)
		tickerResult.Status = dto.TickerSkipped
		tickerResult.Reason = "no aligned price and fundamentals data"
		return tickerResult, nil
	}

	records = signals.Generate(records)
	positions = SimulateHoldingPeriod(ticker, records, req.HoldingPeriod)

	tickerResult.Status = dto.TickerProcessed
	tickerResult.Records = len(records)
	tickerResult.Signals = strategy.CountSignals(records)
	tickerResult.Trades = len(positions)

	s.log.InfoContext(ctx, "Ticker processed",
		logger.StringField("ticker", ticker),
		logger.IntField("records", tickerResult.Records),
		logger.IntField("signals", tickerResult.Signals),
		logger.IntField("trades", tickerResult.Trades),
	)
	return tickerResult, positions
}

func (s *backtestService) fetchFailed(ctx context.Context, tickerResult dto.TickerResult, what string, err error) dto.TickerResult {
	tickerResult.Reason = fmt.Sprintf("%s: %v", what, err)
	if errors.Is(err, repository.ErrNoData) {
		tickerResult.Status = dto.TickerSkipped
		s.log.WarnContext(ctx, "No data available for ticker, skipping",
			logger.StringField("ticker", tickerResult.Ticker),
			logger.StringField("source", what),
			logger.ErrorField(err),
		)
		return tickerResult
	}

	tickerResult.Status = dto.TickerFailed
	s.log.ErrorContext(ctx, "Failed to fetch data for ticker, skipping",
		logger.StringField("ticker", tickerResult.Ticker),
		logger.StringField("source", what),
		logger.Field("malformed_payload", repository.IsMalformedPayload(err)),
		logger.ErrorField(err),
	)
	return tickerResult
}
