package service

import (
	"context"
	"fmt"
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService re-runs the configured backtest on a cron schedule so the
// API can serve a fresh result without a caller waiting on the providers.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop() context.Context
	Execute(ctx context.Context) error
}

type schedulerService struct {
	cfg             *config.Config
	log             *logger.Logger
	cronParser      cron.Parser
	cron            *cron.Cron
	backtestService BacktestService
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	backtestService BacktestService,
) *schedulerService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		cronParser: parser,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		backtestService: backtestService,
	}
}

// Start registers the backtest job and starts the cron runner. Runs triggered
// by the schedule derive from ctx.
func (s *schedulerService) Start(ctx context.Context) error {
	if _, err := s.cronParser.Parse(s.cfg.Scheduler.CronSpec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cfg.Scheduler.CronSpec, err)
	}

	_, err := s.cron.AddFunc(s.cfg.Scheduler.CronSpec, func() {
		if err := s.Execute(ctx); err != nil {
			s.log.ErrorContext(ctx, "Scheduled backtest failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backtest: %w", err)
	}

	s.cron.Start()
	s.log.InfoContext(ctx, "Backtest scheduler started", logger.StringField("cron_spec", s.cfg.Scheduler.CronSpec))
	return nil
}

// Stop stops the runner; the returned context is done once a running job ends.
func (s *schedulerService) Stop() context.Context {
	s.log.Info("Stopping backtest scheduler")
	return s.cron.Stop()
}

// Execute runs the configured backtest once, bounded by the scheduler timeout.
func (s *schedulerService) Execute(ctx context.Context) error {
	if s.cfg.Scheduler.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Scheduler.TimeoutDuration)
		defer cancel()
	}

	result, err := s.backtestService.Run(ctx, dto.BacktestRequest{})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Scheduled backtest completed",
		logger.StringField("run_id", result.RunID),
		logger.IntField("total_trades", result.Summary.TradeCount),
	)
	return nil
}
