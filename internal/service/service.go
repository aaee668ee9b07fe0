package service

import (
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/repository"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/logger"
)

type Service struct {
	BacktestService  BacktestService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) *Service {
	backtestService := NewBacktestService(cfg, log, inmemoryCache, repo.PriceRepo, repo.FundamentalsRepo)
	return &Service{
		BacktestService:  backtestService,
		SchedulerService: NewSchedulerService(cfg, log, backtestService),
	}
}
