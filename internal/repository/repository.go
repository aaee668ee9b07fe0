package repository

import (
	"golang-pe-backtest/config"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/logger"
	"golang-pe-backtest/pkg/ratelimit"

	"golang.org/x/time/rate"
)

type Repository struct {
	PriceRepo        PriceRepository
	FundamentalsRepo FundamentalsRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) *Repository {
	limiters := ratelimit.NewLimiterStore(rate.Inf, 1)

	return &Repository{
		PriceRepo:        NewYahooFinanceRepository(cfg, log, inmemoryCache, limiters),
		FundamentalsRepo: NewFMPRepository(cfg, log, inmemoryCache, limiters),
	}
}
