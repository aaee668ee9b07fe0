package cmd

import (
	"context"
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/repository"
	"golang-pe-backtest/internal/service"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}, nil
}

// Services wires the provider repositories into the backtest and scheduler services.
func (d *AppDependency) Services() *service.Service {
	repo := repository.NewRepository(d.cfg, d.cache, d.log)
	return service.NewService(d.cfg, d.log, repo, d.cache)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	d.cache.Flush()
	// Sync on a terminal stderr returns EINVAL, nothing useful to report.
	_ = d.log.Sync()
	return nil
}
