package http

import (
	"context"
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/service"
	"golang-pe-backtest/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	cfg       *config.Config
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, cfg *config.Config, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		cfg:       cfg,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api", middleware.NewRateLimiterMiddleware(h.cfg.API.MaxRequestPerMin, h.cfg.API.MaxRequestBurst))
	h.SetupJobs(base)
	h.SetupBacktest(base)
}
