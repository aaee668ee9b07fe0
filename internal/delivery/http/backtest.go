package http

import (
	"errors"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/internal/report"
	"golang-pe-backtest/internal/service"
	"golang-pe-backtest/pkg/utils"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/backtest")
	backtestGroup.POST("", h.runBacktest)
	backtestGroup.GET("/latest", h.latestBacktest)
	backtestGroup.GET("/latest/trades.csv", h.latestTradesCSV)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.RunBacktestRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	// Both dates already passed the datetime validation.
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)

	result, err := h.service.BacktestService.Run(ctx, dto.BacktestRequest{
		Tickers:         req.Tickers,
		StartDate:       start,
		EndDate:         end,
		HoldingPeriod:   req.HoldingPeriod,
		SignalThreshold: req.SignalThreshold,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to run backtest"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Backtest completed", result))
}

func (h *HttpAPIHandler) latestBacktest(c echo.Context) error {
	result, ok := h.service.BacktestService.LatestResult()
	if !ok {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("no completed backtest yet"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Latest backtest", result))
}

func (h *HttpAPIHandler) latestTradesCSV(c echo.Context) error {
	result, ok := h.service.BacktestService.LatestResult()
	if !ok {
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse("no completed backtest yet"))
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="trades-`+result.RunID+`.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return report.WriteTradesCSV(c.Response(), result.Positions)
}
