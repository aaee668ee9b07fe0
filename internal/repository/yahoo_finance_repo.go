package repository

import (
	"context"
	"fmt"
	"golang-pe-backtest/config"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/pkg/cache"
	"golang-pe-backtest/pkg/common"
	"golang-pe-backtest/pkg/httpclient"
	"golang-pe-backtest/pkg/logger"
	"golang-pe-backtest/pkg/ratelimit"
	"golang-pe-backtest/pkg/utils"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const ProviderYahooFinance = "yahoo_finance"

// PriceRepository returns a daily adjusted close series for a ticker.
type PriceRepository interface {
	GetDailyPrices(ctx context.Context, param dto.GetPriceHistoryParam) ([]dto.PricePoint, error)
}

type yahooFinanceRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	cache      cache.Cache
	limiters   *ratelimit.LimiterStore
}

// NewYahooFinanceRepository creates a new instance of yahooFinanceRepository.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache, limiters *ratelimit.LimiterStore) PriceRepository {
	limiters.Configure(ProviderYahooFinance, ratelimit.PerMinute(cfg.YahooFinance.MaxRequestPerMinute), 1)

	return &yahooFinanceRepository{
		httpClient: httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout, cfg.YahooFinance.RetryCount),
		cfg:        cfg,
		logger:     log,
		cache:      inmemoryCache,
		limiters:   limiters,
	}
}

func (r *yahooFinanceRepository) GetDailyPrices(ctx context.Context, param dto.GetPriceHistoryParam) ([]dto.PricePoint, error) {
	ticker := strings.ToUpper(strings.TrimSpace(param.Ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	end := param.EndDate
	if end.IsZero() {
		end = utils.TruncateToDay(utils.TimeNowUTC())
	}
	var period1 int64
	if !param.StartDate.IsZero() {
		period1 = param.StartDate.Unix()
	}
	if end.Unix() <= period1 {
		return nil, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidDateRange, utils.FormatDate(param.StartDate), utils.FormatDate(end))
	}

	cacheKey := fmt.Sprintf(common.KEY_PRICE_HISTORY, ProviderYahooFinance, ticker, period1, end.Unix())
	if cached, ok := cache.GetTyped[[]dto.PricePoint](r.cache, cacheKey); ok {
		r.logger.DebugContext(ctx, "Price history served from cache", logger.StringField("ticker", ticker))
		return append([]dto.PricePoint(nil), cached...), nil
	}

	limiter := r.limiters.GetLimiter(ProviderYahooFinance)
	if !limiter.Allow() {
		r.logger.WarnContext(ctx, "Yahoo Finance API request limit exceeded, waiting",
			logger.IntField("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
		)
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	queryParams := map[string]string{
		"period1":              fmt.Sprintf("%d", period1),
		"period2":              fmt.Sprintf("%d", end.Unix()),
		"interval":             "1d",
		"includePrePost":       "false",
		"includeAdjustedClose": "true",
		"events":               "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+url.PathEscape(ticker), queryParams, headers, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: yahoo finance has no chart for %s", ErrNoData, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, &ProviderStatusError{Provider: ProviderYahooFinance, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	points, err := parseYahooChart(ticker, &yahooResp)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, points, cache.DefaultExpiration)
	r.logger.DebugContext(ctx, "Fetched price history",
		logger.StringField("ticker", ticker),
		logger.IntField("sessions", len(points)),
	)
	return append([]dto.PricePoint(nil), points...), nil
}

// parseYahooChart converts the chart payload into an ascending, one point per
// exchange-local day series. The adjusted close is preferred; the raw close
// is used only when Yahoo omits the adjusted series.
func parseYahooChart(ticker string, yahooResp *dto.YahooFinanceResponse) ([]dto.PricePoint, error) {
	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo finance: %s: %s", ErrNoData, yahooResp.Chart.Error.Code, yahooResp.Chart.Error.Description)
	}
	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no chart returned for symbol: %s", ErrNoData, ticker)
	}

	result := yahooResp.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: no close prices for symbol: %s", ErrNoData, ticker)
	}

	byDay := make(map[time.Time]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		day := utils.TruncateToDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		byDay[day] = *closes[i]
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("%w: no valid sessions for symbol: %s", ErrNoData, ticker)
	}

	points := make([]dto.PricePoint, 0, len(byDay))
	for day, price := range byDay {
		points = append(points, dto.PricePoint{Date: day, AdjClose: price})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}
