package repository

import (
	"bytes"
	"context"
	"encoding/json"
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
	"strconv"
	"strings"
)

const ProviderFMP = "fmp"

// FundamentalsRepository returns the valuation ratio history of a ticker.
// An empty slice with a nil error means the provider has no history for it.
type FundamentalsRepository interface {
	GetKeyMetrics(ctx context.Context, ticker string) ([]dto.FundamentalPoint, error)
}

type fmpRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	cache      cache.Cache
	limiters   *ratelimit.LimiterStore
}

// NewFMPRepository creates a Financial Modeling Prep key-metrics client.
func NewFMPRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache, limiters *ratelimit.LimiterStore) FundamentalsRepository {
	limiters.Configure(ProviderFMP, ratelimit.PerMinute(cfg.FMP.MaxRequestPerMinute), 1)

	return &fmpRepository{
		httpClient: httpclient.New(cfg.FMP.BaseURL, cfg.FMP.Timeout, cfg.FMP.RetryCount),
		cfg:        cfg,
		logger:     log,
		cache:      inmemoryCache,
		limiters:   limiters,
	}
}

func (r *fmpRepository) GetKeyMetrics(ctx context.Context, ticker string) ([]dto.FundamentalPoint, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	cacheKey := fmt.Sprintf(common.KEY_KEY_METRICS, ProviderFMP, ticker, r.cfg.FMP.Limit)
	if cached, ok := cache.GetTyped[[]dto.FundamentalPoint](r.cache, cacheKey); ok {
		r.logger.DebugContext(ctx, "Key metrics served from cache", logger.StringField("ticker", ticker))
		return append([]dto.FundamentalPoint(nil), cached...), nil
	}

	limiter := r.limiters.GetLimiter(ProviderFMP)
	if !limiter.Allow() {
		r.logger.WarnContext(ctx, "FMP API request limit exceeded, waiting",
			logger.IntField("max_request_per_minute", r.cfg.FMP.MaxRequestPerMinute),
		)
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	queryParams := map[string]string{
		"limit":  strconv.Itoa(r.cfg.FMP.Limit),
		"apikey": r.cfg.FMP.APIKey,
	}

	resp, err := r.httpClient.Get(ctx, "/historical/key-metrics/"+url.PathEscape(ticker), queryParams, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key metrics from fmp: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "FMP API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", ticker))
		return nil, &ProviderStatusError{Provider: ProviderFMP, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	points, err := ParseKeyMetrics(resp.Body)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey, points, cache.DefaultExpiration)
	r.logger.DebugContext(ctx, "Fetched key metrics",
		logger.StringField("ticker", ticker),
		logger.IntField("observations", len(points)),
	)
	return append([]dto.FundamentalPoint(nil), points...), nil
}

// ParseKeyMetrics validates an FMP historical key-metrics payload.
//
// A payload without a "historical" key (FMP answers {} or [] for unknown
// symbols) is not an error: it yields an empty slice. Anything that is present but
// has the wrong shape is a *MalformedPayloadError. Missing ratios are kept
// as nil so the aligner can decide what to drop.
func ParseKeyMetrics(body []byte) ([]dto.FundamentalPoint, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("{}")) {
		return []dto.FundamentalPoint{}, nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &MalformedPayloadError{Provider: ProviderFMP, Reason: "payload is not a JSON object", Err: err}
	}

	raw, ok := payload["historical"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []dto.FundamentalPoint{}, nil
	}

	var entries []dto.FMPKeyMetric
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &MalformedPayloadError{Provider: ProviderFMP, Reason: "historical is not a list of key metrics", Err: err}
	}

	points := make([]dto.FundamentalPoint, 0, len(entries))
	for i, entry := range entries {
		if entry.Date == "" {
			return nil, &MalformedPayloadError{Provider: ProviderFMP, Reason: fmt.Sprintf("historical[%d] has no date", i)}
		}
		date := entry.Date
		if len(date) > len(utils.DateLayout) {
			date = date[:len(utils.DateLayout)]
		}
		day, err := utils.ParseDate(date)
		if err != nil {
			return nil, &MalformedPayloadError{Provider: ProviderFMP, Reason: fmt.Sprintf("historical[%d] date", i), Err: err}
		}
		points = append(points, dto.FundamentalPoint{
			Date:       day,
			TrailingPE: entry.PERatio,
			ForwardPE:  entry.ForwardPE,
			PEGRatio:   entry.PEGRatio,
		})
	}

	// FMP lists newest first.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}
