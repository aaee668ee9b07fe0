package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger       `mapstructure:"logger"`
	Backtest     Backtest     `mapstructure:"backtest"`
	YahooFinance YahooFinance `mapstructure:"yahoo_finance"`
	FMP          FMP          `mapstructure:"fmp"`
	Cache        Cache        `mapstructure:"cache"`
	API          API          `mapstructure:"api"`
	Scheduler    Scheduler    `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level" validate:"required"`
	Encoding string `mapstructure:"encoding" validate:"oneof=json console"`
}

type Backtest struct {
	Tickers         []string `mapstructure:"tickers" validate:"required,min=1,dive,required"`
	StartDate       string   `mapstructure:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string   `mapstructure:"end_date" validate:"omitempty,datetime=2006-01-02"`
	HoldingPeriod   int      `mapstructure:"holding_period" validate:"min=1"`
	SignalThreshold float64  `mapstructure:"signal_threshold"`
	OutputPath      string   `mapstructure:"output_path"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required,url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RetryCount          int           `mapstructure:"retry_count"`
}

type FMP struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required,url"`
	APIKey              string        `mapstructure:"api_key"`
	Limit               int           `mapstructure:"limit" validate:"min=1"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RetryCount          int           `mapstructure:"retry_count"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type API struct {
	Port             int `mapstructure:"port"`
	MaxRequestPerMin int `mapstructure:"max_request_per_min"`
	MaxRequestBurst  int `mapstructure:"max_request_burst"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	CronSpec        string        `mapstructure:"cron_spec" validate:"required_if=Enabled true"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

// ErrInvalidConfig wraps every validation failure so callers can treat a
// malformed configuration as fatal at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// SetDefaults registers the values used when neither config.yaml nor the
// environment provides a key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")

	v.SetDefault("backtest.tickers", []string{"ANF", "GIL"})
	v.SetDefault("backtest.start_date", "2010-01-01")
	v.SetDefault("backtest.end_date", "")
	v.SetDefault("backtest.holding_period", 30)
	v.SetDefault("backtest.signal_threshold", 0.20)
	v.SetDefault("backtest.output_path", "")

	v.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo_finance.timeout", 15*time.Second)
	v.SetDefault("yahoo_finance.max_request_per_minute", 60)
	v.SetDefault("yahoo_finance.retry_count", 2)

	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("fmp.api_key", "")
	v.SetDefault("fmp.limit", 500)
	v.SetDefault("fmp.timeout", 15*time.Second)
	v.SetDefault("fmp.max_request_per_minute", 250)
	v.SetDefault("fmp.retry_count", 2)

	v.SetDefault("cache.default_expiration", 6*time.Hour)
	v.SetDefault("cache.cleanup_interval", 30*time.Minute)

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.max_request_per_min", 30)
	v.SetDefault("api.max_request_burst", 5)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron_spec", "30 22 * * 1-5")
	v.SetDefault("scheduler.timeout_duration", 30*time.Minute)
}

// Load reads .env (if present), then config.yaml from the working directory,
// then environment variables (backtest.holding_period -> BACKTEST_HOLDING_PERIOD).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	return FromViper(v)
}

// FromViper decodes and validates a populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Env overrides arrive as a single comma separated string.
	if len(cfg.Backtest.Tickers) == 1 && strings.Contains(cfg.Backtest.Tickers[0], ",") {
		cfg.Backtest.Tickers = strings.Split(cfg.Backtest.Tickers[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := goValidator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
