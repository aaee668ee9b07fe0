package common

const (
	KEY_PRICE_HISTORY = "price_history:%s:%s:%d:%d"
	KEY_KEY_METRICS   = "key_metrics:%s:%s:%d"
	KEY_LATEST_RUN    = "backtest:latest_run"
)
