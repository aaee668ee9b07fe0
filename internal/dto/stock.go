package dto

import "time"

// PricePoint is one trading session's adjusted close.
type PricePoint struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// FundamentalPoint is one valuation snapshot, usually quarterly. A ratio the
// provider did not report is nil.
type FundamentalPoint struct {
	Date       time.Time `json:"date"`
	TrailingPE *float64  `json:"trailing_pe"`
	ForwardPE  *float64  `json:"forward_pe"`
	PEGRatio   *float64  `json:"peg_ratio"`
}

// Complete reports whether every ratio is present.
func (f FundamentalPoint) Complete() bool {
	return f.TrailingPE != nil && f.ForwardPE != nil && f.PEGRatio != nil
}

type GetPriceHistoryParam struct {
	Ticker    string    `json:"ticker"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Yahoo Finance chart API response
type YahooFinanceResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol     string `json:"symbol"`
				Currency   string `json:"currency"`
				GMTOffset  int64  `json:"gmtoffset"`
				ExchangeTZ string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *YahooFinanceError `json:"error"`
	} `json:"chart"`
}

type YahooFinanceError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FMPKeyMetric is one entry of the FMP historical key-metrics list.
type FMPKeyMetric struct {
	Date      string   `json:"date"`
	PERatio   *float64 `json:"peRatio"`
	ForwardPE *float64 `json:"forwardPE"`
	PEGRatio  *float64 `json:"pegRatio"`
}
