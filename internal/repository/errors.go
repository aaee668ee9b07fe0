package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData means the provider answered but had nothing for the ticker
	// or range. Callers skip the ticker.
	ErrNoData           = errors.New("no data available")
	ErrInvalidTicker    = errors.New("invalid ticker")
	ErrInvalidDateRange = errors.New("invalid date range")
)

// MalformedPayloadError is returned when a provider response cannot be
// trusted: wrong JSON shape, or an entry missing a required field.
type MalformedPayloadError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed payload: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed payload: %s", e.Provider, e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// ProviderStatusError carries a non-200 response.
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s api returned status: %d", e.Provider, e.StatusCode)
}

// IsMalformedPayload reports whether err (or anything it wraps) is a
// MalformedPayloadError.
func IsMalformedPayload(err error) bool {
	var target *MalformedPayloadError
	return errors.As(err, &target)
}
