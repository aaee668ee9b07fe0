package utils

import (
	"context"
	"golang-pe-backtest/pkg/logger"
	"runtime"
	"strings"
)

// NormalizeTickers upper-cases and trims symbols, dropping blanks and
// duplicates while keeping the first-seen order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		pc, _, _, ok := runtime.Caller(1)
		funcName := "unknown"
		if ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				parts := strings.Split(fn.Name(), "/")
				funcName = parts[len(parts)-1]
			}
		}

		log.WarnContext(ctx, "Context cancelled",
			logger.StringField("caller", funcName),
		)
		return false
	default:
		return true
	}
}
