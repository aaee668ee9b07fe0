package cmd

import (
	"context"
	"errors"
	"fmt"
	"golang-pe-backtest/internal/dto"
	"golang-pe-backtest/internal/report"
	"golang-pe-backtest/pkg/utils"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runFlags struct {
	tickers       []string
	holdingPeriod int
	threshold     float64
	start         string
	end           string
	output        string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest over the configured tickers and print the results",
	Run:   Run,
}

func init() {
	runCmd.Flags().StringSliceVar(&runFlags.tickers, "tickers", nil, "comma separated tickers (default from config)")
	runCmd.Flags().IntVar(&runFlags.holdingPeriod, "holding-period", 0, "sessions each position is held (default from config)")
	runCmd.Flags().Float64Var(&runFlags.threshold, "threshold", 0, "minimum (forward - trailing) / trailing P/E to enter (default from config)")
	runCmd.Flags().StringVar(&runFlags.start, "start", "", "first price date, YYYY-MM-DD (default from config)")
	runCmd.Flags().StringVar(&runFlags.end, "end", "", "last price date, YYYY-MM-DD (default today)")
	runCmd.Flags().StringVar(&runFlags.output, "output", "", "write the trade table as CSV to this path")
}

func Run(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	req, err := requestFromFlags(cmd)
	if err != nil {
		appDep.log.Fatal("Invalid run flags", zap.Error(err))
	}

	services := appDep.Services()
	result, err := services.BacktestService.Run(ctx, req)
	if err != nil && !errors.Is(err, context.Canceled) {
		appDep.log.Fatal("Backtest failed", zap.Error(err))
	}
	if err != nil {
		appDep.log.Warn("Backtest interrupted, reporting partial results", zap.Error(err))
	}

	if err := report.WriteRun(os.Stdout, result); err != nil {
		appDep.log.Fatal("Failed to write report", zap.Error(err))
	}

	output := runFlags.output
	if output == "" {
		output = appDep.cfg.Backtest.OutputPath
	}
	if output != "" {
		if err := writeTradesFile(output, result.Positions); err != nil {
			appDep.log.Fatal("Failed to write trades file", zap.String("path", output), zap.Error(err))
		}
		appDep.log.Info("Trades written", zap.String("path", output), zap.Int("trades", len(result.Positions)))
	}
}

// requestFromFlags leaves every flag the user did not set at its zero value so
// the service falls back to the configured defaults.
func requestFromFlags(cmd *cobra.Command) (dto.BacktestRequest, error) {
	req := dto.BacktestRequest{
		Tickers:       runFlags.tickers,
		HoldingPeriod: runFlags.holdingPeriod,
	}
	if cmd.Flags().Changed("holding-period") && runFlags.holdingPeriod < 1 {
		return req, fmt.Errorf("holding period must be at least 1, got %d", runFlags.holdingPeriod)
	}
	if cmd.Flags().Changed("threshold") {
		threshold := runFlags.threshold
		req.SignalThreshold = &threshold
	}

	var err error
	if req.StartDate, err = utils.ParseDate(runFlags.start); err != nil {
		return req, fmt.Errorf("invalid --start: %w", err)
	}
	if req.EndDate, err = utils.ParseDate(runFlags.end); err != nil {
		return req, fmt.Errorf("invalid --end: %w", err)
	}
	return req, nil
}

func writeTradesFile(path string, positions []dto.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteTradesCSV(f, positions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
