package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pe-backtest",
	Short: "Backtest forward vs trailing P/E divergence entries",
	Long: `pe-backtest fetches daily prices and historical P/E ratios for each ticker,
enters whenever the forward P/E sits far enough above the trailing P/E and
holds every entry for a fixed number of sessions.`,
}

func Execute() error {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	return rootCmd.Execute()
}
