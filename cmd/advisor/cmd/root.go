package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "A paper-trading advisor driven by technical signals and a decision oracle",
	Long: `Advisor is a paper-trading loop written in Go.

It provides tools for:
  - Computing moving-average and oscillator signals from candle data
  - Asking a decision oracle for BUY/SELL/HOLD verdicts
  - Sizing paper orders with an adaptive risk factor
  - Tracking cash, positions and weighted-average cost basis
  - Journaling trade outcomes to SQLite or CSV`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
