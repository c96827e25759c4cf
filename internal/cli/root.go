package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "effwatch",
	Short: "ActivityWatch-based personal efficiency reports",
	Long: `effwatch turns ActivityWatch telemetry into periodic efficiency reports.

It pulls window, AFK, browser and editor events from a locally running
ActivityWatch server, filters idle time, aggregates usage per app,
category, domain and hour, compares against the previous period, and
writes a Markdown report, optionally with an AI-generated analysis.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
}
