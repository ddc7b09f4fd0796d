// Package cmd implements the estimator command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
	flagStrategy string
)

var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Search, price and compare construction rates",
	Long: `estimator is a local catalog of construction work rates.

It finds rates by free-text description or code, scales their cost to a
quantity of work, breaks the cost down into resources and compares
alternative rates side by side. Output is JSON unless noted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/estimator/config.yaml)")
	pf.StringVar(&flagDB, "db", "", "catalog database path (overrides config)")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&flagStrategy, "strategy", "", "fulltext, semantic or hybrid (overrides config)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(tuiCmd)
}
