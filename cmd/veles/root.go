package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veles-ids/veles/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "veles",
	Short: "Veles - dataset-driven threat detection engine",
	Long: `Veles is a network threat-detection engine built around named datasets:
dynamically loaded sets of hashes, addresses and strings that signatures
match extracted buffer bytes against, with optional JSON enrichment and
stateful watchlists mutated at match time.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		return logging.Setup(logging.Config{Level: level})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "veles.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
