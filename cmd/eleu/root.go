package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "eleu",
	Short: "Eleutherios governance engine",
	Long: `Eleu runs governance policies written as rule documents.

A policy is a set of one-line rules. Executing a rule instantiates its
target: a coordination forum, a service activation, or a child policy.
Every transition is permission-checked against forum capabilities and
recorded on an append-only audit trail.

For more information, visit: https://github.com/aletheon/eleutherios-mvp-sub002`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
