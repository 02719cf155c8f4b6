package main

import "github.com/spf13/cobra"

// rootCmd is the root of the command-line application.
var rootCmd = &cobra.Command{
	Use:   "healthrisk",
	Short: "Predictive health risk service",
}

func init() {
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
