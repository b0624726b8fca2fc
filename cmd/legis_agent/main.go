// Package main provides the entry point for the legis_agent CLI, which
// publishes Chamber of Deputies vote data for the static website.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "legis_agent",
	Short: "Chamber of Deputies vote tracker",
	Long: `legis_agent downloads roll-call votes from the Chilean Chamber of Deputies open-data
service, normalizes them into flat records and publishes yearly statistics for the website.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
