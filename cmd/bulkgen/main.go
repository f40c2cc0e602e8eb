// Package main is the offline entry point: one batch in the foreground, no HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bulkgen",
	Short: "Batch CV and experience letter generator",
	Long:  "bulkgen synthesizes work experience for every candidate of the dataset and assembles their documents from the configured templates.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
