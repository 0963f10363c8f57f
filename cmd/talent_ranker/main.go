// Package main provides the talent_ranker CLI: candidate analysis and
// ranking against search criteria.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent_ranker",
	Short: "Candidate analysis and ranking engine",
	Long:  "talent_ranker scores, analyzes, and ranks candidate profiles against search criteria, combining deterministic heuristics with AI-powered analysis.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
