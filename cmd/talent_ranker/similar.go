package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-ranker/internal/observability"
	"github.com/jonathan/talent-ranker/internal/scoring"
	"github.com/jonathan/talent-ranker/internal/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find candidates similar to a base candidate",
	Long:  "Ranks candidates by skill-set and seniority similarity to a base candidate, using Jaccard overlap of skills. No AI calls are made.",
	RunE:  runSimilar,
}

var (
	similarCandidates string
	similarBaseID     string
	similarTopN       int
	similarOutput     string
	similarVerbose    bool
)

func init() {
	similarCmd.Flags().StringVarP(&similarCandidates, "candidates", "i", "", "Path to input candidates JSON file (required)")
	similarCmd.Flags().StringVarP(&similarBaseID, "id", "b", "", "ID of the base candidate (required)")
	similarCmd.Flags().IntVarP(&similarTopN, "top", "n", 5, "Number of similar candidates to return")
	similarCmd.Flags().StringVarP(&similarOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	similarCmd.Flags().BoolVarP(&similarVerbose, "verbose", "v", false, "Print a formatted summary to stderr")

	if err := similarCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}
	if err := similarCmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("failed to mark id flag as required: %v", err))
	}

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(_ *cobra.Command, _ []string) error {
	candidates, err := loadCandidates(similarCandidates)
	if err != nil {
		return err
	}

	var base *types.Candidate
	for i := range candidates {
		if candidates[i].ID == similarBaseID {
			base = &candidates[i]
			break
		}
	}
	if base == nil {
		return fmt.Errorf("candidate %q not found in %s", similarBaseID, similarCandidates)
	}

	similar := scoring.FindSimilar(candidates, base, similarTopN)

	if similarVerbose {
		observability.NewPrinter(os.Stderr).PrintSimilar(base, similar)
	}

	return writeJSON(similarOutput, similar)
}
