package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-ranker/internal/observability"
	"github.com/jonathan/talent-ranker/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze and rank candidates against search criteria",
	Long:  "Analyzes a batch of candidates against search criteria, combining cached results, AI analysis, and heuristic fallback, and prints a ranked result set.",
	RunE:  runAnalyze,
}

var (
	analyzeCandidates string
	analyzeCriteria   string
	analyzeSkills     []string
	analyzeLevel      string
	analyzeQuery      string
	analyzeLimit      int
	analyzeOffset     int
	analyzeShowAll    bool
	analyzeOutput     string
	analyzeConfig     string
	analyzeJSONLogs   bool
	analyzeHeuristic  bool
	analyzeDBURL      string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCandidates, "candidates", "i", "", "Path to input candidates JSON file (required)")
	analyzeCmd.Flags().StringVar(&analyzeCriteria, "criteria", "", "Path to search criteria JSON file")
	analyzeCmd.Flags().StringSliceVarP(&analyzeSkills, "skills", "s", nil, "Skills to match (comma-separated, overrides criteria file)")
	analyzeCmd.Flags().StringVarP(&analyzeLevel, "level", "l", "", "Seniority level: junior, mid, senior, or all")
	analyzeCmd.Flags().StringVarP(&analyzeQuery, "query", "q", "", "Free-text query matched against name, title, and location")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "Maximum candidates to analyze in this page (0 = all)")
	analyzeCmd.Flags().IntVar(&analyzeOffset, "offset", 0, "Candidates to skip before analyzing")
	analyzeCmd.Flags().BoolVar(&analyzeShowAll, "all", false, "Analyze every candidate, ignoring limit and offset")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (default: stdout)")
	analyzeCmd.Flags().StringVarP(&analyzeConfig, "config", "c", "", "Path to config JSON file")
	analyzeCmd.Flags().BoolVar(&analyzeJSONLogs, "json-logs", false, "Emit logs as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeHeuristic, "heuristic-only", false, "Skip AI analysis and score heuristically")
	analyzeCmd.Flags().StringVar(&analyzeDBURL, "db-url", "", "PostgreSQL URL for the persistent result cache")

	if err := analyzeCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(analyzeConfig)
	if err != nil {
		return err
	}
	if analyzeHeuristic {
		cfg.Heuristic = true
	}
	if analyzeDBURL != "" {
		cfg.DatabaseURL = analyzeDBURL
	}

	candidates, err := loadCandidates(analyzeCandidates)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates found in %s", analyzeCandidates)
	}

	criteria, err := buildCriteria()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, err := buildEngine(ctx, cfg, analyzeJSONLogs)
	if err != nil {
		return err
	}
	defer eng.close()

	result, err := eng.orchestrator.AnalyzeAndRank(ctx, &types.BatchRequest{
		Candidates: candidates,
		Criteria:   *criteria,
		Limit:      analyzeLimit,
		Offset:     analyzeOffset,
		ShowAll:    analyzeShowAll,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintRankedResults(result)
		printer.PrintBatchStats(result.Stats)
	}

	return writeJSON(analyzeOutput, result)
}

// buildCriteria assembles search criteria from the criteria file, with any
// explicitly set flags winning over file values.
func buildCriteria() (*types.SearchCriteria, error) {
	criteria := &types.SearchCriteria{}

	if analyzeCriteria != "" {
		data, err := os.ReadFile(analyzeCriteria)
		if err != nil {
			return nil, fmt.Errorf("failed to read criteria file %s: %w", analyzeCriteria, err)
		}
		if err := json.Unmarshal(data, criteria); err != nil {
			return nil, fmt.Errorf("failed to parse criteria JSON: %w", err)
		}
	}

	if len(analyzeSkills) > 0 {
		criteria.Skills = analyzeSkills
	}
	if analyzeLevel != "" {
		criteria.Level = types.Level(strings.ToLower(analyzeLevel))
	}
	if analyzeQuery != "" {
		criteria.Query = analyzeQuery
	}

	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return criteria, nil
}
