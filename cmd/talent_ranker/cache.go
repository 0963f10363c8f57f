package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-ranker/internal/observability"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached analysis results",
	Long:  "Removes all cached analysis results from memory and, when a database is configured, from the persistent store.",
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show result cache statistics",
	RunE:  runCacheStats,
}

var (
	cacheClearConfig string
	cacheStatsConfig string
)

func init() {
	cacheClearCmd.Flags().StringVarP(&cacheClearConfig, "config", "c", "", "Path to config JSON file")
	cacheStatsCmd.Flags().StringVarP(&cacheStatsConfig, "config", "c", "", "Path to config JSON file")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(cacheClearConfig)
	if err != nil {
		return err
	}
	// The LLM client is never needed for cache maintenance.
	cfg.Heuristic = true

	ctx := cmd.Context()
	eng, err := buildEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer eng.close()

	eng.cache.Clear(ctx)

	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stdout, "Cleared in-memory cache (no database configured)")
	} else {
		fmt.Fprintln(os.Stdout, "Cleared in-memory and persistent cache")
	}
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(cacheStatsConfig)
	if err != nil {
		return err
	}
	cfg.Heuristic = true

	ctx := cmd.Context()
	eng, err := buildEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer eng.close()

	observability.NewPrinter(os.Stdout).PrintCacheStats(eng.cache.Stats())

	if eng.store != nil {
		keys, err := eng.store.Keys(ctx, "analysis:")
		if err != nil {
			return fmt.Errorf("failed to read persistent cache keys: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Persistent entries: %d\n", len(keys))
	}
	return nil
}
