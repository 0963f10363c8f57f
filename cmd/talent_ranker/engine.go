package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/talent-ranker/internal/analysis"
	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/config"
	"github.com/jonathan/talent-ranker/internal/llm"
	"github.com/jonathan/talent-ranker/internal/logger"
	"github.com/jonathan/talent-ranker/internal/types"
)

// engine bundles the wired-up components a command needs, plus the handles
// that must be released when the command finishes.
type engine struct {
	orchestrator *analysis.Orchestrator
	cache        *cache.ResultCache
	logger       *zap.Logger

	llmClient llm.Client
	store     *cache.PostgresStore
}

// loadCLIConfig reads the optional config file and overlays environment
// variables for the secrets that should not live in a file.
func loadCLIConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine wires the analysis stack from configuration. Without an API
// key (or with heuristic mode set) the engine runs heuristic-only; without
// a database URL the cache is memory-only.
func buildEngine(ctx context.Context, cfg *config.Config, jsonLogs bool) (*engine, error) {
	log, err := logger.New(jsonLogs, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	e := &engine{logger: log}

	maxEntries, ttl := cfg.CacheSettings()
	e.cache = cache.NewResultCache(maxEntries, ttl, log)

	if cfg.DatabaseURL != "" {
		store, err := cache.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		e.store = store
		e.cache.WithStore(store)
	}

	var analyzer analysis.Analyzer
	if !cfg.Heuristic && cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, nil, cfg.APIKey)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("failed to build LLM client: %w", err)
		}
		e.llmClient = client
		analyzer = analysis.NewQuotaAwareClient(client, cfg.ClientConfig(), log)
	} else {
		log.Info("running heuristic-only, no AI provider configured")
	}

	e.orchestrator = analysis.NewOrchestrator(analyzer, e.cache, cfg.OrchestratorOptions(), log)
	return e, nil
}

func (e *engine) close() {
	if e.llmClient != nil {
		_ = e.llmClient.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
	_ = e.logger.Sync()
}

// loadCandidates reads a candidate list from a JSON file. Both a bare array
// and an object with a "candidates" key are accepted.
func loadCandidates(path string) ([]types.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}

	var candidates []types.Candidate
	if err := json.Unmarshal(data, &candidates); err == nil {
		return candidates, nil
	}

	var wrapped struct {
		Candidates []types.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse candidates JSON: %w", err)
	}
	return wrapped.Candidates, nil
}

// writeJSON marshals v with indentation to path, or to stdout when path is
// empty.
func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}

	if path == "" {
		_, err = fmt.Fprintln(os.Stdout, string(out))
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
