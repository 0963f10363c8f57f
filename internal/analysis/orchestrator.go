package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/ranking"
	"github.com/jonathan/talent-ranker/internal/scoring"
	"github.com/jonathan/talent-ranker/internal/types"
)

// Orchestrator defaults.
const (
	DefaultMaxConcurrent = 5
	DefaultMaxBatchSize  = 15
	DefaultStaggerDelay  = 200 * time.Millisecond
	DefaultBatchPause    = 50 * time.Millisecond
)

// fallbackRiskNote explains the degradation on ai-fallback results.
const fallbackRiskNote = "AI analysis unavailable; score derived from heuristic ranking only"

// Analyzer is the remote analysis dependency of the orchestrator. It is
// satisfied by *QuotaAwareClient; tests substitute fakes.
type Analyzer interface {
	Analyze(ctx context.Context, candidate *types.Candidate, criteria *types.SearchCriteria) (*types.AnalysisResult, error)
}

// Options holds the orchestrator's dispatch knobs. Zero values fall back to
// the defaults above.
type Options struct {
	// MaxConcurrent bounds simultaneous in-flight remote calls.
	MaxConcurrent int
	// MaxBatchSize is the size of each concurrency-bounded sub-batch.
	MaxBatchSize int
	// StaggerDelay spaces out dispatch starts within a sub-batch to smooth
	// bursts against the provider's per-minute quota.
	StaggerDelay time.Duration
	// BatchPause is the pause between successive sub-batches.
	BatchPause time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = DefaultMaxBatchSize
	}
	if o.StaggerDelay <= 0 {
		o.StaggerDelay = DefaultStaggerDelay
	}
	if o.BatchPause <= 0 {
		o.BatchPause = DefaultBatchPause
	}
	return o
}

// Orchestrator coordinates one analysis pass: pagination, cache partition,
// bounded-concurrency remote dispatch, per-candidate heuristic fallback,
// and the final merge/rank. It never fails the caller for candidate-level
// errors: every submitted candidate appears in the result set, degraded to
// the heuristic tier at worst.
type Orchestrator struct {
	analyzer Analyzer
	cache    *cache.ResultCache
	opts     Options
	logger   *zap.Logger
}

// NewOrchestrator builds an orchestrator. A nil analyzer selects
// heuristic-only operation; results then carry the plain heuristic tag
// rather than ai-fallback, because nothing was degraded.
func NewOrchestrator(analyzer Analyzer, resultCache *cache.ResultCache, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resultCache == nil {
		resultCache = cache.NewResultCache(cache.DefaultMaxEntries, cache.DefaultTTL, logger)
	}
	return &Orchestrator{
		analyzer: analyzer,
		cache:    resultCache,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// AnalyzeAndRank runs the full pipeline over one batch request and returns
// a combined, ranked, paginated result set.
func (o *Orchestrator) AnalyzeAndRank(ctx context.Context, req *types.BatchRequest) (*types.BatchResult, error) {
	start := time.Now()
	batchID := uuid.NewString()

	if err := req.Criteria.Validate(); err != nil {
		return nil, err
	}

	subset, hasMore := paginate(req)
	fingerprint := cache.Fingerprint(&req.Criteria)

	ids := make([]string, len(subset))
	for i, c := range subset {
		ids[i] = c.ID
	}
	lookup := o.cache.GetBatch(ctx, ids, fingerprint)

	byID := make(map[string]types.AnalysisResult, len(subset))
	for _, hit := range lookup.Hits {
		byID[hit.CandidateID] = hit
	}

	missing := make(map[string]bool, len(lookup.MissingIDs))
	for _, id := range lookup.MissingIDs {
		missing[id] = true
	}
	toAnalyze := make([]types.Candidate, 0, len(lookup.MissingIDs))
	for _, c := range subset {
		if missing[c.ID] {
			toAnalyze = append(toAnalyze, c)
		}
	}

	o.logger.Info("analysis batch starting",
		zap.String("batch_id", batchID),
		zap.Int("candidates", len(subset)),
		zap.Int("cache_hits", len(lookup.Hits)),
		zap.Int("to_analyze", len(toAnalyze)))

	fresh := o.analyzeBatch(ctx, toAnalyze, &req.Criteria)

	fallbacks := 0
	for i, result := range fresh {
		if result.Provider == types.ProviderAIFallback {
			fallbacks++
		}
		o.cache.Put(ctx, toAnalyze[i].ID, fingerprint, result)
		byID[result.CandidateID] = result
	}

	merged := ranking.Merge(subset, byID)
	ranked := ranking.SortAndRank(merged)

	stats := types.BatchStats{
		BatchID:   batchID,
		Total:     len(subset),
		CacheHits: len(lookup.Hits),
		Analyzed:  len(toAnalyze),
		Fallbacks: fallbacks,
		Elapsed:   time.Since(start),
	}

	o.logger.Info("analysis batch complete",
		zap.String("batch_id", batchID),
		zap.Int("fallbacks", fallbacks),
		zap.Duration("elapsed", stats.Elapsed))

	return &types.BatchResult{
		Results: ranked,
		Total:   len(req.Candidates),
		HasMore: hasMore,
		Stats:   stats,
	}, nil
}

// FindSimilar returns the candidates most similar to the base candidate.
// Pure heuristic; no remote calls.
func (o *Orchestrator) FindSimilar(candidates []types.Candidate, base *types.Candidate, topN int) []scoring.SimilarCandidate {
	return scoring.FindSimilar(candidates, base, topN)
}

// paginate selects the working subset. ShowAll and a non-positive limit
// both mean "process everything"; hasMore is reported false in either case.
func paginate(req *types.BatchRequest) ([]types.Candidate, bool) {
	total := len(req.Candidates)
	if req.ShowAll || req.Limit <= 0 {
		return req.Candidates, false
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, false
	}

	end := offset + req.Limit
	if end > total {
		end = total
	}
	return req.Candidates[offset:end], offset+req.Limit < total
}

// analyzeBatch dispatches candidates through the analyzer in sub-batches of
// MaxBatchSize, at most MaxConcurrent in flight, each dispatch staggered
// from the sub-batch start. The returned slice always has one result per
// candidate: remote failures degrade to the heuristic scorer, tagged
// ai-fallback.
func (o *Orchestrator) analyzeBatch(ctx context.Context, candidates []types.Candidate, criteria *types.SearchCriteria) []types.AnalysisResult {
	results := make([]types.AnalysisResult, len(candidates))

	if o.analyzer == nil {
		// Heuristic-only operation was selected, not degraded to.
		for i := range candidates {
			results[i] = o.heuristicResult(&candidates[i], criteria, types.ProviderHeuristic, "")
		}
		return results
	}

	for batchStart := 0; batchStart < len(candidates); batchStart += o.opts.MaxBatchSize {
		if batchStart > 0 {
			if err := sleepCtx(ctx, o.opts.BatchPause); err != nil {
				o.fillFallbacks(results, candidates, criteria, batchStart, len(candidates))
				return results
			}
		}

		batchEnd := batchStart + o.opts.MaxBatchSize
		if batchEnd > len(candidates) {
			batchEnd = len(candidates)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.opts.MaxConcurrent)

		for i := batchStart; i < batchEnd; i++ {
			if i > batchStart {
				// Staggered dispatch: successive starts are spaced to avoid
				// a thundering-herd burst against the per-minute ceiling.
				if err := sleepCtx(ctx, o.opts.StaggerDelay); err != nil {
					o.fillFallbacks(results, candidates, criteria, i, len(candidates))
					_ = g.Wait()
					return results
				}
			}

			i := i
			g.Go(func() error {
				results[i] = o.analyzeOne(gctx, &candidates[i], criteria)
				return nil
			})
		}

		// Workers absorb their own failures, so Wait only reflects context
		// cancellation, which the fallback path already covers.
		_ = g.Wait()
	}

	return results
}

// analyzeOne runs one remote analysis, degrading to the heuristic scorer on
// any unrecoverable failure. A candidate is never dropped.
func (o *Orchestrator) analyzeOne(ctx context.Context, candidate *types.Candidate, criteria *types.SearchCriteria) types.AnalysisResult {
	result, err := o.analyzer.Analyze(ctx, candidate, criteria)
	if err != nil {
		o.logger.Warn("remote analysis failed, using heuristic fallback",
			zap.String("candidate_id", candidate.ID),
			zap.Error(err))
		return o.heuristicResult(candidate, criteria, types.ProviderAIFallback, fallbackRiskNote)
	}
	return *result
}

// fillFallbacks degrades every not-yet-analyzed candidate from index start
// onward, used when the batch as a whole can no longer proceed.
func (o *Orchestrator) fillFallbacks(results []types.AnalysisResult, candidates []types.Candidate, criteria *types.SearchCriteria, start, end int) {
	for i := start; i < end; i++ {
		if results[i].CandidateID == "" {
			results[i] = o.heuristicResult(&candidates[i], criteria, types.ProviderAIFallback, fallbackRiskNote)
		}
	}
}

func (o *Orchestrator) heuristicResult(candidate *types.Candidate, criteria *types.SearchCriteria, provider types.Provider, riskNote string) types.AnalysisResult {
	score, reasons := scoring.Score(candidate, criteria)

	var risks []string
	if riskNote != "" {
		risks = []string{riskNote}
	}

	// The heuristic score is unbounded above; the fit prediction is a
	// probability-like value and stays clamped.
	return types.AnalysisResult{
		CandidateID:   candidate.ID,
		Score:         score,
		Reasons:       reasons,
		FitPrediction: clampScore(score),
		RiskFactors:   risks,
		Provider:      provider,
		AnalyzedAt:    time.Now(),
	}
}
