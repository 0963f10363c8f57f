package analysis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/types"
)

// stubAnalyzer returns a canned score per candidate ID and an error for IDs
// listed in failing. It records which candidates it was asked about.
type stubAnalyzer struct {
	mu      sync.Mutex
	scores  map[string]float64
	failing map[string]bool
	seen    []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, candidate *types.Candidate, _ *types.SearchCriteria) (*types.AnalysisResult, error) {
	s.mu.Lock()
	s.seen = append(s.seen, candidate.ID)
	s.mu.Unlock()

	if s.failing[candidate.ID] {
		return nil, &ProviderError{Err: fmt.Errorf("stubbed outage")}
	}

	score := s.scores[candidate.ID]
	return &types.AnalysisResult{
		CandidateID:   candidate.ID,
		Score:         score,
		FitPrediction: score,
		Provider:      types.ProviderAI,
		AnalyzedAt:    time.Now(),
	}, nil
}

func (s *stubAnalyzer) seenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

func fastOptions() Options {
	return Options{
		MaxConcurrent: 5,
		MaxBatchSize:  15,
		StaggerDelay:  time.Microsecond,
		BatchPause:    time.Microsecond,
	}
}

func makeCandidates(n int) []types.Candidate {
	candidates := make([]types.Candidate, n)
	for i := range candidates {
		candidates[i] = types.Candidate{
			ID:     fmt.Sprintf("cand-%02d", i),
			Name:   fmt.Sprintf("Candidate %02d", i),
			Level:  types.LevelMid,
			Skills: []string{"go", "sql"},
		}
	}
	return candidates
}

func batchRequest(candidates []types.Candidate) *types.BatchRequest {
	return &types.BatchRequest{
		Candidates: candidates,
		Criteria: types.SearchCriteria{
			Skills: []string{"go"},
			Level:  types.LevelMid,
		},
		ShowAll: true,
	}
}

func TestOrchestrator_AllRemoteResultsRanked(t *testing.T) {
	candidates := makeCandidates(4)
	analyzer := &stubAnalyzer{scores: map[string]float64{
		"cand-00": 40, "cand-01": 90, "cand-02": 65, "cand-03": 20,
	}}
	o := NewOrchestrator(analyzer, nil, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), batchRequest(candidates))
	require.NoError(t, err)

	require.Len(t, result.Results, 4)
	assert.Equal(t, "cand-01", result.Results[0].CandidateID)
	assert.Equal(t, 1, result.Results[0].Rank)
	assert.Equal(t, types.TierExcellent, result.Results[0].Tier)
	assert.Equal(t, "cand-03", result.Results[3].CandidateID)
	assert.Equal(t, 4, result.Results[3].Rank)
	assert.Equal(t, types.TierNeedsImprovement, result.Results[3].Tier)

	assert.Equal(t, 4, result.Stats.Analyzed)
	assert.Zero(t, result.Stats.CacheHits)
	assert.Zero(t, result.Stats.Fallbacks)
	assert.NotEmpty(t, result.Stats.BatchID)
}

func TestOrchestrator_PartialFailureKeepsEveryCandidate(t *testing.T) {
	candidates := makeCandidates(5)
	analyzer := &stubAnalyzer{
		scores:  map[string]float64{"cand-00": 70, "cand-01": 70, "cand-03": 70, "cand-04": 70},
		failing: map[string]bool{"cand-02": true},
	}
	o := NewOrchestrator(analyzer, nil, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), batchRequest(candidates))
	require.NoError(t, err)
	require.Len(t, result.Results, 5)

	var degraded *types.AnalysisResult
	for i := range result.Results {
		if result.Results[i].CandidateID == "cand-02" {
			degraded = &result.Results[i]
		}
	}
	require.NotNil(t, degraded, "failing candidate must still be in the results")
	assert.Equal(t, types.ProviderAIFallback, degraded.Provider)
	require.NotEmpty(t, degraded.RiskFactors)
	assert.Contains(t, degraded.RiskFactors[0], "heuristic")
	assert.Equal(t, 1, result.Stats.Fallbacks)
}

func TestOrchestrator_TotalOutageDegradesWholeBatch(t *testing.T) {
	candidates := makeCandidates(6)
	failing := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		failing[c.ID] = true
	}
	o := NewOrchestrator(&stubAnalyzer{failing: failing}, nil, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), batchRequest(candidates))
	require.NoError(t, err)
	require.Len(t, result.Results, 6)

	for _, r := range result.Results {
		assert.Equal(t, types.ProviderAIFallback, r.Provider)
	}
	assert.Equal(t, 6, result.Stats.Fallbacks)
}

func TestOrchestrator_NilAnalyzerIsHeuristicNotFallback(t *testing.T) {
	candidates := makeCandidates(3)
	o := NewOrchestrator(nil, nil, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), batchRequest(candidates))
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	for _, r := range result.Results {
		assert.Equal(t, types.ProviderHeuristic, r.Provider)
		assert.Empty(t, r.RiskFactors)
	}
	assert.Zero(t, result.Stats.Fallbacks)
}

func TestOrchestrator_CacheHitsSkipDispatch(t *testing.T) {
	candidates := makeCandidates(4)
	req := batchRequest(candidates)

	resultCache := cache.NewResultCache(cache.DefaultMaxEntries, cache.DefaultTTL, nil)
	fingerprint := cache.Fingerprint(&req.Criteria)
	for _, id := range []string{"cand-00", "cand-02"} {
		resultCache.Put(context.Background(), id, fingerprint, types.AnalysisResult{
			CandidateID: id,
			Score:       77,
			Provider:    types.ProviderAI,
			AnalyzedAt:  time.Now(),
		})
	}

	analyzer := &stubAnalyzer{scores: map[string]float64{"cand-01": 50, "cand-03": 60}}
	o := NewOrchestrator(analyzer, resultCache, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), req)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"cand-01", "cand-03"}, analyzer.seenIDs())
	assert.Equal(t, 2, result.Stats.CacheHits)
	assert.Equal(t, 2, result.Stats.Analyzed)
	require.Len(t, result.Results, 4)
}

func TestOrchestrator_FreshResultsAreCached(t *testing.T) {
	candidates := makeCandidates(2)
	req := batchRequest(candidates)

	resultCache := cache.NewResultCache(cache.DefaultMaxEntries, cache.DefaultTTL, nil)
	analyzer := &stubAnalyzer{scores: map[string]float64{"cand-00": 45, "cand-01": 55}}
	o := NewOrchestrator(analyzer, resultCache, fastOptions(), nil)

	_, err := o.AnalyzeAndRank(context.Background(), req)
	require.NoError(t, err)

	// Second pass is served entirely from cache.
	result, err := o.AnalyzeAndRank(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.CacheHits)
	assert.Zero(t, result.Stats.Analyzed)
	assert.Len(t, analyzer.seenIDs(), 2)
}

func TestOrchestrator_Pagination(t *testing.T) {
	candidates := makeCandidates(10)
	scores := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		scores[c.ID] = float64(10 * i)
	}
	analyzer := &stubAnalyzer{scores: scores}
	o := NewOrchestrator(analyzer, nil, fastOptions(), nil)

	req := batchRequest(candidates)
	req.ShowAll = false
	req.Limit = 4
	req.Offset = 2

	result, err := o.AnalyzeAndRank(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Results, 4)
	assert.True(t, result.HasMore)
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 4, result.Stats.Total)
	assert.ElementsMatch(t, []string{"cand-02", "cand-03", "cand-04", "cand-05"}, analyzer.seenIDs())

	req2 := batchRequest(candidates)
	req2.ShowAll = false
	req2.Limit = 4
	req2.Offset = 8
	result2, err := o.AnalyzeAndRank(context.Background(), req2)
	require.NoError(t, err)
	assert.Len(t, result2.Results, 2)
	assert.False(t, result2.HasMore)
}

func TestOrchestrator_OffsetPastEnd(t *testing.T) {
	o := NewOrchestrator(&stubAnalyzer{}, nil, fastOptions(), nil)

	req := batchRequest(makeCandidates(3))
	req.ShowAll = false
	req.Limit = 5
	req.Offset = 10

	result, err := o.AnalyzeAndRank(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.False(t, result.HasMore)
}

func TestOrchestrator_InvalidCriteriaRejected(t *testing.T) {
	o := NewOrchestrator(&stubAnalyzer{}, nil, fastOptions(), nil)

	req := batchRequest(makeCandidates(1))
	req.Criteria.Level = "principal"

	_, err := o.AnalyzeAndRank(context.Background(), req)
	assert.Error(t, err)
}

func TestOrchestrator_StableTieOrder(t *testing.T) {
	candidates := makeCandidates(3)
	analyzer := &stubAnalyzer{scores: map[string]float64{
		"cand-00": 50, "cand-01": 50, "cand-02": 50,
	}}
	o := NewOrchestrator(analyzer, nil, fastOptions(), nil)

	result, err := o.AnalyzeAndRank(context.Background(), batchRequest(candidates))
	require.NoError(t, err)

	// Tied scores keep candidate input order.
	require.Len(t, result.Results, 3)
	for i, r := range result.Results {
		assert.Equal(t, fmt.Sprintf("cand-%02d", i), r.CandidateID)
		assert.Equal(t, i+1, r.Rank)
	}
}
