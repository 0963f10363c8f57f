package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/scoring"
	"github.com/jonathan/talent-ranker/internal/types"
)

func TestPrintRankedResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedResults(&types.BatchResult{
		Results: []types.AnalysisResult{
			{CandidateID: "cand-1", Rank: 1, Score: 92.5, Tier: types.TierExcellent, Provider: types.ProviderAI},
			{CandidateID: "cand-2", Rank: 2, Score: 48, Tier: types.TierAverage, Provider: types.ProviderAIFallback,
				Reasons: []string{"2 matching skills"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "RANKED CANDIDATES")
	assert.Contains(t, out, "cand-1")
	assert.Contains(t, out, "92.5")
	assert.Contains(t, out, "excellent")
	assert.Contains(t, out, "ai-fallback")
	assert.Contains(t, out, "2 matching skills")
}

func TestPrintRankedResults_NilAndEmptyAreSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedResults(nil)
	p.PrintRankedResults(&types.BatchResult{})

	assert.Empty(t, buf.String())
}

func TestPrintRankedResults_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := make([]types.AnalysisResult, 8)
	for i := range results {
		results[i] = types.AnalysisResult{CandidateID: "cand", Rank: i + 1, Score: 50}
	}
	p.PrintRankedResults(&types.BatchResult{Results: results})

	assert.Contains(t, buf.String(), "and 3 more candidates")
}

func TestPrintBatchStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchStats(types.BatchStats{
		BatchID:   "batch-123",
		Total:     10,
		CacheHits: 4,
		Analyzed:  6,
		Fallbacks: 2,
		Elapsed:   1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "batch-123")
	assert.Contains(t, out, "Cache hits: 4")
	assert.Contains(t, out, "Fallbacks: 2")
	assert.Contains(t, out, "1.5s")
}

func TestPrintBatchStats_NoFallbackLineWhenClean(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchStats(types.BatchStats{BatchID: "b", Total: 3})

	assert.NotContains(t, buf.String(), "Fallbacks")
}

func TestPrintSimilar(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	base := &types.Candidate{ID: "cand-1", Name: "Dana Ellis"}
	p.PrintSimilar(base, []scoring.SimilarCandidate{
		{
			Candidate:    types.Candidate{ID: "cand-2", Name: "Riley Chen"},
			Similarity:   0.467,
			SharedSkills: []string{"go", "postgres"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "SIMILAR CANDIDATES")
	assert.Contains(t, out, "Dana Ellis")
	assert.Contains(t, out, "Riley Chen")
	assert.Contains(t, out, "0.467")
	assert.Contains(t, out, "go, postgres")
}

func TestPrintCacheStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCacheStats(cache.Stats{Entries: 12, MaxEntries: 100, ApproxSizeBytes: 4096, TTL: 12 * time.Hour})

	out := buf.String()
	assert.Contains(t, out, "12 / 100")
	assert.Contains(t, out, "4096 bytes")
	assert.Contains(t, out, "12h")
}
