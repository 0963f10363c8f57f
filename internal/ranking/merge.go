// Package ranking holds the ranking policy for merged analysis results:
// sort key, tie-break, tier thresholds, and rank assignment. It is kept
// separate from orchestration and caching so the policy can be tested on
// its own.
package ranking

import (
	"sort"

	"github.com/jonathan/talent-ranker/internal/types"
)

// Tier thresholds. Scores at or above the threshold fall into the bucket.
const (
	tierExcellentMin = 80.0
	tierGoodMin      = 60.0
	tierAverageMin   = 40.0
)

// TierFor buckets a score for display and quick filtering.
func TierFor(score float64) types.Tier {
	switch {
	case score >= tierExcellentMin:
		return types.TierExcellent
	case score >= tierGoodMin:
		return types.TierGood
	case score >= tierAverageMin:
		return types.TierAverage
	default:
		return types.TierNeedsImprovement
	}
}

// SortAndRank orders results descending by score and assigns 1-based ranks
// and tiers. The sort is stable, so results with tied scores keep the order
// the caller assembled them in (candidate input order). The input slice is
// returned sorted in place.
func SortAndRank(results []types.AnalysisResult) []types.AnalysisResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i + 1
		results[i].Tier = TierFor(results[i].Score)
	}
	return results
}

// Merge combines cached and freshly analyzed results back into the given
// candidate order, so that the later stable sort breaks ties by input
// position regardless of which tier served each candidate.
func Merge(candidates []types.Candidate, byID map[string]types.AnalysisResult) []types.AnalysisResult {
	merged := make([]types.AnalysisResult, 0, len(candidates))
	for _, c := range candidates {
		if res, ok := byID[c.ID]; ok {
			merged = append(merged, res)
		}
	}
	return merged
}
