package scoring

import (
	"sort"
	"strings"

	"github.com/jonathan/talent-ranker/internal/types"
)

// Weights for the similarity blend: skill-set Jaccard dominates, with a
// small level-proximity component.
const (
	jaccardWeight    = 0.8
	levelBonusWeight = 0.2
	levelStepFalloff = 0.5 // level bonus lost per step of distance
)

// SimilarCandidate is one "find similar" match with the shared skills
// attached for explainability.
type SimilarCandidate struct {
	Candidate    types.Candidate `json:"candidate"`
	Similarity   float64         `json:"similarity"`
	SharedSkills []string        `json:"shared_skills,omitempty"`
}

// FindSimilar ranks candidates by similarity to base and returns the top N.
// Similarity is Jaccard over lower-cased skill sets weighted 0.8, plus a
// level-proximity bonus weighted 0.2. The base candidate itself (matched by
// ID) is excluded. topN <= 0 means no cap.
func FindSimilar(candidates []types.Candidate, base *types.Candidate, topN int) []SimilarCandidate {
	baseSkills := skillSet(base.Skills)

	similar := make([]SimilarCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}

		jaccard, shared := jaccardSimilarity(baseSkills, skillSet(c.Skills))
		levelBonus := levelProximity(base.Level, c.Level)
		combined := jaccardWeight*jaccard + levelBonusWeight*levelBonus

		similar = append(similar, SimilarCandidate{
			Candidate:    c,
			Similarity:   combined,
			SharedSkills: shared,
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})

	if topN > 0 && len(similar) > topN {
		similar = similar[:topN]
	}
	return similar
}

// jaccardSimilarity returns |intersection| / |union| over the two sets,
// defined as 0 when the union is empty, along with the sorted intersection.
func jaccardSimilarity(a, b map[string]bool) (float64, []string) {
	union := len(a)
	var shared []string
	for s := range b {
		if a[s] {
			shared = append(shared, s)
		} else {
			union++
		}
	}
	if union == 0 {
		return 0, nil
	}
	sort.Strings(shared)
	return float64(len(shared)) / float64(union), shared
}

// levelProximity gives 1 for an exact level match, decaying by
// levelStepFalloff per step, floored at 0.
func levelProximity(a, b types.Level) float64 {
	delta := a.Weight() - b.Weight()
	if delta < 0 {
		delta = -delta
	}
	bonus := 1.0 - levelStepFalloff*float64(delta)
	if bonus < 0 {
		return 0
	}
	return bonus
}

// skillSet lower-cases and de-duplicates a skill list.
func skillSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = true
		}
	}
	return set
}
