// Package scoring implements the deterministic candidate scoring rules:
// skill overlap, seniority proximity, free-text query match, and a skill
// diversity bonus. It has no I/O and never fails, which is what makes it a
// safe fallback tier when remote analysis is unavailable.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/talent-ranker/internal/types"
)

// Scoring weights. These are preserved design constants, not derived values;
// changing them changes every relative ordering downstream.
const (
	skillMatchPoints    = 10.0 // per overlapping skill
	skillAnyMatchBonus  = 10.0 // flat bonus when overlap is non-empty
	levelExactPoints    = 12.0
	levelStepPenalty    = 6.0 // subtracted per step of level distance
	levelSeniorityBonus = 2.0 // per level weight when criteria level is "all"
	queryBasePoints     = 8.0
	queryExtraHitPoints = 2.0 // per hit beyond the first
	diversityPerSkill   = 1.5
	diversityCap        = 10.0
)

// Score computes the heuristic score for one candidate against the criteria,
// along with human-readable reasons, one per rule that fired, in the order
// skills, level, query. Deterministic and free of side effects. The score is
// not clamped; callers rank by relative order.
func Score(c *types.Candidate, criteria *types.SearchCriteria) (float64, []string) {
	var total float64
	var reasons []string

	if matched := skillOverlap(c.Skills, criteria.Skills); len(matched) > 0 {
		total += skillMatchPoints*float64(len(matched)) + skillAnyMatchBonus
		reasons = append(reasons, fmt.Sprintf("Matches %d required skill(s): %s",
			len(matched), strings.Join(matched, ", ")))
	}

	if pts, reason := levelScore(c.Level, criteria.EffectiveLevel()); pts > 0 {
		total += pts
		reasons = append(reasons, reason)
	}

	if pts := queryScore(c, criteria.Query); pts > 0 {
		total += pts
		reasons = append(reasons, fmt.Sprintf("Profile matches query %q", strings.TrimSpace(criteria.Query)))
	}

	total += min(diversityPerSkill*float64(len(c.Skills)), diversityCap)

	return total, reasons
}

// skillOverlap returns the case-insensitive intersection of the two skill
// lists, lower-cased and sorted for deterministic output.
func skillOverlap(candidateSkills, wantedSkills []string) []string {
	if len(candidateSkills) == 0 || len(wantedSkills) == 0 {
		return nil
	}

	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			have[s] = true
		}
	}

	seen := make(map[string]bool)
	var matched []string
	for _, s := range wantedSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && have[s] && !seen[s] {
			seen[s] = true
			matched = append(matched, s)
		}
	}
	sort.Strings(matched)
	return matched
}

// levelScore computes the seniority proximity term. With a concrete target
// level the score decays by levelStepPenalty per step of distance; with
// "all" a small bonus favors seniority.
func levelScore(candidate, target types.Level) (float64, string) {
	if target == types.LevelAll {
		return levelSeniorityBonus * float64(candidate.Weight()), "Seniority bonus for open-level search"
	}

	delta := candidate.Weight() - target.Weight()
	if delta < 0 {
		delta = -delta
	}
	pts := levelExactPoints - levelStepPenalty*float64(delta)
	if pts <= 0 {
		return 0, ""
	}
	if delta == 0 {
		return pts, fmt.Sprintf("Seniority level matches exactly (%s)", candidate)
	}
	return pts, fmt.Sprintf("Seniority within %d step(s) of requested level", delta)
}

// queryScore does a case-insensitive substring test of the query against
// name, title, and location. 8 points for any hit plus 2 per extra hit.
func queryScore(c *types.Candidate, query string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}

	hits := 0
	for _, field := range []string{c.Name, c.Title, c.Location} {
		if strings.Contains(strings.ToLower(field), query) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return queryBasePoints + queryExtraHitPoints*float64(hits-1)
}

// ScoredCandidate pairs a candidate with its heuristic score and reasons.
type ScoredCandidate struct {
	Candidate types.Candidate `json:"candidate"`
	Score     float64         `json:"score"`
	Reasons   []string        `json:"reasons,omitempty"`
}

// RankCandidates scores every candidate and returns at most topN of them,
// sorted descending by score. The sort is stable: tied candidates keep
// their original relative order. topN <= 0 means no cap.
func RankCandidates(candidates []types.Candidate, criteria *types.SearchCriteria, topN int) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := Score(&c, criteria)
		scored = append(scored, ScoredCandidate{Candidate: c, Score: score, Reasons: reasons})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}
