package scoring

import (
	"testing"

	"github.com/jonathan/talent-ranker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ConcreteScenario(t *testing.T) {
	// React/Node mid candidate vs React/mid criteria:
	// skills 10*1+10=20, level 12 (exact), query 0, diversity min(1.5*2,10)=3.
	candidate := &types.Candidate{
		ID:     "c1",
		Skills: []string{"React", "Node"},
		Level:  types.LevelMid,
	}
	criteria := &types.SearchCriteria{
		Skills: []string{"React"},
		Level:  types.LevelMid,
	}

	score, reasons := Score(candidate, criteria)
	assert.InDelta(t, 35.0, score, 1e-9)
	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[0], "react")
	assert.Contains(t, reasons[1], "matches exactly")
}

func TestScore_Deterministic(t *testing.T) {
	candidate := &types.Candidate{
		ID:       "c1",
		Name:     "Jane Doe",
		Title:    "Backend Engineer",
		Location: "Berlin",
		Skills:   []string{"Go", "Postgres", "Kafka"},
		Level:    types.LevelSenior,
	}
	criteria := &types.SearchCriteria{
		Skills: []string{"go", "kafka"},
		Level:  types.LevelMid,
		Query:  "engineer",
	}

	first, firstReasons := Score(candidate, criteria)
	for i := 0; i < 10; i++ {
		score, reasons := Score(candidate, criteria)
		assert.Equal(t, first, score)
		assert.Equal(t, firstReasons, reasons)
	}
}

func TestScore_MonotonicOnAddedMatchingSkill(t *testing.T) {
	candidate := &types.Candidate{
		ID:     "c1",
		Skills: []string{"Go", "Docker", "Kubernetes"},
		Level:  types.LevelMid,
	}

	before, _ := Score(candidate, &types.SearchCriteria{
		Skills: []string{"Go"},
		Level:  types.LevelAll,
	})
	after, _ := Score(candidate, &types.SearchCriteria{
		Skills: []string{"Go", "Docker"},
		Level:  types.LevelAll,
	})

	assert.GreaterOrEqual(t, after, before)
}

func TestScore_LevelDistance(t *testing.T) {
	criteria := &types.SearchCriteria{Level: types.LevelSenior}

	tests := []struct {
		name  string
		level types.Level
		want  float64
	}{
		{"exact match", types.LevelSenior, 12},
		{"one step off", types.LevelMid, 6},
		{"two steps off", types.LevelJunior, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score(&types.Candidate{ID: "c", Level: tt.level}, criteria)
			// No skills and no query, so the level term is the whole score.
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestScore_OpenLevelFavorsSeniority(t *testing.T) {
	criteria := &types.SearchCriteria{Level: types.LevelAll}

	junior, _ := Score(&types.Candidate{ID: "j", Level: types.LevelJunior}, criteria)
	senior, _ := Score(&types.Candidate{ID: "s", Level: types.LevelSenior}, criteria)

	assert.InDelta(t, 2.0, junior, 1e-9)
	assert.InDelta(t, 6.0, senior, 1e-9)
}

func TestScore_QueryHits(t *testing.T) {
	candidate := &types.Candidate{
		ID:       "c1",
		Name:     "Go enthusiast",
		Title:    "Go developer",
		Location: "Gothenburg",
		Level:    types.LevelJunior,
	}

	// "go" hits all three fields: 8 + 2*2 = 12, plus open-level bonus 2.
	score, reasons := Score(candidate, &types.SearchCriteria{Level: types.LevelAll, Query: "go"})
	assert.InDelta(t, 14.0, score, 1e-9)
	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[1], `"go"`)
}

func TestScore_DiversityCapped(t *testing.T) {
	many := &types.Candidate{
		ID:    "c1",
		Level: types.LevelJunior,
		Skills: []string{
			"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
		},
	}

	// 10 skills would give 15 uncapped; the bonus caps at 10.
	score, _ := Score(many, &types.SearchCriteria{Level: types.LevelAll})
	assert.InDelta(t, 12.0, score, 1e-9) // 10 diversity + 2 open-level bonus
}

func TestRankCandidates_StableOnTies(t *testing.T) {
	// Identical candidates score identically; stable sort must preserve
	// their input order.
	candidates := []types.Candidate{
		{ID: "first", Skills: []string{"Go"}, Level: types.LevelMid},
		{ID: "second", Skills: []string{"Go"}, Level: types.LevelMid},
		{ID: "third", Skills: []string{"Go"}, Level: types.LevelMid},
	}
	criteria := &types.SearchCriteria{Skills: []string{"Go"}, Level: types.LevelMid}

	ranked := RankCandidates(candidates, criteria, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Candidate.ID)
	assert.Equal(t, "second", ranked[1].Candidate.ID)
	assert.Equal(t, "third", ranked[2].Candidate.ID)
}

func TestRankCandidates_TopN(t *testing.T) {
	candidates := []types.Candidate{
		{ID: "weak", Level: types.LevelJunior},
		{ID: "strong", Skills: []string{"Go", "Kafka"}, Level: types.LevelSenior},
		{ID: "middle", Skills: []string{"Go"}, Level: types.LevelMid},
	}
	criteria := &types.SearchCriteria{Skills: []string{"Go", "Kafka"}, Level: types.LevelSenior}

	ranked := RankCandidates(candidates, criteria, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "strong", ranked[0].Candidate.ID)
	assert.Equal(t, "middle", ranked[1].Candidate.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestSkillOverlap_CaseInsensitiveAndDeduplicated(t *testing.T) {
	matched := skillOverlap(
		[]string{"React", "NODE", "react"},
		[]string{"react", "Node", "node", "Rust"},
	)
	assert.Equal(t, []string{"node", "react"}, matched)
}
