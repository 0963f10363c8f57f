package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-ranker/internal/types"
)

var parseTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestParseResult_FullResponse(t *testing.T) {
	raw := `{
		"score": 87.5,
		"fit_prediction": 82,
		"recommendations": ["pair on the first sprint"],
		"strengths": ["deep Go experience"],
		"weaknesses": ["no Kubernetes exposure"],
		"risk_factors": ["short tenure at last role"],
		"interview_questions": ["describe a production incident you led"],
		"skills_analysis": {"matched": ["go", "postgres"], "missing": ["kubernetes"], "score": 75},
		"experience_analysis": {"years_estimate": 7, "relevance": "high", "score": 90}
	}`

	result, err := ParseResult(raw, "cand-1", parseTime)
	require.NoError(t, err)

	assert.Equal(t, "cand-1", result.CandidateID)
	assert.Equal(t, 87.5, result.Score)
	assert.Equal(t, 82.0, result.FitPrediction)
	assert.Equal(t, []string{"deep Go experience"}, result.Strengths)
	assert.Equal(t, types.ProviderAI, result.Provider)
	assert.Equal(t, parseTime, result.AnalyzedAt)

	require.NotNil(t, result.SkillsAnalysis)
	assert.Equal(t, []string{"go", "postgres"}, result.SkillsAnalysis.Matched)
	require.NotNil(t, result.ExperienceAnalysis)
	assert.Equal(t, 7.0, result.ExperienceAnalysis.YearsEstimate)
}

func TestParseResult_FencedResponse(t *testing.T) {
	raw := "```json\n{\"score\": 64}\n```"

	result, err := ParseResult(raw, "cand-2", parseTime)
	require.NoError(t, err)
	assert.Equal(t, 64.0, result.Score)
}

func TestParseResult_DefaultsAppliedForOptionalFields(t *testing.T) {
	result, err := ParseResult(`{"score": 55}`, "cand-3", parseTime)
	require.NoError(t, err)

	// Fit prediction falls back to the score; slices are empty, not nil.
	assert.Equal(t, 55.0, result.FitPrediction)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
	assert.NotNil(t, result.RiskFactors)
	require.NotNil(t, result.SkillsAnalysis)
	require.NotNil(t, result.ExperienceAnalysis)
}

func TestParseResult_ScoreClamping(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"above ceiling", `{"score": 250}`, 100},
		{"below floor", `{"score": -10}`, 0},
		{"in range untouched", `{"score": 99.9}`, 99.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(tt.raw, "cand-4", parseTime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Score)
		})
	}
}

func TestParseResult_RescuesScoreFromBrokenJSON(t *testing.T) {
	raw := `The candidate looks strong. {"score": 78, "strengths": ["unterminated`

	result, err := ParseResult(raw, "cand-5", parseTime)
	require.NoError(t, err)

	assert.Equal(t, 78.0, result.Score)
	assert.Equal(t, types.ProviderAI, result.Provider)
	require.Len(t, result.RiskFactors, 1)
	assert.Contains(t, result.RiskFactors[0], "partially unreadable")
	assert.Empty(t, result.Strengths)
}

func TestParseResult_NoScoreIsMalformed(t *testing.T) {
	_, err := ParseResult(`{"strengths": ["nothing numeric here"]}`, "cand-6", parseTime)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Raw, "nothing numeric here")
}

func TestParseResult_NonJSONIsMalformed(t *testing.T) {
	_, err := ParseResult("I cannot answer that.", "cand-7", parseTime)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
}

func TestParseResult_SubScoresClamped(t *testing.T) {
	raw := `{"score": 50, "skills_analysis": {"score": 180}, "experience_analysis": {"score": -5}}`

	result, err := ParseResult(raw, "cand-8", parseTime)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.SkillsAnalysis.Score)
	assert.Equal(t, 0.0, result.ExperienceAnalysis.Score)
}
