package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jonathan/talent-ranker/internal/llm"
	"github.com/jonathan/talent-ranker/internal/schemas"
	"github.com/jonathan/talent-ranker/internal/types"
)

// responseSchema is the structural contract for provider responses. Only
// the score is required; every other field is optional and defaulted during
// normalization.
const responseSchema = `{
	"type": "object",
	"required": ["score"],
	"properties": {
		"score": {"type": "number"},
		"fit_prediction": {"type": "number"},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"weaknesses": {"type": "array", "items": {"type": "string"}},
		"risk_factors": {"type": "array", "items": {"type": "string"}},
		"interview_questions": {"type": "array", "items": {"type": "string"}},
		"skills_analysis": {
			"type": "object",
			"properties": {
				"matched": {"type": "array", "items": {"type": "string"}},
				"missing": {"type": "array", "items": {"type": "string"}},
				"score": {"type": "number"}
			}
		},
		"experience_analysis": {
			"type": "object",
			"properties": {
				"years_estimate": {"type": "number"},
				"relevance": {"type": "string"},
				"score": {"type": "number"}
			}
		}
	}
}`

// scoreRescueRe finds a numeric score field in text that failed structural
// parsing, for the best-effort partial result path.
var scoreRescueRe = regexp.MustCompile(`"?score"?\s*[:=]\s*"?(\d+(?:\.\d+)?)"?`)

// rawResponse is the loosely-typed provider response shape. Pointer fields
// distinguish "absent" from zero so normalization can apply defaults.
type rawResponse struct {
	Score              *float64                  `json:"score"`
	FitPrediction      *float64                  `json:"fit_prediction"`
	Recommendations    []string                  `json:"recommendations"`
	Strengths          []string                  `json:"strengths"`
	Weaknesses         []string                  `json:"weaknesses"`
	RiskFactors        []string                  `json:"risk_factors"`
	InterviewQuestions []string                  `json:"interview_questions"`
	SkillsAnalysis     *types.SkillsAnalysis     `json:"skills_analysis"`
	ExperienceAnalysis *types.ExperienceAnalysis `json:"experience_analysis"`
}

// ParseResult turns raw provider output into a normalized AnalysisResult.
// The input is sanitized, schema-checked, decoded, and defaulted; AI scores
// are clamped to [0,100]. If structural parsing fails but a numeric score
// is findable, a best-effort partial result is returned; otherwise the
// error is a *MalformedResponseError.
func ParseResult(raw, candidateID string, analyzedAt time.Time) (*types.AnalysisResult, error) {
	cleaned := llm.SanitizeJSON(raw)

	if err := schemas.ValidateString(responseSchema, cleaned); err != nil {
		return rescueResult(raw, cleaned, candidateID, analyzedAt, err)
	}

	var resp rawResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return rescueResult(raw, cleaned, candidateID, analyzedAt, err)
	}
	if resp.Score == nil {
		return rescueResult(raw, cleaned, candidateID, analyzedAt, fmt.Errorf("response has no score"))
	}

	return normalize(&resp, candidateID, analyzedAt), nil
}

// normalize applies defensive defaults so no optional field reaches the
// caller unset.
func normalize(resp *rawResponse, candidateID string, analyzedAt time.Time) *types.AnalysisResult {
	score := clampScore(*resp.Score)

	fit := score
	if resp.FitPrediction != nil {
		fit = clampScore(*resp.FitPrediction)
	}

	skills := resp.SkillsAnalysis
	if skills == nil {
		skills = &types.SkillsAnalysis{}
	}
	skills.Score = clampScore(skills.Score)

	experience := resp.ExperienceAnalysis
	if experience == nil {
		experience = &types.ExperienceAnalysis{}
	}
	experience.Score = clampScore(experience.Score)

	return &types.AnalysisResult{
		CandidateID:        candidateID,
		Score:              score,
		Recommendations:    nonNil(resp.Recommendations),
		Strengths:          nonNil(resp.Strengths),
		Weaknesses:         nonNil(resp.Weaknesses),
		FitPrediction:      fit,
		RiskFactors:        nonNil(resp.RiskFactors),
		InterviewQuestions: nonNil(resp.InterviewQuestions),
		SkillsAnalysis:     skills,
		ExperienceAnalysis: experience,
		Provider:           types.ProviderAI,
		AnalyzedAt:         analyzedAt,
	}
}

// rescueResult regex-extracts a numeric score from otherwise unparseable
// output. Anything beyond the score is lost, which the result notes as a
// risk factor.
func rescueResult(raw, cleaned, candidateID string, analyzedAt time.Time, cause error) (*types.AnalysisResult, error) {
	m := scoreRescueRe.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, &MalformedResponseError{Raw: raw, Err: cause}
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: cause}
	}

	return &types.AnalysisResult{
		CandidateID:        candidateID,
		Score:              clampScore(score),
		Recommendations:    []string{},
		Strengths:          []string{},
		Weaknesses:         []string{},
		FitPrediction:      clampScore(score),
		RiskFactors:        []string{"AI response was partially unreadable; only the score could be recovered"},
		InterviewQuestions: []string{},
		SkillsAnalysis:     &types.SkillsAnalysis{},
		ExperienceAnalysis: &types.ExperienceAnalysis{},
		Provider:           types.ProviderAI,
		AnalyzedAt:         analyzedAt,
	}, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
