package types

import "time"

// Provider tags which tier produced an AnalysisResult.
type Provider string

// Provider tags. ProviderAIFallback marks a candidate whose remote analysis
// failed and was degraded to the heuristic scorer.
const (
	ProviderHeuristic  Provider = "heuristic"
	ProviderAI         Provider = "ai"
	ProviderAIFallback Provider = "ai-fallback"
)

// Tier is a coarse score bucket used for display and quick filtering.
type Tier string

// Score tiers.
const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierAverage          Tier = "average"
	TierNeedsImprovement Tier = "needs-improvement"
)

// SkillsAnalysis is the optional skill-level breakdown from the AI provider.
type SkillsAnalysis struct {
	Matched []string `json:"matched,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Score   float64  `json:"score"`
}

// ExperienceAnalysis is the optional experience breakdown from the AI provider.
type ExperienceAnalysis struct {
	YearsEstimate float64 `json:"years_estimate,omitempty"`
	Relevance     string  `json:"relevance,omitempty"`
	Score         float64 `json:"score"`
}

// AnalysisResult is the per-candidate output of an analysis pass.
// / Heuristic scores are intentionally not clamped to 100: ranking is by
// relative order, and clamping would quietly change tie behavior. AI-derived
// scores are clamped to [0,100] at the parse boundary.
type AnalysisResult struct {
	CandidateID        string              `json:"candidate_id"`
	Score              float64             `json:"score"`
	Tier               Tier                `json:"tier,omitempty"`
	Reasons            []string            `json:"reasons,omitempty"`
	Recommendations    []string            `json:"recommendations,omitempty"`
	Strengths          []string            `json:"strengths,omitempty"`
	Weaknesses         []string            `json:"weaknesses,omitempty"`
	FitPrediction      float64             `json:"fit_prediction"`
	RiskFactors        []string            `json:"risk_factors,omitempty"`
	InterviewQuestions []string            `json:"interview_questions,omitempty"`
	SkillsAnalysis     *SkillsAnalysis     `json:"skills_analysis,omitempty"`
	ExperienceAnalysis *ExperienceAnalysis `json:"experience_analysis,omitempty"`
	Provider           Provider            `json:"provider"`
	Rank               int                 `json:"rank,omitempty"`
	AnalyzedAt         time.Time           `json:"analyzed_at"`
}
