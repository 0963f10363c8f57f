package analysis

import (
	"strings"

	"github.com/jonathan/talent-ranker/internal/prompts"
	"github.com/jonathan/talent-ranker/internal/types"
)

// buildAnalysisPrompt fills the analyze-candidate template with the
// candidate profile and search criteria. Empty optional fields render as
// "not specified" so the model is never shown a dangling label.
func buildAnalysisPrompt(c *types.Candidate, criteria *types.SearchCriteria) string {
	template := prompts.MustGet("analysis.json", "analyze-candidate")
	return prompts.Format(template, map[string]string{
		"Name":            orUnspecified(c.Name),
		"Title":           orUnspecified(c.Title),
		"Location":        orUnspecified(c.Location),
		"Level":           orUnspecified(string(c.Level)),
		"Skills":          orUnspecified(strings.Join(c.Skills, ", ")),
		"Experience":      orUnspecified(c.Experience),
		"Summary":         orUnspecified(c.Summary),
		"WantedSkills":    orUnspecified(strings.Join(criteria.Skills, ", ")),
		"WantedLevel":     string(criteria.EffectiveLevel()),
		"Query":           orUnspecified(criteria.Query),
		"RequiredSkills":  orUnspecified(strings.Join(criteria.RequiredSkills, ", ")),
		"PreferredSkills": orUnspecified(strings.Join(criteria.PreferredSkills, ", ")),
	})
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
