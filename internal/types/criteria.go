package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// criteriaValidator is shared; validator.Validate is safe for concurrent use.
var criteriaValidator = validator.New()

// SearchCriteria describes what a search is looking for. It is a value type:
// two criteria with the same field contents (skill order aside) are the same
// search and hash to the same cache fingerprint.
type SearchCriteria struct {
	Skills          []string `json:"skills"`
	Level           Level    `json:"level" validate:"omitempty,oneof=junior mid senior all"`
	Query           string   `json:"query,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	PreferredSkills []string `json:"preferred_skills,omitempty"`
}

// EffectiveLevel returns the level to score against, treating an unset
// level as "all".
func (c *SearchCriteria) EffectiveLevel() Level {
	if c.Level == "" {
		return LevelAll
	}
	return c.Level
}

// Validate checks that the criteria fields hold acceptable values.
func (c *SearchCriteria) Validate() error {
	if err := criteriaValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid search criteria: %w", err)
	}
	return nil
}
