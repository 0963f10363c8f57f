// Package cache provides the TTL-bounded, size-bounded analysis result
// cache keyed by (candidate ID, criteria fingerprint), with an optional
// persistent key/value store backing it across process restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jonathan/talent-ranker/internal/types"
)

// fingerprintCriteria is the canonical, order-independent form of
// SearchCriteria used for hashing. Skill lists are lower-cased, trimmed,
// de-duplicated, and sorted so two criteria that describe the same search
// always fingerprint identically.
type fingerprintCriteria struct {
	Skills          []string `json:"skills"`
	Level           string   `json:"level"`
	Query           string   `json:"query"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
}

// Fingerprint returns a stable hash of the criteria. Any semantic change to
// the criteria produces a different fingerprint; there is deliberately no
// partial reuse across criteria changes.
func Fingerprint(criteria *types.SearchCriteria) string {
	canonical := fingerprintCriteria{
		Skills:          canonicalSkills(criteria.Skills),
		Level:           string(criteria.EffectiveLevel()),
		Query:           strings.ToLower(strings.TrimSpace(criteria.Query)),
		RequiredSkills:  canonicalSkills(criteria.RequiredSkills),
		PreferredSkills: canonicalSkills(criteria.PreferredSkills),
	}

	// Marshal of a flat struct with string fields cannot fail.
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func canonicalSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
