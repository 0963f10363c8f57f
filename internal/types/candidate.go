// Package types defines the data model shared across the candidate analysis engine.
package types

// Level is a coarse seniority bucket for a candidate or a search.
type Level string

// Seniority levels. LevelAll is only meaningful on SearchCriteria.
const (
	LevelJunior Level = "junior"
	LevelMid    Level = "mid"
	LevelSenior Level = "senior"
	LevelAll    Level = "all"
)

// Weight maps a level onto the ordinal scale used for proximity scoring.
// Unknown or empty levels weigh the same as junior.
func (l Level) Weight() int {
	switch l {
	case LevelSenior:
		return 3
	case LevelMid:
		return 2
	default:
		return 1
	}
}

// JobRecord is a single entry in a candidate's work history.
type JobRecord struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration,omitempty"`
}

// Education is a single education record.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// Candidate is the engine's immutable input. It is owned by the caller;
// the engine never mutates it.
type Candidate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Location    string      `json:"location,omitempty"`
	Level       Level       `json:"level"`
	Experience  string      `json:"experience,omitempty"`
	Skills      []string    `json:"skills"`
	CVURL       string      `json:"cv_url,omitempty"`
	WorkHistory []JobRecord `json:"work_history,omitempty"`
	Education   []Education `json:"education,omitempty"`
	Summary     string      `json:"summary,omitempty"`
}
