package types

import "time"

// BatchRequest is one orchestrator invocation: a candidate list, one set of
// criteria, and pagination. ShowAll means "ignore limit/offset, process
// everything". It is not persisted.
type BatchRequest struct {
	Candidates []Candidate    `json:"candidates"`
	Criteria   SearchCriteria `json:"criteria"`
	Limit      int            `json:"limit,omitempty"`
	Offset     int            `json:"offset,omitempty"`
	ShowAll    bool           `json:"show_all,omitempty"`
}

// BatchStats summarizes how a batch was served. It is the caller's only
// signal that degradation occurred.
type BatchStats struct {
	BatchID   string        `json:"batch_id"`
	Total     int           `json:"total"`
	CacheHits int           `json:"cache_hits"`
	Analyzed  int           `json:"analyzed"`
	Fallbacks int           `json:"fallbacks"`
	Elapsed   time.Duration `json:"elapsed"`
}

// BatchResult is the combined, ranked, paginated output of a batch analysis.
type BatchResult struct {
	Results []AnalysisResult `json:"results"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
	Stats   BatchStats       `json:"stats"`
}
