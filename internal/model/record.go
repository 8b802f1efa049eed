package model

import "time"

// Record is one row of the roster: a raw name cell plus the current value of
// each directory's URL column at read time.
type Record struct {
	Row      int               `json:"row"`
	RawName  string            `json:"raw_name"`
	Resolved map[string]string `json:"resolved,omitempty"` // directory name -> profile URL ("" when empty)
}

// Candidate is a single search hit: a profile URL and the name displayed for it.
type Candidate struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// MatchResult is the accepted best-scoring candidate for a record.
type MatchResult struct {
	URL   string  `json:"url"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// AuditOutcome classifies an already-resolved profile URL.
type AuditOutcome string

const (
	OutcomeOK              AuditOutcome = "ok"
	OutcomeFetchFailed     AuditOutcome = "fetch_failed"
	OutcomeNameUnavailable AuditOutcome = "name_unavailable"
	OutcomeLowConfidence   AuditOutcome = "low_confidence"
)

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary holds the counters reported at the end of a run.
type RunSummary struct {
	Checked int `json:"checked"`
	Found   int `json:"found"`
	Flagged int `json:"flagged"`
}

// Run is one recorded invocation of the pipeline.
type Run struct {
	ID        string      `json:"id"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
