package pipeline

import (
	"context"
	"time"
)

// Importer defines the interface for registry report ingestion. One Import
// call processes one report file for one configured source and either
// completes a batch or fails it, never leaving a batch half-applied.
type Importer interface {
	// Import runs the full ingestion pipeline for the report file at path:
	// lineage registration, ledger append, extraction, identity
	// resolution, change detection and confirmation tracking. It returns
	// a RunReport with per-stage counts. The intelligence ledger is
	// append-only; rows written there survive even when a later stage
	// fails the batch.
	Import(ctx context.Context, path string) (*RunReport, error)
}

// ChangeCounts aggregates change detection results for one batch.
type ChangeCounts struct {
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	HighRisk  int `json:"high_risk"`
}

// RunReport carries the counts and timings of one Import run. Every row of
// the input file must be accounted for in exactly one of the resolution
// outcomes, so the pipeline can verify nothing was dropped on the floor.
type RunReport struct {
	Source     string    `json:"source"`
	File       string    `json:"file"`
	FileSHA    string    `json:"file_sha256"`
	BatchID    string    `json:"batch_id"`
	ReportDate string    `json:"report_date"`
	Reimport   bool      `json:"reimport,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationS  float64   `json:"duration_s"`

	InputRows  int `json:"input_rows"`
	LedgerRows int `json:"ledger_rows"`
	Extracted  int `json:"extracted"`

	Matched           int `json:"matched"`
	Created           int `json:"created"`
	SkippedNoIdentity int `json:"skipped_no_identity"`

	// Ambiguous counts facts whose cascade hit a tie at some tier. The
	// tie itself is a warning; the fact still terminates as matched at a
	// weaker tier or as a created vessel.
	Ambiguous int `json:"ambiguous"`

	FieldIssues   int     `json:"field_issues"`
	DuplicateRows int     `json:"duplicate_rows"`
	ValidRate     float64 `json:"valid_rate"`

	Changes   ChangeCounts `json:"changes"`
	AvgTrust  float64      `json:"avg_trust"`
	Confirmed int          `json:"cross_confirmed"`
	Eligible  int          `json:"training_eligible"`
}

// Resolved returns how many extracted facts reached a terminal resolution
// outcome. It must equal Extracted for a batch to complete.
func (r *RunReport) Resolved() int {
	return r.Matched + r.Created + r.SkippedNoIdentity
}

// Balanced reports whether the stage counts form the lossless chain
// input -> ledger -> extracted -> resolved. An unbalanced report means a
// pipeline bug and fails the batch.
func (r *RunReport) Balanced() bool {
	return r.LedgerRows == r.InputRows &&
		r.Extracted == r.LedgerRows &&
		r.Resolved() == r.Extracted
}
