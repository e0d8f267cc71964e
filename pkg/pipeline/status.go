package pipeline

import (
	"context"
	"time"
)

// SourceStatus summarizes the ingestion state of one registered source for
// the status command. Vessel counts cover the vessels the source actively
// reports; trust is averaged over those vessels' combined scores.
type SourceStatus struct {
	Source         string     `json:"source"`
	Batches        int        `json:"batches"`
	CurrentBatch   string     `json:"current_batch,omitempty"`
	ReportDate     string     `json:"report_date,omitempty"`
	LastImportAt   *time.Time `json:"last_import_at,omitempty"`
	LedgerRows     int        `json:"ledger_rows"`
	Vessels        int        `json:"vessels"`
	CrossConfirmed int        `json:"cross_confirmed"`
	AvgTrust       float64    `json:"avg_trust"`
}

// StatusReporter defines the interface for read-only ingestion summaries.
type StatusReporter interface {
	// Status returns one SourceStatus per registered source, in the order
	// sources appear in the registry file. Sources never imported get a
	// zero-count entry rather than being omitted.
	Status(ctx context.Context) ([]SourceStatus, error)
}
