// Package schema provides database schema models for Ebisu.
// Models double as GORM AutoMigrate input and as documentation of the
// PostgreSQL DDL through db/ddl struct tags.
package schema

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// DDLGenerator defines how Go models generate PostgreSQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the PostgreSQL table name for this model.
	TableName() string
}

// Batch lifecycle states.
const (
	BatchPending  = "pending"
	BatchComplete = "complete"
	BatchFailed   = "failed"
)

// Change classifications persisted to the change log.
const (
	ChangeNew     = "NEW"
	ChangeUpdated = "UPDATED"
	ChangeRemoved = "REMOVED"
)

// Source is a registered vessel registry. Rows are written once at
// registration; authority updates flow in from sources.yaml on import.
type Source struct {
	// ID is assigned by the database at registration.
	ID int `db:"id" ddl:"SMALLINT PRIMARY KEY"`

	// Name is the registry short name ('IOTC', 'ICCAT'...).
	Name string `db:"name" ddl:"VARCHAR(50) NOT NULL"`

	// Title is the human-readable registry name.
	Title string `db:"title" ddl:"VARCHAR(255)"`

	// Authority is the trust weight of the registry, in (0,1].
	Authority float64 `db:"authority" ddl:"REAL NOT NULL"`

	// CreatedAt records when the source was first registered.
	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMPTZ NOT NULL DEFAULT NOW()"`
}

// ImportBatch is one (source, file) import run. At most one batch per
// source is current at any time; the rest form the source's history.
type ImportBatch struct {
	// ID is a UUID v4 assigned at admission.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// SourceID is the registry the file belongs to.
	SourceID int `db:"source_id" ddl:"SMALLINT NOT NULL"`

	// Fingerprint is the SHA-256 of the raw file bytes.
	Fingerprint string `db:"fingerprint" ddl:"CHAR(64) NOT NULL"`

	// SizeBytes is the raw file size.
	SizeBytes int64 `db:"size_bytes" ddl:"BIGINT NOT NULL"`

	// RawCount is the number of data rows found in the file.
	RawCount int `db:"raw_count" ddl:"INT NOT NULL"`

	// PredecessorID points at the batch this one superseded, empty for
	// the first batch of a source.
	PredecessorID sql.NullString `db:"predecessor_id" ddl:"UUID"`

	// IsCurrent marks the batch whose facts represent the source now.
	IsCurrent bool `db:"is_current" ddl:"BOOLEAN NOT NULL"`

	// Status is pending, complete or failed.
	Status string `db:"status" ddl:"VARCHAR(16) NOT NULL"`

	// CreatedAt records batch admission time.
	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMPTZ NOT NULL DEFAULT NOW()"`

	// CompletedAt is set when the pipeline finishes or fails.
	CompletedAt *time.Time `db:"completed_at" ddl:"TIMESTAMPTZ"`
}

// BatchLineage stores per-batch provenance metrics gathered before and
// during the run.
type BatchLineage struct {
	// BatchID links the metrics to their batch.
	BatchID string `db:"batch_id" ddl:"UUID PRIMARY KEY"`

	// RowCount is the number of data rows in the file.
	RowCount int `db:"row_count" ddl:"INT NOT NULL"`

	// ColumnCount is the number of header columns.
	ColumnCount int `db:"column_count" ddl:"INT NOT NULL"`

	// Completeness is the fraction of non-empty cells in the file.
	Completeness float64 `db:"completeness" ddl:"REAL NOT NULL"`

	// ReimportOf references an earlier batch with the same fingerprint.
	ReimportOf sql.NullString `db:"reimport_of" ddl:"UUID"`

	// DuplicateIMO counts in-file rows sharing an IMO with another row.
	DuplicateIMO int `db:"duplicate_imo" ddl:"INT NOT NULL DEFAULT 0"`

	// DuplicateNameFlag counts in-file rows sharing name+flag.
	DuplicateNameFlag int `db:"duplicate_name_flag" ddl:"INT NOT NULL DEFAULT 0"`

	// ValidRate is the fraction of rows carrying a usable identifier.
	ValidRate float64 `db:"valid_rate" ddl:"REAL NOT NULL DEFAULT 0"`
}

// IntelligenceReport is one raw row as shipped by the source. The
// ledger is append-only: rows are never updated or deleted, failed
// batches keep theirs.
type IntelligenceReport struct {
	// ID is a UUID v4 assigned at append time.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// BatchID is the batch the row arrived in.
	BatchID string `db:"batch_id" ddl:"UUID NOT NULL"`

	// SourceID denormalizes the batch's source for per-source queries.
	SourceID int `db:"source_id" ddl:"SMALLINT NOT NULL"`

	// RowNum is the position in ledger order, starting at 1.
	RowNum int `db:"row_num" ddl:"INT NOT NULL"`

	// ReportDate is the publication date of the source file.
	ReportDate *time.Time `db:"report_date" ddl:"DATE"`

	// ContentHash is the SHA-256 of the canonicalized row content.
	ContentHash string `db:"content_hash" ddl:"CHAR(64) NOT NULL"`

	// Payload is the raw row, column name to verbatim value.
	Payload datatypes.JSONMap `db:"payload" ddl:"JSONB NOT NULL"`
}

// VesselIntelligence is the structured fact extracted from one ledger
// row. Facts carry temporal validity: a fact stays current until the
// next completed batch of the same source supersedes it.
type VesselIntelligence struct {
	// ID is a UUID v4 assigned at extraction.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// ReportID is the ledger row the fact was extracted from.
	ReportID string `db:"report_id" ddl:"UUID NOT NULL"`

	// BatchID is the batch the fact belongs to.
	BatchID string `db:"batch_id" ddl:"UUID NOT NULL"`

	// SourceID denormalizes the batch's source.
	SourceID int `db:"source_id" ddl:"SMALLINT NOT NULL"`

	// VesselID links the fact to a canonical vessel once resolved.
	VesselID sql.NullString `db:"vessel_id" ddl:"UUID"`

	// Identity and descriptive fields, normalized. Empty means the
	// source did not report a usable value.
	Name       string  `db:"name" ddl:"VARCHAR(255)"`
	IMO        string  `db:"imo" ddl:"VARCHAR(7)"`
	IRCS       string  `db:"ircs" ddl:"VARCHAR(16)"`
	MMSI       string  `db:"mmsi" ddl:"VARCHAR(9)"`
	Flag       string  `db:"flag" ddl:"VARCHAR(8)"`
	Gear       string  `db:"gear" ddl:"VARCHAR(128)"`
	VesselType string  `db:"vessel_type" ddl:"VARCHAR(128)"`
	LengthM    float64 `db:"length_m" ddl:"REAL"`
	Tonnage    float64 `db:"tonnage" ddl:"REAL"`
	Owner      string  `db:"owner" ddl:"VARCHAR(255)"`
	Operator   string  `db:"operator" ddl:"VARCHAR(255)"`

	// Authorization window and status as reported or derived.
	AuthFrom   *time.Time `db:"auth_from" ddl:"DATE"`
	AuthTo     *time.Time `db:"auth_to" ddl:"DATE"`
	AuthStatus string     `db:"auth_status" ddl:"VARCHAR(32)"`

	// Extras preserves source columns without a canonical mapping.
	Extras datatypes.JSONMap `db:"extras" ddl:"JSONB"`

	// Completeness is the fraction of canonical fields populated.
	Completeness float64 `db:"completeness" ddl:"REAL NOT NULL"`

	// MatchTier and MatchConfidence record how the fact was linked.
	// Null until resolution, null forever for skipped facts.
	MatchTier       sql.NullInt16   `db:"match_tier" ddl:"SMALLINT"`
	MatchConfidence sql.NullFloat64 `db:"match_confidence" ddl:"REAL"`

	// ValidFrom/ValidTo bound the fact's currency window.
	ValidFrom time.Time  `db:"valid_from" ddl:"TIMESTAMPTZ NOT NULL"`
	ValidTo   *time.Time `db:"valid_to" ddl:"TIMESTAMPTZ"`

	// IsCurrent is true while the fact's batch is the source's current.
	IsCurrent bool `db:"is_current" ddl:"BOOLEAN NOT NULL"`
}

// Vessel is the canonical vessel record identities resolve into.
type Vessel struct {
	// ID is a UUID v4 assigned at creation.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// Canonical identity fields, normalized. Refined over time by the
	// highest-ranked observations.
	Name string `db:"name" ddl:"VARCHAR(255)"`
	IMO  string `db:"imo" ddl:"VARCHAR(7)"`
	IRCS string `db:"ircs" ddl:"VARCHAR(16)"`
	MMSI string `db:"mmsi" ddl:"VARCHAR(9)"`
	Flag string `db:"flag" ddl:"VARCHAR(8)"`

	// CanonicalRank is the authority×completeness of the fact that last
	// set the canonical fields. Lower-ranked facts only fill gaps.
	CanonicalRank float64 `db:"canonical_rank" ddl:"REAL NOT NULL DEFAULT 0"`

	// Trust is the cross-source combined trust score.
	Trust float64 `db:"trust" ddl:"REAL NOT NULL DEFAULT 0"`

	// Corroboration counts sources actively reporting the vessel.
	Corroboration int16 `db:"corroboration" ddl:"SMALLINT NOT NULL DEFAULT 0"`

	// CrossConfirmed is true once two or more sources corroborate.
	CrossConfirmed bool `db:"cross_confirmed" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`

	// TrainingEligible is true while Trust clears the configured
	// threshold.
	TrainingEligible bool `db:"training_eligible" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMPTZ NOT NULL DEFAULT NOW()"`
	UpdatedAt time.Time `db:"updated_at" ddl:"TIMESTAMPTZ NOT NULL DEFAULT NOW()"`
}

// VesselSource tracks one source's observation history of one vessel.
type VesselSource struct {
	// VesselID and SourceID form the logical key.
	VesselID string `db:"vessel_id" ddl:"UUID NOT NULL"`
	SourceID int    `db:"source_id" ddl:"SMALLINT NOT NULL"`

	// FirstSeen is the date the source first reported the vessel.
	// Immutable once written.
	FirstSeen time.Time `db:"first_seen" ddl:"DATE NOT NULL"`

	// LastSeen is the date of the source's latest report. Only moves
	// forward.
	LastSeen time.Time `db:"last_seen" ddl:"DATE NOT NULL"`

	// Active is true while the source's current batch includes the
	// vessel.
	Active bool `db:"active" ddl:"BOOLEAN NOT NULL"`

	// Trust is this source's contribution: authority × completeness of
	// its latest current fact.
	Trust float64 `db:"trust" ddl:"REAL NOT NULL DEFAULT 0"`

	// Notes holds free-text governance and quality remarks. Never
	// written by the pipeline, reserved for operators.
	Notes sql.NullString `db:"notes" ddl:"TEXT"`
}

// ChangeLogEntry records one classified difference between a source's
// consecutive batches.
type ChangeLogEntry struct {
	// ID is a UUID v4.
	ID string `db:"id" ddl:"UUID PRIMARY KEY"`

	// SourceID, BatchID and PrevBatchID identify the comparison.
	SourceID    int    `db:"source_id" ddl:"SMALLINT NOT NULL"`
	BatchID     string `db:"batch_id" ddl:"UUID NOT NULL"`
	PrevBatchID string `db:"prev_batch_id" ddl:"UUID NOT NULL"`

	// VesselID is the canonical vessel the change concerns.
	VesselID string `db:"vessel_id" ddl:"UUID NOT NULL"`

	// Classification is NEW, UPDATED or REMOVED.
	Classification string `db:"classification" ddl:"VARCHAR(8) NOT NULL"`

	// ChangedFields lists canonical fields that differ, for UPDATED.
	ChangedFields datatypes.JSON `db:"changed_fields" ddl:"JSONB"`

	// Risk scores the change for review priority, in [0,1].
	Risk float64 `db:"risk" ddl:"REAL NOT NULL DEFAULT 0"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMPTZ NOT NULL DEFAULT NOW()"`
}
