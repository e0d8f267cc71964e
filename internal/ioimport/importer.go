// Package ioimport implements the pipeline.Importer contract: the
// seven-stage ingestion pipeline that turns one registry report file
// into ledger rows, structured facts, resolved vessel identities,
// change records and refreshed trust scores.
//
// This is an impure I/O package. The pure decision logic (field
// coercion, tier matching, risk and trust math) lives in pkg/vessel and
// pkg/trust; this package owns the PostgreSQL plumbing around it.
package ioimport

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/goldfish-inc/perseis-sub001/internal/iosources"
	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/db"
	"github.com/goldfish-inc/perseis-sub001/pkg/pipeline"
	"github.com/goldfish-inc/perseis-sub001/pkg/sources"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
)

type importer struct {
	cfg      *config.Config
	operator db.Operator
}

// New creates an Importer backed by a connected database operator.
func New(cfg *config.Config, op db.Operator) pipeline.Importer {
	res := importer{
		cfg:      cfg,
		operator: op,
	}
	return &res
}

// rawRow is one input row in ledger order.
type rawRow struct {
	num   int    // 1-based position in ledger order
	id    string // intelligence_reports id, assigned at append
	hash  string // SHA-256 of the canonicalized row content
	cells map[string]string
}

// factRow is one extracted fact aligned with its ledger row, plus the
// resolution outcome filled in by the resolve stage.
type factRow struct {
	id       string // vessel_intelligence id
	reportID string
	fact     vessel.Fact
	issues   int

	vesselID   string // empty for facts without a usable identifier
	tier       vessel.Tier
	confidence float64
	created    bool
}

// run carries the state of one Import call between stages.
type run struct {
	src         sources.SourceConfig
	sourceID    int
	batchID     string
	prevBatch   string // empty on the first import for the source
	reimportOf  string // earlier batch with the same fingerprint
	reportDate  time.Time
	fingerprint string
	sizeBytes   int64
	header      []string
	rows        []rawRow
	facts       []factRow
	touched     map[string]bool // vessel IDs this batch observed or removed
	report      *pipeline.RunReport
}

// Import runs the pipeline for one report file. The ledger append is
// never rolled back; any stage failure after admission marks the batch
// failed and restores the predecessor as current.
func (p *importer) Import(
	ctx context.Context,
	path string,
) (*pipeline.RunReport, error) {
	if p.operator.Pool() == nil {
		return nil, NotConnectedError()
	}

	started := time.Now()
	slog.Info("Starting import",
		"file", path,
		"source", p.cfg.Import.SourceName,
	)

	r, err := p.prepare(path)
	if err != nil {
		return nil, err
	}
	r.report.StartedAt = started

	fmt.Println(strings.Repeat("─", 60))
	gn.Info("Importing <em>%s</em> for source <em>%s</em>",
		filepath.Base(path), r.src.Name)

	gn.Info("(1/7) Registering batch lineage")
	if err = p.admitBatch(ctx, r); err != nil {
		return nil, err
	}
	if r.reimportOf != "" {
		gn.Warn("<em>Warning</em>: this file was imported before (batch %s)",
			r.reimportOf)
	}
	gn.Message("<em>Batch %s admitted, %s rows</em>",
		r.batchID, humanize.Comma(int64(len(r.rows))))

	if err = p.cancelled(ctx, r); err != nil {
		return nil, err
	}

	gn.Info("(2/7) Appending intelligence ledger")
	if err = p.appendLedger(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}
	gn.Message("<em>Ledger holds %s rows for this batch</em>",
		humanize.Comma(int64(r.report.LedgerRows)))

	if err = p.cancelled(ctx, r); err != nil {
		return nil, err
	}

	gn.Info("(3/7) Extracting structured facts")
	if err = p.extractFacts(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}
	gn.Message("<em>Extracted %s facts, %s field issues</em>",
		humanize.Comma(int64(r.report.Extracted)),
		humanize.Comma(int64(r.report.FieldIssues)))

	if err = p.cancelled(ctx, r); err != nil {
		return nil, err
	}

	gn.Info("(4/7) Resolving vessel identities")
	if err = p.resolveIdentities(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}
	gn.Message("<em>Matched %s, created %s, skipped %s</em>",
		humanize.Comma(int64(r.report.Matched)),
		humanize.Comma(int64(r.report.Created)),
		humanize.Comma(int64(r.report.SkippedNoIdentity)))

	if err = p.cancelled(ctx, r); err != nil {
		return nil, err
	}

	gn.Info("(5/7) Detecting changes")
	if err = p.detectChanges(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}
	if r.prevBatch == "" {
		gn.Message("<em>First batch for this source, nothing to compare</em>")
	} else {
		gn.Message("<em>%d new, %d updated, %d removed, %d unchanged</em>",
			r.report.Changes.New, r.report.Changes.Updated,
			r.report.Changes.Removed, r.report.Changes.Unchanged)
	}

	if err = p.cancelled(ctx, r); err != nil {
		return nil, err
	}

	gn.Info("(6/7) Updating corroboration and trust")
	if err = p.confirmVessels(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}
	gn.Message("<em>%d cross-confirmed, %d training-eligible</em>",
		r.report.Confirmed, r.report.Eligible)

	// Every extracted fact must have reached exactly one terminal
	// outcome; a shortfall means silent row loss somewhere above.
	if !r.report.Balanced() {
		p.failBatch(ctx, r)
		return nil, ResolveCountError(r.report.Extracted, r.report.Resolved())
	}

	gn.Info("(7/7) Completing batch")
	if err = p.completeBatch(ctx, r); err != nil {
		p.failBatch(ctx, r)
		return nil, err
	}

	duration := time.Since(started)
	r.report.DurationS = duration.Seconds()

	p.printReport(r.report)
	if p.cfg.Import.WithReport {
		p.writeReport(path, r.report)
	}

	slog.Info("Import finished",
		"source", r.src.Name,
		"batch", r.batchID,
		"rows", r.report.InputRows,
		"duration", gnfmt.TimeString(duration.Seconds()),
	)
	gn.Message("<em>Import of %s finished in %s</em>",
		filepath.Base(path), gnfmt.TimeString(duration.Seconds()))

	return r.report, nil
}

// prepare validates the source, reads and orders the file, and builds
// the run state. It touches no database state, so failures here leave
// no trace to clean up.
func (p *importer) prepare(path string) (*run, error) {
	registry, err := iosources.New(p.cfg).Load()
	if err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(p.cfg.Import.SourceName))
	src, ok := registry.ByName(name)
	if !ok {
		return nil, UnknownSourceError(name, registry.Names())
	}

	reportDate, err := resolveReportDate(p.cfg.Import.ReportDate, path)
	if err != nil {
		return nil, err
	}

	data, err := readReportFile(path)
	if err != nil {
		return nil, err
	}

	header, rows, err := parseReport(data)
	if err != nil {
		return nil, FileReadError(path, err)
	}

	r := &run{
		src:         *src,
		reportDate:  reportDate,
		fingerprint: fingerprint(data),
		sizeBytes:   int64(len(data)),
		header:      header,
		rows:        orderLedgerRows(header, rows, src.Fields),
		touched:     make(map[string]bool),
	}
	r.report = &pipeline.RunReport{
		Source:     src.Name,
		File:       filepath.Base(path),
		FileSHA:    r.fingerprint,
		ReportDate: reportDate.Format(vessel.DateLayout),
		InputRows:  len(r.rows),
	}
	return r, nil
}

// cancelled checks for context cancellation between stages. A cancelled
// run fails its batch like any other fatal error.
func (p *importer) cancelled(ctx context.Context, r *run) error {
	select {
	case <-ctx.Done():
		p.failBatch(ctx, r)
		return CancelledError(ctx.Err())
	default:
		return nil
	}
}

// resolveReportDate returns the publication date for the batch: the
// --report-date override when given, then a date embedded in the
// filename, otherwise today.
func resolveReportDate(override, path string) (time.Time, error) {
	if override != "" {
		d, err := time.Parse(vessel.DateLayout, override)
		if err != nil {
			return time.Time{}, ReportDateError(override)
		}
		return d, nil
	}
	if d, ok := sources.DateFromFilename(path); ok {
		return d, nil
	}
	now := time.Now().UTC()
	return time.Date(
		now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC,
	), nil
}
