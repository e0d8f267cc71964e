package ioimport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/goldfish-inc/perseis-sub001/pkg/schema"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/jackc/pgx/v5"
)

func readReportFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, FileNotFoundError(path, err)
		}
		return nil, FileReadError(path, err)
	}
	return data, nil
}

// fingerprint returns the SHA-256 of the raw file bytes as lowercase
// hex. The same bytes always land in the same fingerprint, which is how
// re-imports are detected.
func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// parseReport reads the cleaned CSV the upstream pipeline delivers:
// one header row, then one record per vessel observation. Ragged rows
// are a parse error, not a recoverable row issue.
func parseReport(data []byte) ([]string, []map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		cells := make(map[string]string, len(header))
		for i, col := range header {
			cells[col] = record[i]
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

// orderLedgerRows assigns deterministic row numbers. Rows sort by the
// reported vessel name when the source maps one; ties and unmapped
// sources keep input order, so the same file always produces the same
// ledger.
func orderLedgerRows(
	header []string,
	rows []map[string]string,
	fields map[string]string,
) []rawRow {
	nameCol := nameColumn(header, fields)

	res := make([]rawRow, len(rows))
	for i, cells := range rows {
		res[i] = rawRow{cells: cells, hash: rowHash(cells)}
	}
	if nameCol != "" {
		sort.SliceStable(res, func(i, j int) bool {
			a := strings.ToUpper(strings.TrimSpace(res[i].cells[nameCol]))
			b := strings.ToUpper(strings.TrimSpace(res[j].cells[nameCol]))
			return a < b
		})
	}
	for i := range res {
		res[i].num = i + 1
	}
	return res
}

// nameColumn returns the verbatim header column the source maps to the
// canonical vessel name, or "" when no such column exists in the file.
func nameColumn(header []string, fields map[string]string) string {
	for _, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if fields[key] == vessel.FieldName {
			return col
		}
	}
	return ""
}

// rowHash hashes the canonicalized row content. encoding/json sorts map
// keys, so the digest is independent of column order.
func rowHash(cells map[string]string) string {
	data, _ := json.Marshal(cells)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fileCompleteness is the lineage quality heuristic: the fraction of
// non-empty cells in the file.
func fileCompleteness(header []string, rows []rawRow) float64 {
	if len(header) == 0 || len(rows) == 0 {
		return 0
	}
	var filled int
	for _, row := range rows {
		for _, col := range header {
			if strings.TrimSpace(row.cells[col]) != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(len(header)*len(rows))
}

// admitBatch registers the source, creates the batch and its lineage
// record, and performs the current-flag handover in one transaction.
// The old current batch is flipped off before the new one is marked
// current, so no window exists where two batches are current.
func (p *importer) admitBatch(ctx context.Context, r *run) error {
	pool := p.operator.Pool()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return BatchError(r.src.Name, err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO sources (name, title, authority, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (name) DO UPDATE
		   SET title = EXCLUDED.title, authority = EXCLUDED.authority
		 RETURNING id`,
		r.src.Name, r.src.Title, r.src.Authority,
	).Scan(&r.sourceID)
	if err != nil {
		return BatchError(r.src.Name, err)
	}

	// Re-import detection: a prior batch with the same fingerprint is a
	// warning, never a block. Append-only history records every import.
	var reimport string
	err = tx.QueryRow(ctx,
		`SELECT id FROM import_batches
		 WHERE source_id = $1 AND fingerprint = $2
		 ORDER BY created_at DESC LIMIT 1`,
		r.sourceID, r.fingerprint,
	).Scan(&reimport)
	switch {
	case err == nil:
		r.reimportOf = reimport
		r.report.Reimport = true
		slog.Warn("Re-import of a known file",
			"source", r.src.Name,
			"fingerprint", r.fingerprint,
			"earlier_batch", r.reimportOf,
		)
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return BatchError(r.src.Name, err)
	}

	var prev string
	err = tx.QueryRow(ctx,
		`SELECT id FROM import_batches
		 WHERE source_id = $1 AND is_current`,
		r.sourceID,
	).Scan(&prev)
	switch {
	case err == nil:
		r.prevBatch = prev
		_, err = tx.Exec(ctx,
			`UPDATE import_batches SET is_current = FALSE WHERE id = $1`,
			r.prevBatch,
		)
		if err != nil {
			return BatchError(r.src.Name, err)
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return BatchError(r.src.Name, err)
	}

	r.batchID = uuid.New().String()
	r.report.BatchID = r.batchID
	_, err = tx.Exec(ctx,
		`INSERT INTO import_batches
		   (id, source_id, fingerprint, size_bytes, raw_count,
		    predecessor_id, is_current, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, NOW())`,
		r.batchID, r.sourceID, r.fingerprint, r.sizeBytes, len(r.rows),
		nullable(r.prevBatch), schema.BatchPending,
	)
	if err != nil {
		return BatchError(r.src.Name, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO batch_lineage
		   (batch_id, row_count, column_count, completeness, reimport_of,
		    duplicate_imo, duplicate_name_flag, valid_rate)
		 VALUES ($1, $2, $3, $4, $5, 0, 0, 0)`,
		r.batchID, len(r.rows), len(r.header),
		fileCompleteness(r.header, r.rows), nullable(r.reimportOf),
	)
	if err != nil {
		return BatchError(r.src.Name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return BatchError(r.src.Name, err)
	}

	slog.Info("Batch admitted",
		"source", r.src.Name,
		"batch", r.batchID,
		"predecessor", r.prevBatch,
		"rows", len(r.rows),
	)
	return nil
}

// completeBatch marks the batch complete and supersedes the facts of
// the predecessor batch. The predecessor's facts keep their rows; only
// their currency window closes.
func (p *importer) completeBatch(ctx context.Context, r *run) error {
	pool := p.operator.Pool()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return BatchError(r.src.Name, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE import_batches
		 SET status = $1, completed_at = NOW()
		 WHERE id = $2`,
		schema.BatchComplete, r.batchID,
	)
	if err != nil {
		return BatchError(r.src.Name, err)
	}

	if r.prevBatch != "" {
		_, err = tx.Exec(ctx,
			`UPDATE vessel_intelligence
			 SET is_current = FALSE, valid_to = NOW()
			 WHERE batch_id = $1 AND is_current`,
			r.prevBatch,
		)
		if err != nil {
			return BatchError(r.src.Name, err)
		}
	}

	return tx.Commit(ctx)
}

// failBatch marks the batch failed and restores the predecessor as the
// source's current batch. Ledger rows and committed chunks stay: the
// append-only contract holds even on failure. Runs on a detached
// context so a cancelled run can still be repaired.
func (p *importer) failBatch(ctx context.Context, r *run) {
	if r.batchID == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	pool := p.operator.Pool()
	tx, err := pool.Begin(ctx)
	if err != nil {
		slog.Error("Failed to open fail-batch transaction",
			"batch", r.batchID, "error", err)
		return
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE import_batches
		 SET is_current = FALSE, status = $1, completed_at = NOW()
		 WHERE id = $2`,
		schema.BatchFailed, r.batchID,
	)
	if err == nil {
		_, err = tx.Exec(ctx,
			`UPDATE vessel_intelligence
			 SET is_current = FALSE, valid_to = NOW()
			 WHERE batch_id = $1 AND is_current`,
			r.batchID,
		)
	}
	if err == nil && r.prevBatch != "" {
		_, err = tx.Exec(ctx,
			`UPDATE import_batches SET is_current = TRUE WHERE id = $1`,
			r.prevBatch,
		)
	}
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		slog.Error("Failed to mark batch failed",
			"batch", r.batchID, "error", err)
		return
	}
	slog.Warn("Batch failed, predecessor restored",
		"batch", r.batchID,
		"predecessor", r.prevBatch,
	)
}

// updateLineageMetrics stores the quality metrics only known after
// extraction.
func (p *importer) updateLineageMetrics(
	ctx context.Context,
	r *run,
	dupIMO, dupNameFlag int,
	validRate float64,
) error {
	_, err := p.operator.Pool().Exec(ctx,
		`UPDATE batch_lineage
		 SET duplicate_imo = $1, duplicate_name_flag = $2, valid_rate = $3
		 WHERE batch_id = $4`,
		dupIMO, dupNameFlag, validRate, r.batchID,
	)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
