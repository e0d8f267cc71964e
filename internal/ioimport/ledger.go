package ioimport

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// appendLedger writes one intelligence_reports row per input row using
// CopyFrom, in Database.BatchSize slices. The ledger is append-only:
// rows written here are never updated or deleted, and they survive a
// later stage failing the batch.
//
// Postcondition: the ledger holds exactly one row per input row, or the
// batch fails.
func (p *importer) appendLedger(ctx context.Context, r *run) error {
	pool := p.operator.Pool()
	batchSize := p.cfg.Database.BatchSize

	columns := []string{
		"id", "batch_id", "source_id", "row_num",
		"report_date", "content_hash", "payload",
	}

	bar := newBar("Appending ledger: ", len(r.rows))
	for start := 0; start < len(r.rows); start += batchSize {
		end := min(start+batchSize, len(r.rows))

		rows := make([][]any, 0, end-start)
		for i := start; i < end; i++ {
			r.rows[i].id = uuid.New().String()
			rows = append(rows, []any{
				r.rows[i].id,
				r.batchID,
				r.sourceID,
				r.rows[i].num,
				r.reportDate,
				r.rows[i].hash,
				payloadJSON(r.rows[i].cells),
			})
		}

		_, err := pool.CopyFrom(
			ctx,
			pgx.Identifier{"intelligence_reports"},
			columns,
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return LedgerError(err)
		}
		bar.Add(end - start)
	}
	bar.Finish()

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM intelligence_reports WHERE batch_id = $1`,
		r.batchID,
	).Scan(&count)
	if err != nil {
		return LedgerError(err)
	}
	if count != len(r.rows) {
		return LedgerCountError(len(r.rows), count)
	}
	r.report.LedgerRows = count

	slog.Info("Ledger appended",
		"batch", r.batchID,
		"rows", count,
	)
	return nil
}

// payloadJSON widens the row cells for the JSONB payload column.
func payloadJSON(cells map[string]string) map[string]any {
	res := make(map[string]any, len(cells))
	for col, val := range cells {
		res[col] = val
	}
	return res
}
