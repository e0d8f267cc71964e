package ioimport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/goldfish-inc/perseis-sub001/pkg/schema"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/jackc/pgx/v5"
)

// changeRecord is one classified difference between a source's
// consecutive batches.
type changeRecord struct {
	vesselID       string
	classification string
	fields         []string
	risk           float64
}

// classifyChanges diffs the vessels two consecutive batches of one
// source observed. Every vessel in either batch lands in exactly one
// class; UNCHANGED vessels are only counted, never persisted.
func classifyChanges(
	prev, cur map[string]vessel.Fact,
) ([]changeRecord, int) {
	var res []changeRecord
	var unchanged int

	for _, id := range sortedKeys(cur) {
		prevFact, ok := prev[id]
		if !ok {
			res = append(res, changeRecord{
				vesselID:       id,
				classification: schema.ChangeNew,
			})
			continue
		}
		fields := vessel.ChangedFields(prevFact, cur[id])
		if len(fields) == 0 {
			unchanged++
			continue
		}
		res = append(res, changeRecord{
			vesselID:       id,
			classification: schema.ChangeUpdated,
			fields:         fields,
			risk:           vessel.RiskScore(fields),
		})
	}

	for _, id := range sortedKeys(prev) {
		if _, ok := cur[id]; !ok {
			res = append(res, changeRecord{
				vesselID:       id,
				classification: schema.ChangeRemoved,
			})
		}
	}
	return res, unchanged
}

func sortedKeys(m map[string]vessel.Fact) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// detectChanges compares the batch against its predecessor and persists
// one change_log row per NEW, UPDATED or REMOVED vessel. First imports
// have nothing to compare and skip the stage entirely.
func (p *importer) detectChanges(ctx context.Context, r *run) error {
	if r.prevBatch == "" {
		return nil
	}

	cur := make(map[string]vessel.Fact)
	for _, fr := range r.facts {
		if fr.vesselID != "" {
			cur[fr.vesselID] = fr.fact
		}
	}

	prev, err := p.loadBatchFacts(ctx, r.prevBatch)
	if err != nil {
		return ChangeLogError(err)
	}

	records, unchanged := classifyChanges(prev, cur)

	counts := &r.report.Changes
	counts.Unchanged = unchanged
	var removed []string
	for _, rec := range records {
		switch rec.classification {
		case schema.ChangeNew:
			counts.New++
		case schema.ChangeUpdated:
			counts.Updated++
		case schema.ChangeRemoved:
			counts.Removed++
			removed = append(removed, rec.vesselID)
		}
		if rec.risk >= vessel.HighRisk {
			counts.HighRisk++
		}
	}

	tx, err := p.operator.Pool().Begin(ctx)
	if err != nil {
		return ChangeLogError(err)
	}
	defer tx.Rollback(ctx)

	if len(records) > 0 {
		now := time.Now()
		rows := make([][]any, len(records))
		for i, rec := range records {
			var fieldsJSON []byte
			if len(rec.fields) > 0 {
				fieldsJSON, err = json.Marshal(rec.fields)
				if err != nil {
					return ChangeLogError(err)
				}
			}
			rows[i] = []any{
				uuid.New().String(), r.sourceID, r.batchID, r.prevBatch,
				rec.vesselID, rec.classification, fieldsJSON, rec.risk, now,
			}
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"change_log"},
			[]string{
				"id", "source_id", "batch_id", "prev_batch_id",
				"vessel_id", "classification", "changed_fields", "risk",
				"created_at",
			},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return ChangeLogError(err)
		}
	}

	// A vessel the source stopped reporting no longer corroborates it.
	// Its history stays; only the active flag drops.
	if len(removed) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE vessel_sources SET active = FALSE
			 WHERE source_id = $1 AND vessel_id = ANY($2)`,
			r.sourceID, removed,
		)
		if err != nil {
			return ChangeLogError(err)
		}
		for _, id := range removed {
			r.touched[id] = true
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return ChangeLogError(err)
	}

	if counts.HighRisk > 0 {
		gn.Warn("<em>Warning</em>: %d high-risk changes detected",
			counts.HighRisk)
	}
	slog.Info("Changes detected",
		"batch", r.batchID,
		"prev_batch", r.prevBatch,
		"new", counts.New,
		"updated", counts.Updated,
		"removed", counts.Removed,
		"unchanged", counts.Unchanged,
		"high_risk", counts.HighRisk,
	)
	return nil
}

// loadBatchFacts reconstructs the facts a batch resolved, keyed by
// vessel. When a batch observed a vessel more than once, the last row
// in ledger order wins, mirroring how the current batch is folded.
func (p *importer) loadBatchFacts(
	ctx context.Context,
	batchID string,
) (map[string]vessel.Fact, error) {
	rows, err := p.operator.Pool().Query(ctx,
		`SELECT vi.vessel_id, vi.name, vi.imo, vi.ircs, vi.mmsi, vi.flag,
		        vi.gear, vi.vessel_type, vi.length_m, vi.tonnage,
		        vi.owner, vi.operator,
		        vi.auth_from, vi.auth_to, vi.auth_status
		 FROM vessel_intelligence vi
		 JOIN intelligence_reports ir ON ir.id = vi.report_id
		 WHERE vi.batch_id = $1 AND vi.vessel_id IS NOT NULL
		 ORDER BY ir.row_num`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]vessel.Fact)
	for rows.Next() {
		var vid string
		var f vessel.Fact
		var lengthM, tonnage *float64
		err = rows.Scan(
			&vid, &f.Name, &f.IMO, &f.IRCS, &f.MMSI, &f.Flag,
			&f.Gear, &f.VesselType, &lengthM, &tonnage,
			&f.Owner, &f.Operator,
			&f.AuthFrom, &f.AuthTo, &f.AuthStatus,
		)
		if err != nil {
			return nil, err
		}
		if lengthM != nil {
			f.LengthM = *lengthM
		}
		if tonnage != nil {
			f.Tonnage = *tonnage
		}
		res[vid] = f
	}
	return res, rows.Err()
}
