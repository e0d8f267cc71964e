package ioimport

import (
	"context"
	"log/slog"
	"sort"

	"github.com/goldfish-inc/perseis-sub001/pkg/trust"
)

// confirmVessels recomputes corroboration and combined trust for every
// vessel the batch touched. The scores are derived from active
// vessel_sources rows alone, so a vessel whose sources all went
// inactive drops back to zero trust.
func (p *importer) confirmVessels(ctx context.Context, r *run) error {
	ids := make([]string, 0, len(r.touched))
	for id := range r.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return nil
	}

	groups, err := p.loadActiveScores(ctx, ids)
	if err != nil {
		return ConfirmError(err)
	}

	tx, err := p.operator.Pool().Begin(ctx)
	if err != nil {
		return ConfirmError(err)
	}
	defer tx.Rollback(ctx)

	bar := newBar("Updating trust: ", len(ids))
	var sum float64
	for _, id := range ids {
		scores := groups[id]
		combined := trust.Combined(scores)
		crossConfirmed := len(scores) > 1
		eligible := trust.Eligible(combined, p.cfg.Import.TrustThreshold)

		_, err = tx.Exec(ctx,
			`UPDATE vessels
			 SET trust = $2, corroboration = $3, cross_confirmed = $4,
			     training_eligible = $5, updated_at = NOW()
			 WHERE id = $1`,
			id, combined, len(scores), crossConfirmed, eligible,
		)
		if err != nil {
			bar.Finish()
			return ConfirmError(err)
		}

		sum += combined
		if crossConfirmed {
			r.report.Confirmed++
		}
		if eligible {
			r.report.Eligible++
		}
		bar.Add(1)
	}
	bar.Finish()

	if err = tx.Commit(ctx); err != nil {
		return ConfirmError(err)
	}

	r.report.AvgTrust = sum / float64(len(ids))
	slog.Info("Trust confirmed",
		"batch", r.batchID,
		"vessels", len(ids),
		"cross_confirmed", r.report.Confirmed,
		"training_eligible", r.report.Eligible,
		"avg_trust", r.report.AvgTrust,
	)
	return nil
}

// loadActiveScores fetches the per-source trust contributions for the
// given vessels, keyed by vessel. Vessels without active sources are
// absent from the map and score zero.
func (p *importer) loadActiveScores(
	ctx context.Context,
	ids []string,
) (map[string][]float64, error) {
	rows, err := p.operator.Pool().Query(ctx,
		`SELECT vessel_id, trust FROM vessel_sources
		 WHERE active AND vessel_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string][]float64)
	for rows.Next() {
		var id string
		var score float64
		if err = rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		res[id] = append(res[id], score)
	}
	return res, rows.Err()
}
