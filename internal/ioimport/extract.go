package ioimport

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

type extractResult struct {
	idx    int
	fact   vessel.Fact
	issues []vessel.Issue
}

// extractFacts turns every ledger row into a structured fact and
// persists the facts as the batch's vessel_intelligence rows. Field
// coercion runs on JobsNumber workers; a value failing validation
// drops the field, never the row.
//
// Postcondition: one fact per ledger row, or the batch fails. A file
// where no row carries any usable identifier fails outright.
func (p *importer) extractFacts(ctx context.Context, r *run) error {
	r.facts = make([]factRow, len(r.rows))

	chIn := make(chan int)
	chOut := make(chan extractResult)

	g, gctx := errgroup.WithContext(ctx)
	var wg sync.WaitGroup

	for range p.cfg.JobsNumber {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return p.extractWorker(gctx, r, chIn, chOut)
		})
	}

	// Collector owns r.facts and the issue counter, so workers never
	// share mutable state.
	var issues int
	g.Go(func() error {
		for res := range chOut {
			r.facts[res.idx] = factRow{
				reportID: r.rows[res.idx].id,
				fact:     res.fact,
				issues:   len(res.issues),
			}
			issues += len(res.issues)
			for _, issue := range res.issues {
				slog.Debug("Dropped field value",
					"row", r.rows[res.idx].num,
					"field", issue.Field,
					"value", issue.Value,
					"reason", issue.Reason,
				)
			}
		}
		return nil
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	feedErr := feedRows(gctx, len(r.rows), chIn)
	if err := g.Wait(); err != nil {
		return ExtractError(err)
	}
	if feedErr != nil {
		return ExtractError(feedErr)
	}
	r.report.FieldIssues = issues

	dupIMO, dupNameFlag, dupRows := duplicateCounts(r.facts)
	r.report.DuplicateRows = dupRows
	if dupRows > 0 {
		gn.Warn("<em>Warning</em>: %d rows share an identifier with "+
			"another row in this file", dupRows)
		slog.Warn("In-file duplicate identifiers",
			"batch", r.batchID,
			"duplicate_imo", dupIMO,
			"duplicate_name_flag", dupNameFlag,
		)
	}

	var withIdentity int
	for _, fr := range r.facts {
		if fr.fact.HasIdentity() {
			withIdentity++
		}
	}
	validRate := 0.0
	if len(r.facts) > 0 {
		validRate = float64(withIdentity) / float64(len(r.facts))
	}
	r.report.ValidRate = validRate

	err := p.updateLineageMetrics(ctx, r, dupIMO, dupNameFlag, validRate)
	if err != nil {
		return ExtractError(err)
	}

	if withIdentity == 0 && len(r.facts) > 0 {
		return NoIdentifiersError(len(r.facts))
	}
	if validRate < p.cfg.Import.MinValidRate && len(r.facts) > 0 {
		gn.Warn("<em>Warning</em>: only %.0f%% of rows carry a usable "+
			"identifier (threshold %.0f%%)",
			validRate*100, p.cfg.Import.MinValidRate*100)
		slog.Warn("Valid rate below threshold",
			"batch", r.batchID,
			"valid_rate", validRate,
			"min_valid_rate", p.cfg.Import.MinValidRate,
		)
	}

	if err = p.insertFacts(ctx, r); err != nil {
		return err
	}

	var count int
	err = p.operator.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM vessel_intelligence WHERE batch_id = $1`,
		r.batchID,
	).Scan(&count)
	if err != nil {
		return ExtractError(err)
	}
	if count != len(r.rows) {
		return ExtractCountError(len(r.rows), count)
	}
	r.report.Extracted = count

	slog.Info("Facts extracted",
		"batch", r.batchID,
		"facts", count,
		"field_issues", issues,
		"valid_rate", validRate,
	)
	return nil
}

func (p *importer) extractWorker(
	ctx context.Context,
	r *run,
	chIn <-chan int,
	chOut chan<- extractResult,
) error {
	for idx := range chIn {
		// The report date anchors authorization-status defaulting, so
		// re-importing a file with the same date yields identical facts.
		fact, issues := vessel.FromRow(
			r.rows[idx].cells, r.src.Fields, r.reportDate,
		)
		select {
		case chOut <- extractResult{idx: idx, fact: fact, issues: issues}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func feedRows(ctx context.Context, total int, chIn chan<- int) error {
	defer close(chIn)
	for i := 0; i < total; i++ {
		select {
		case chIn <- i:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// insertFacts bulk-writes the batch's facts. Facts start current with
// an open validity window; completing the batch closes the
// predecessor's windows, not this one's.
func (p *importer) insertFacts(ctx context.Context, r *run) error {
	pool := p.operator.Pool()
	batchSize := p.cfg.Database.BatchSize

	columns := []string{
		"id", "report_id", "batch_id", "source_id", "vessel_id",
		"name", "imo", "ircs", "mmsi", "flag", "gear", "vessel_type",
		"length_m", "tonnage", "owner", "operator",
		"auth_from", "auth_to", "auth_status", "extras", "completeness",
		"match_tier", "match_confidence",
		"valid_from", "valid_to", "is_current",
	}

	bar := newBar("Storing facts: ", len(r.facts))
	for start := 0; start < len(r.facts); start += batchSize {
		end := min(start+batchSize, len(r.facts))

		rows := make([][]any, 0, end-start)
		for i := start; i < end; i++ {
			r.facts[i].id = uuid.New().String()
			f := r.facts[i].fact
			rows = append(rows, []any{
				r.facts[i].id, r.facts[i].reportID, r.batchID, r.sourceID,
				nil,
				f.Name, f.IMO, f.IRCS, f.MMSI, f.Flag, f.Gear, f.VesselType,
				nullFloat(f.LengthM), nullFloat(f.Tonnage),
				f.Owner, f.Operator,
				f.AuthFrom, f.AuthTo, f.AuthStatus,
				f.Extras, f.Completeness(),
				nil, nil,
				r.report.StartedAt, nil, true,
			})
		}

		_, err := pool.CopyFrom(
			ctx,
			pgx.Identifier{"vessel_intelligence"},
			columns,
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return ExtractError(err)
		}
		bar.Add(end - start)
	}
	bar.Finish()
	return nil
}

// duplicateCounts surfaces in-file identifier collisions: rows sharing
// a non-empty IMO and rows sharing a name+flag pair. dupRows is the
// number of distinct rows involved in either kind of collision.
func duplicateCounts(facts []factRow) (dupIMO, dupNameFlag, dupRows int) {
	byIMO := make(map[string][]int)
	byNameFlag := make(map[string][]int)
	for i, fr := range facts {
		if fr.fact.IMO != "" {
			byIMO[fr.fact.IMO] = append(byIMO[fr.fact.IMO], i)
		}
		if fr.fact.Name != "" && fr.fact.Flag != "" {
			key := fr.fact.Name + "\x1f" + fr.fact.Flag
			byNameFlag[key] = append(byNameFlag[key], i)
		}
	}

	involved := make(map[int]bool)
	for _, idxs := range byIMO {
		if len(idxs) > 1 {
			dupIMO += len(idxs)
			for _, i := range idxs {
				involved[i] = true
			}
		}
	}
	for _, idxs := range byNameFlag {
		if len(idxs) > 1 {
			dupNameFlag += len(idxs)
			for _, i := range idxs {
				involved[i] = true
			}
		}
	}
	return dupIMO, dupNameFlag, len(involved)
}

func nullFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
