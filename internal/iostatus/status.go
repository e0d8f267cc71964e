// Package iostatus implements the pipeline.StatusReporter contract:
// read-only per-source ingestion summaries for the status command.
package iostatus

import (
	"context"
	"time"

	"github.com/goldfish-inc/perseis-sub001/internal/iosources"
	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/db"
	"github.com/goldfish-inc/perseis-sub001/pkg/pipeline"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
)

type reporter struct {
	cfg      *config.Config
	operator db.Operator
}

// New creates a StatusReporter backed by a connected database operator.
func New(cfg *config.Config, op db.Operator) pipeline.StatusReporter {
	res := reporter{
		cfg:      cfg,
		operator: op,
	}
	return &res
}

// sourceAgg collects the per-source aggregates before they are joined
// with the registry.
type sourceAgg struct {
	batches        int
	currentBatch   string
	reportDate     string
	lastImportAt   *time.Time
	ledgerRows     int
	vessels        int
	crossConfirmed int
	avgTrust       float64
}

// Status reports every registered source in registry order. Sources
// present in sources.yaml but never imported come back with zero
// counts, so operators see what is still missing, not only what ran.
func (r *reporter) Status(
	ctx context.Context,
) ([]pipeline.SourceStatus, error) {
	if r.operator.Pool() == nil {
		return nil, NotConnectedError()
	}

	registry, err := iosources.New(r.cfg).Load()
	if err != nil {
		return nil, err
	}

	aggs, err := r.loadAggregates(ctx)
	if err != nil {
		return nil, QueryError(err)
	}

	res := make([]pipeline.SourceStatus, 0, len(registry.Sources))
	for _, src := range registry.Sources {
		status := pipeline.SourceStatus{Source: src.Name}
		if agg, ok := aggs[src.Name]; ok {
			status.Batches = agg.batches
			status.CurrentBatch = agg.currentBatch
			status.ReportDate = agg.reportDate
			status.LastImportAt = agg.lastImportAt
			status.LedgerRows = agg.ledgerRows
			status.Vessels = agg.vessels
			status.CrossConfirmed = agg.crossConfirmed
			status.AvgTrust = agg.avgTrust
		}
		res = append(res, status)
	}
	return res, nil
}

func (r *reporter) loadAggregates(
	ctx context.Context,
) (map[string]*sourceAgg, error) {
	aggs := make(map[string]*sourceAgg)
	get := func(name string) *sourceAgg {
		if _, ok := aggs[name]; !ok {
			aggs[name] = &sourceAgg{}
		}
		return aggs[name]
	}
	pool := r.operator.Pool()

	rows, err := pool.Query(ctx,
		`SELECT s.name, count(*), max(b.created_at)
		 FROM import_batches b JOIN sources s ON s.id = b.source_id
		 GROUP BY s.name`,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		var batches int
		var last time.Time
		if err = rows.Scan(&name, &batches, &last); err != nil {
			rows.Close()
			return nil, err
		}
		agg := get(name)
		agg.batches = batches
		agg.lastImportAt = &last
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pool.Query(ctx,
		`SELECT s.name, b.id, ir.latest
		 FROM import_batches b
		 JOIN sources s ON s.id = b.source_id
		 LEFT JOIN LATERAL (
		   SELECT max(report_date) AS latest
		   FROM intelligence_reports WHERE batch_id = b.id
		 ) ir ON TRUE
		 WHERE b.is_current`,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name, batchID string
		var reportDate *time.Time
		if err = rows.Scan(&name, &batchID, &reportDate); err != nil {
			rows.Close()
			return nil, err
		}
		agg := get(name)
		agg.currentBatch = batchID
		if reportDate != nil {
			agg.reportDate = reportDate.Format(vessel.DateLayout)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pool.Query(ctx,
		`SELECT s.name, count(*)
		 FROM intelligence_reports ir JOIN sources s ON s.id = ir.source_id
		 GROUP BY s.name`,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		var count int
		if err = rows.Scan(&name, &count); err != nil {
			rows.Close()
			return nil, err
		}
		get(name).ledgerRows = count
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pool.Query(ctx,
		`SELECT s.name, count(*),
		        count(*) FILTER (WHERE v.cross_confirmed),
		        COALESCE(avg(v.trust), 0)
		 FROM vessel_sources vs
		 JOIN sources s ON s.id = vs.source_id
		 JOIN vessels v ON v.id = vs.vessel_id
		 WHERE vs.active
		 GROUP BY s.name`,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		var vessels, cross int
		var avgTrust float64
		err = rows.Scan(&name, &vessels, &cross, &avgTrust)
		if err != nil {
			rows.Close()
			return nil, err
		}
		agg := get(name)
		agg.vessels = vessels
		agg.crossConfirmed = cross
		agg.avgTrust = avgTrust
	}
	rows.Close()
	return aggs, rows.Err()
}
