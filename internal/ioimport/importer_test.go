package ioimport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/internal/iodb"
	"github.com/goldfish-inc/perseis-sub001/internal/ioschema"
	"github.com/goldfish-inc/perseis-sub001/internal/iotesting"
	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/errcode"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSourcesYAML = `
sources:
  - name: IOTC
    title: Indian Ocean Tuna Commission
    authority: 0.9
    fields:
      vessel_name: name
      imo_number: imo
      call_sign: ircs
      flag_state: flag
      gear_type: gear
  - name: ICCAT
    title: International Commission for the Conservation of Atlantic Tunas
    authority: 0.95
    fields:
      vessel_name: name
      imo_number: imo
      flag_state: flag
`

func TestResolveReportDate(t *testing.T) {
	d, err := resolveReportDate("2026-03-15", "vessels.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = resolveReportDate("15/03/2026", "vessels.csv")
	assert.Error(t, err, "only ISO dates are accepted")

	d, err = resolveReportDate("", "/tmp/iotc_vessels_2026-02-01.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), d,
		"a date embedded in the filename fills in for a missing override")

	d, err = resolveReportDate("2026-03-15", "/tmp/iotc_2026-02-01.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d,
		"the explicit override beats the filename")

	today, err := resolveReportDate("", "vessels.csv")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
	assert.False(t, time.Now().UTC().Before(today),
		"the defaulted date is never in the future")
	assert.Less(t, time.Since(today), 25*time.Hour)
}

func TestPrepareUnknownSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	home := iotesting.SetupTempHomeDir(t)
	iotesting.WriteTempSourcesYAML(t, home, testSourcesYAML)

	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHomeDir(home),
		config.OptImportSourceName("wcpfc"),
	})

	p := &importer{cfg: cfg}
	_, err := p.prepare("/nonexistent.csv")
	require.Error(t, err)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.SourceUnknownError, gnErr.Code,
		"the source is rejected before the file is even opened")
}

// TestImportPipeline_Integration drives the full pipeline through three
// consecutive publications of one registry and verifies the run
// reports, the canonical records and the persisted history.
//
// Requires PostgreSQL. Skip with: go test -short
func TestImportPipeline_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.GetTestConfig()
	home := iotesting.SetupTempHomeDir(t)
	cfg.Update([]config.Option{config.OptHomeDir(home)})
	iotesting.WriteTempSourcesYAML(t, home, testSourcesYAML)

	op := iodb.NewPgxOperator()
	err := op.Connect(ctx, &cfg.Database)
	require.NoError(t, err, "Should connect to database")
	defer op.Close()

	_ = op.DropAllTables(ctx)
	sm := ioschema.NewManager(op)
	require.NoError(t, sm.Create(ctx, cfg), "Schema creation should succeed")

	pool := op.Pool()
	imp := New(cfg, op)

	// First publication: two resolvable vessels, one row repeating an
	// IMO under a drifted name, and one row without any usable
	// identifier.
	cfg.Update([]config.Option{
		config.OptImportSourceName("IOTC"),
		config.OptImportReportDate("2026-05-01"),
	})
	path := iotesting.WriteTempReportCSV(t, "iotc_2026-05.csv",
		"vessel_name,imo_number,call_sign,flag_state,gear_type\n"+
			"MELILLA UNO,9074729,EBSJ,ESP,Purse Seine\n"+
			"MELILA ONE,9074729,,ESP,Purse Seine\n"+
			"OCEAN HARVEST,,V7AB2,MHL,Longline\n"+
			",,,,Trawl\n")

	rep, err := imp.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.InputRows)
	assert.Equal(t, 4, rep.LedgerRows)
	assert.Equal(t, 4, rep.Extracted)
	assert.Equal(t, 1, rep.Matched,
		"the repeated IMO links to the vessel its first occurrence created")
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 1, rep.SkippedNoIdentity)
	assert.Equal(t, 2, rep.DuplicateRows)
	assert.True(t, rep.Balanced())
	assert.False(t, rep.Reimport)
	assert.InDelta(t, 3.0/4.0, rep.ValidRate, 1e-9)
	assert.Zero(t, rep.Changes.New,
		"the first batch has no predecessor to diff against")
	assert.Zero(t, rep.Confirmed)
	assert.Greater(t, rep.AvgTrust, 0.0)

	var vesselCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM vessels`).Scan(&vesselCount))
	assert.Equal(t, 2, vesselCount,
		"rows sharing an IMO land on one canonical vessel")

	var dupTier int16
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT match_tier FROM vessel_intelligence
		 WHERE name = 'MELILLA UNO'`).Scan(&dupTier))
	assert.Equal(t, int16(vessel.TierIMO), dupTier,
		"the duplicate matched on the IMO despite the name drift")

	var canonicalName string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT name FROM vessels WHERE imo = '9074729'`).Scan(&canonicalName))
	assert.Equal(t, "MELILLA UNO", canonicalName,
		"the more complete observation sets the canonical name")

	var dupIMO int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT l.duplicate_imo FROM batch_lineage l
		 JOIN import_batches b ON b.id = l.batch_id
		 WHERE b.is_current`).Scan(&dupIMO))
	assert.Equal(t, 2, dupIMO)

	var observations int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM vessel_sources`).Scan(&observations))
	assert.Equal(t, 2, observations,
		"re-observations fold into one row per vessel and source")

	// Second publication: MELILLA UNO reflagged, OCEAN HARVEST dropped,
	// NORTHERN STAR new.
	cfg.Update([]config.Option{config.OptImportReportDate("2026-06-01")})
	csv2 := "vessel_name,imo_number,call_sign,flag_state,gear_type\n" +
		"MELILLA UNO,9074729,EBSJ,PAN,Purse Seine\n" +
		"NORTHERN STAR,8814275,V2XQ7,ATG,Trawl\n"
	path2 := iotesting.WriteTempReportCSV(t, "iotc_2026-06.csv", csv2)

	rep2, err := imp.Import(ctx, path2)
	require.NoError(t, err)
	assert.Equal(t, 1, rep2.Matched,
		"the reflagged hull still matches on its IMO")
	assert.Equal(t, 1, rep2.Created)
	assert.True(t, rep2.Balanced())
	assert.Equal(t, 1, rep2.Changes.New)
	assert.Equal(t, 1, rep2.Changes.Updated)
	assert.Equal(t, 1, rep2.Changes.Removed)
	assert.Equal(t, 0, rep2.Changes.Unchanged)
	assert.Equal(t, 0, rep2.Changes.HighRisk,
		"a lone flag change stays below the review bar")

	var flag string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT flag FROM vessels WHERE imo = '9074729'`).Scan(&flag))
	assert.Equal(t, "PAN", flag, "the canonical record follows the reflag")

	var oceanTrust float64
	var oceanCorr int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT trust, corroboration FROM vessels
		 WHERE name = 'OCEAN HARVEST'`).Scan(&oceanTrust, &oceanCorr))
	assert.Zero(t, oceanTrust,
		"a vessel its only source dropped scores zero trust")
	assert.Zero(t, oceanCorr)

	var fieldsJSON []byte
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT changed_fields FROM change_log
		 WHERE classification = 'UPDATED'`).Scan(&fieldsJSON))
	var changedFields []string
	require.NoError(t, json.Unmarshal(fieldsJSON, &changedFields))
	assert.Equal(t, []string{vessel.FieldFlag}, changedFields)

	// Unmodified re-import of the second publication: recognized by
	// fingerprint, and the extracted facts reproduce exactly.
	cfg.Update([]config.Option{config.OptImportReportDate("2026-06-01")})
	path3 := iotesting.WriteTempReportCSV(t, "iotc_2026-06_again.csv", csv2)

	rep3, err := imp.Import(ctx, path3)
	require.NoError(t, err)
	assert.True(t, rep3.Reimport)
	assert.Equal(t, 2, rep3.Matched)
	assert.Equal(t, 0, rep3.Created)
	assert.Equal(t, 0, rep3.Changes.Updated,
		"an unmodified file must not manufacture changes")
	assert.Equal(t, 0, rep3.Changes.New)
	assert.Equal(t, 0, rep3.Changes.Removed)
	assert.Equal(t, 2, rep3.Changes.Unchanged)

	var current int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM import_batches WHERE is_current`).
		Scan(&current))
	assert.Equal(t, 1, current, "exactly one current batch per source")

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM vessels`).Scan(&vesselCount))
	assert.Equal(t, 3, vesselCount)

	var ledgerTotal int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM intelligence_reports`).Scan(&ledgerTotal))
	assert.Equal(t, 8, ledgerTotal,
		"the ledger keeps every row ever shipped, re-imports included")

	var firstSeen, lastSeen time.Time
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT vs.first_seen, vs.last_seen FROM vessel_sources vs
		 JOIN vessels v ON v.id = vs.vessel_id
		 WHERE v.imo = '9074729'`).Scan(&firstSeen, &lastSeen))
	assert.Equal(t, "2026-05-01", firstSeen.Format(vessel.DateLayout),
		"first_seen never moves after the first observation")
	assert.Equal(t, "2026-06-01", lastSeen.Format(vessel.DateLayout),
		"last_seen tracks the latest report date")
}
