package ioimport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goldfish-inc/perseis-sub001/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	p := &importer{}
	path := filepath.Join(t.TempDir(), "iotc_2026-05.csv")
	rep := &pipeline.RunReport{
		Source:     "IOTC",
		File:       "iotc_2026-05.csv",
		BatchID:    "2b1e7a58-0000-4000-8000-000000000000",
		ReportDate: "2026-05-01",
		InputRows:  3,
		LedgerRows: 3,
		Extracted:  3,
		Matched:    2,
		Created:    1,
		ValidRate:  1,
	}

	p.writeReport(path, rep)

	data, err := os.ReadFile(path + ".run_report.json")
	require.NoError(t, err, "the report lands next to the input file")

	var got pipeline.RunReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *rep, got)
}

func TestWriteReportUnwritablePath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	p := &importer{}
	path := filepath.Join(t.TempDir(), "no-such-dir", "report.csv")

	// A failed report write warns; it must never fail the import.
	assert.NotPanics(t, func() {
		p.writeReport(path, &pipeline.RunReport{})
	})
	_, err := os.Stat(path + ".run_report.json")
	assert.True(t, os.IsNotExist(err))
}
