package ioimport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/pkg/pipeline"
)

// printReport prints the end-of-run summary to the console.
func (p *importer) printReport(rep *pipeline.RunReport) {
	fmt.Println(strings.Repeat("─", 60))
	gn.Info("Run summary for batch <em>%s</em>", rep.BatchID)
	if rep.Reimport {
		gn.Message("<em>Re-import of a previously ingested file</em>")
	}
	gn.Message("Rows: %s in, %s ledgered, %s extracted",
		humanize.Comma(int64(rep.InputRows)),
		humanize.Comma(int64(rep.LedgerRows)),
		humanize.Comma(int64(rep.Extracted)),
	)
	gn.Message("Resolution: %s matched, %s created, %s without identifiers",
		humanize.Comma(int64(rep.Matched)),
		humanize.Comma(int64(rep.Created)),
		humanize.Comma(int64(rep.SkippedNoIdentity)),
	)
	if rep.Ambiguous > 0 {
		gn.Message("Ambiguous ties: %s, settled at a weaker tier or by creation",
			humanize.Comma(int64(rep.Ambiguous)))
	}
	gn.Message("Quality: %.1f%% valid, %s duplicate rows, %s field issues",
		rep.ValidRate*100,
		humanize.Comma(int64(rep.DuplicateRows)),
		humanize.Comma(int64(rep.FieldIssues)),
	)
	gn.Message("Changes: %d new, %d updated, %d removed, %d high-risk",
		rep.Changes.New, rep.Changes.Updated,
		rep.Changes.Removed, rep.Changes.HighRisk,
	)
	gn.Message("Trust: %.3f average, %d cross-confirmed, %d training-eligible",
		rep.AvgTrust, rep.Confirmed, rep.Eligible,
	)
}

// writeReport saves the run report as JSON next to the input file. A
// write failure is a warning, not an import failure; the batch is
// already complete by the time this runs.
func (p *importer) writeReport(path string, rep *pipeline.RunReport) {
	out := path + ".run_report.json"

	data, err := json.MarshalIndent(rep, "", "  ")
	if err == nil {
		err = os.WriteFile(out, data, 0644)
	}
	if err != nil {
		slog.Error("Cannot write run report",
			"path", out,
			"error", ReportError(out, err),
		)
		gn.Warn("Warning: cannot write run report to <em>%s</em>", out)
		return
	}

	slog.Info("Run report written", "path", out)
	gn.Message("<em>Run report written to %s</em>", out)
}
