/*
Copyright © 2025 Goldfish Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/internal/iodb"
	"github.com/goldfish-inc/perseis-sub001/internal/iostatus"
	"github.com/spf13/cobra"
)

// getStatusCmd returns the status command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-source ingestion summary",
		Long: `Status summarizes what each configured registry has contributed.

For every registry in sources.yaml it prints the number of imported
batches, the current batch and its report date, the size of the
intelligence ledger, and the vessels the source actively reports with
their cross-confirmation and trust rollups. Registries that never
imported anything are listed with zeros.

The command is read-only.

Examples:
  ebisu status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runStatus(cmd, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return statusCmd
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Create database operator
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	// Check if database has tables
	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}

	if !hasTables {
		gn.Warn(`Warning: Database appears to be empty.
	Run 'ebisu init' first to initialize the schema.`)
		return nil
	}

	statuses, err := iostatus.New(cfg, op).Status(ctx)
	if err != nil {
		return err
	}

	for _, st := range statuses {
		fmt.Println(strings.Repeat("─", 60))
		gn.Info("<em>%s</em>", st.Source)

		if st.Batches == 0 {
			gn.Message("No imports yet")
			continue
		}

		gn.Message("Batches: %s, current %s",
			humanize.Comma(int64(st.Batches)), st.CurrentBatch)
		if st.ReportDate != "" {
			gn.Message("Report date: %s", st.ReportDate)
		}
		if st.LastImportAt != nil {
			gn.Message("Last import: %s", humanize.Time(*st.LastImportAt))
		}
		gn.Message("Ledger rows: %s", humanize.Comma(int64(st.LedgerRows)))
		gn.Message("Vessels: %s, %s cross-confirmed, avg trust %.3f",
			humanize.Comma(int64(st.Vessels)),
			humanize.Comma(int64(st.CrossConfirmed)),
			st.AvgTrust)
	}

	return nil
}
