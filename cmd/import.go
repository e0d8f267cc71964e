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
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/internal/iodb"
	"github.com/goldfish-inc/perseis-sub001/internal/ioimport"
	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/errcode"
	"github.com/spf13/cobra"
)

// getImportCmd returns the import command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getImportCmd() *cobra.Command {
	var (
		sourceName string
		reportDate string
		withReport bool
	)

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import one registry report file",
		Long: `Import ingests one vessel registry report file (CSV).

This command runs the full pipeline:
  1. Registers batch lineage (fingerprint, size, predecessor)
  2. Appends every row verbatim to the intelligence ledger
  3. Extracts structured vessel facts from the raw rows
  4. Resolves each fact against canonical vessel identities
  5. Classifies changes against the source's previous batch
  6. Updates corroboration and trust scores
  7. Completes the batch and prints the run report

The source must be registered in sources.yaml. The ledger append is
never rolled back: a batch that fails later keeps its ledger rows and
the predecessor batch stays current.

The publication date of the report is taken from --report-date, or a
YYYY-MM-DD date embedded in the filename, or today.

Examples:
  ebisu import -s IOTC iotc_vessels_2026-06-01.csv
  ebisu import -s ICCAT -d 2026-05-15 iccat_active.csv
  ebisu import -s IOTC -r iotc_vessels.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runImport(cmd, args, sourceName, reportDate, withReport)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	importCmd.Flags().StringVarP(
		&sourceName, "source", "s", "",
		"registry short name from sources.yaml (required)",
	)
	importCmd.Flags().StringVarP(
		&reportDate, "report-date", "d", "",
		"publication date of the report, YYYY-MM-DD",
	)
	importCmd.Flags().BoolVarP(
		&withReport, "report", "r", false,
		"write the run report as JSON next to the input file",
	)

	return importCmd
}

func runImport(
	cmd *cobra.Command,
	args []string,
	sourceName string,
	reportDate string,
	withReport bool,
) error {
	ctx := context.Background()
	path := args[0]

	if !cmd.Flags().Changed("source") {
		gn.Warn(`<warn>A source is required for import</warn>
   <warn>Use --source with a registry short name from sources.yaml</warn>`)
		err := fmt.Errorf("missing required flag: --source")
		slog.Error("missing required flag", "flag", "source")
		return err
	}

	// Build options from explicitly set flags
	var importOpts []config.Option

	importOpts = append(
		importOpts,
		config.OptImportSourceName(sourceName),
	)

	if cmd.Flags().Changed("report-date") {
		importOpts = append(
			importOpts,
			config.OptImportReportDate(reportDate),
		)
	}

	if cmd.Flags().Changed("report") {
		importOpts = append(
			importOpts,
			config.OptImportWithReport(withReport),
		)
	}

	// Apply import-specific options to config
	cfg.Update(importOpts)

	// Create database operator
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	// Check if database has tables
	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}

	if !hasTables {
		err = &gn.Error{
			Code: errcode.DBEmptyDatabaseError,
			Msg: `<err>Database appears to be empty.</err>
   Run <em>'ebisu init'</em> first to initialize the schema.`,
			Err: errors.New("cannot import into empty database"),
		}
		return err
	}

	// Create importer
	imp := ioimport.New(cfg, op)

	if _, err := imp.Import(ctx, path); err != nil {
		return err
	}

	gn.Info(`Next steps:
	 - Run '<em>ebisu import</em>' for the other registries
	 - Run '<em>ebisu status</em>' to see per-source totals
`)

	return nil
}
