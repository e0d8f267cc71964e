package ioimport

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/pkg/errcode"
)

// NotConnectedError creates an error for when an import is attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Import attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// UnknownSourceError creates an error for a source name that is not
// registered in sources.yaml.
func UnknownSourceError(name string, known []string) error {
	msg := `Source <em>%s</em> is not registered

<em>Registered sources:</em> %s

<em>How to fix:</em>
  1. Check the spelling of the --source flag
  2. Add the registry to ~/.config/ebisu/sources.yaml
  3. List registered sources: ebisu sources`

	vars := []any{name, strings.Join(known, ", ")}

	return &gn.Error{
		Code: errcode.SourceUnknownError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown source '%s'", name),
	}
}

// FileNotFoundError creates an error for a missing report file.
func FileNotFoundError(path string, err error) error {
	msg := `Report file not found

<em>File path:</em> %s

<em>How to fix:</em>
  1. Check the path for typos
  2. Verify the file was delivered by the cleaning pipeline`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ImportFileNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("report file not found: %w", err),
	}
}

// FileReadError creates an error for a report file that cannot be read
// or parsed as CSV.
func FileReadError(path string, err error) error {
	msg := `Cannot read report file

<em>File path:</em> %s

<em>Possible causes:</em>
  - Permission denied
  - Malformed CSV (unbalanced quotes, ragged rows)
  - File is not the cleaned flat CSV the pipeline expects

<em>How to fix:</em>
  1. Check file permissions
  2. Verify the file came from the cleaning pipeline unmodified`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ImportFileReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to read report file: %w", err),
	}
}

// ReportDateError creates an error for a malformed --report-date value.
func ReportDateError(value string) error {
	msg := `Report date <em>%s</em> is not an ISO date

<em>How to fix:</em>
  1. Use the YYYY-MM-DD format, for example 2026-03-15
  2. Drop the --report-date flag to use today's date`

	vars := []any{value}

	return &gn.Error{
		Code: errcode.ImportBatchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("malformed report date '%s'", value),
	}
}

// BatchError creates an error for batch admission failures.
func BatchError(source string, err error) error {
	msg := `Failed to admit import batch for source <em>%s</em>`
	vars := []any{source}

	return &gn.Error{
		Code: errcode.ImportBatchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to admit batch: %w", err),
	}
}

// LedgerError creates an error for ledger append failures.
func LedgerError(err error) error {
	msg := "Failed to append rows to the intelligence ledger"

	return &gn.Error{
		Code: errcode.ImportLedgerError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to append ledger: %w", err),
	}
}

// LedgerCountError creates an error for the lossless-ledger check:
// the ledger must hold exactly one row per input row.
func LedgerCountError(expected, got int) error {
	msg := `Ledger row count does not match the input file

<em>Input rows:</em> %d
<em>Ledger rows:</em> %d

The batch is marked failed. Ledger rows already written are kept.`

	vars := []any{expected, got}

	return &gn.Error{
		Code: errcode.ImportLedgerCountError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("ledger count mismatch: expected %d, got %d", expected, got),
	}
}

// ExtractError creates an error for extraction failures.
func ExtractError(err error) error {
	msg := "Failed to extract structured facts from ledger rows"

	return &gn.Error{
		Code: errcode.ImportExtractError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to extract facts: %w", err),
	}
}

// ExtractCountError creates an error for fact rows lost between the
// ledger and extraction.
func ExtractCountError(expected, got int) error {
	msg := `Extracted fact count does not match the ledger

<em>Ledger rows:</em> %d
<em>Extracted facts:</em> %d

The batch is marked failed. Ledger rows already written are kept.`

	vars := []any{expected, got}

	return &gn.Error{
		Code: errcode.ImportExtractCountError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("extract count mismatch: expected %d, got %d", expected, got),
	}
}

// NoIdentifiersError creates an error for a file where no row carries a
// usable vessel identifier.
func NoIdentifiersError(rows int) error {
	msg := `No row carries a usable vessel identifier

<em>Rows checked:</em> %d

Every row lacks an IMO, a call sign and a name+flag pair, so nothing in
this file can be resolved.

<em>How to fix:</em>
  1. Check the field mappings for this source in sources.yaml
  2. Verify the file columns match the documented source schema`

	vars := []any{rows}

	return &gn.Error{
		Code: errcode.ImportNoIdentifiersError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no usable identifiers in %d rows", rows),
	}
}

// ResolveError creates an error for identity resolution failures.
func ResolveError(err error) error {
	msg := "Failed to resolve vessel identities"

	return &gn.Error{
		Code: errcode.ImportResolveError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to resolve identities: %w", err),
	}
}

// ResolveCountError creates an error for an unbalanced run: every
// extracted fact must reach exactly one terminal outcome.
func ResolveCountError(expected, got int) error {
	msg := `Resolution outcomes do not cover every extracted fact

<em>Extracted facts:</em> %d
<em>Terminal outcomes:</em> %d

The batch is marked failed. Ledger rows and committed chunks are kept.`

	vars := []any{expected, got}

	return &gn.Error{
		Code: errcode.ImportResolveCountError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("resolve count mismatch: expected %d, got %d", expected, got),
	}
}

// ChangeLogError creates an error for change detection failures.
func ChangeLogError(err error) error {
	msg := "Failed to detect changes against the previous batch"

	return &gn.Error{
		Code: errcode.ImportChangeLogError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to detect changes: %w", err),
	}
}

// ConfirmError creates an error for confirmation or trust recompute
// failures.
func ConfirmError(err error) error {
	msg := "Failed to update corroboration and trust scores"

	return &gn.Error{
		Code: errcode.ImportConfirmError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to update trust: %w", err),
	}
}

// ReportError creates an error for run report serialization failures.
func ReportError(path string, err error) error {
	msg := `Failed to write the run report

<em>Report path:</em> %s

The import itself completed; only the JSON report is missing.`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ImportReportError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to write run report: %w", err),
	}
}

// CancelledError creates an error for when an import run is cancelled.
func CancelledError(err error) error {
	msg := "Import run was cancelled"

	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("import cancelled: %w", err),
	}
}
