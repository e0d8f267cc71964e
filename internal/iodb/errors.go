package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/pkg/errcode"
)

// ConnectionError creates an error for when the PostgreSQL
// connection cannot be established.
func ConnectionError(
	host string, port int, database, user string, err error,
) error {
	msg := `Could not connect to PostgreSQL database

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Database configuration is incorrect
  - Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>
  3. Check your configuration file:
     <em>~/.config/ebisu/config.yaml</em>

<em>Connection settings:</em>
  Host: %s
  Port: %d
  Database: %s
  User: %s`

	vars := []any{
		host, port,
		host, user,
		host, port, database, user,
	}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// EmptyDatabaseError creates an error for when data operations
// run against a database with no schema.
func EmptyDatabaseError(host, database string) error {
	msg := `Database appears to be empty or not initialized

<em>Required steps before importing:</em>
  1. Create the database schema:
     <em>ebisu init</em>
  2. Then import registry reports:
     <em>ebisu import -s SOURCE FILE</em>

<em>Current database state:</em>
  Host: %s
  Database: %s
  Status: No tables found`

	vars := []any{host, database}

	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"database has no tables - run 'ebisu init' first"),
	}
}

// NotConnectedError creates an error for when an operation is
// attempted before Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted before connecting",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableExistsCheckError creates an error for when a table
// existence check fails.
func TableExistsCheckError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  "Could not check if table <em>%s</em> exists",
		Vars: []any{table},
		Err:  fmt.Errorf("failed to check table %s: %w", table, err),
	}
}

// TableCheckError creates an error for when checking the
// database for tables fails.
func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  "Could not verify database state",
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// QueryTablesError creates an error for when listing tables
// fails.
func QueryTablesError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryTablesError,
		Msg:  "Could not list database tables",
		Err:  fmt.Errorf("failed to query tables: %w", err),
	}
}

// ScanTableError creates an error for when reading a table
// name fails.
func ScanTableError(err error) error {
	return &gn.Error{
		Code: errcode.DBScanTableError,
		Msg:  "Could not read table names",
		Err:  fmt.Errorf("failed to scan table name: %w", err),
	}
}

// DropTableError creates an error for when dropping a table
// fails.
func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBDropTableError,
		Msg:  "Could not drop table <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}
