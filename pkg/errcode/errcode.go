package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaIndexError

	// Source registry errors
	SourcesConfigError
	SourceUnknownError

	// Import errors
	ImportFileNotFoundError
	ImportFileReadError
	ImportBatchError
	ImportLedgerError
	ImportLedgerCountError
	ImportExtractError
	ImportExtractCountError
	ImportResolveError
	ImportResolveCountError
	ImportNoIdentifiersError
	ImportChangeLogError
	ImportConfirmError
	ImportReportError

	// Status errors
	StatusQueryError
)
