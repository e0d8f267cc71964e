// Package config provides configuration management for Ebisu.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Import: chunk_size, min_valid_rate, trust_threshold
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Import.SourceName, ReportDate, WithReport (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use EBISU_ prefix with underscores for nesting:
//
//	EBISU_DATABASE_HOST=localhost
//	EBISU_DATABASE_PORT=5432
//	EBISU_LOG_LEVEL=info
//	EBISU_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete Ebisu configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Import contains settings specific to the import command.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel operations.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of records per bulk insert when the
	// intelligence ledger is appended. Larger batches are faster but use
	// more memory.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ImportConfig contains settings specific to the import command.
type ImportConfig struct {
	// ChunkSize is the number of ledger rows resolved per transaction.
	// Committed chunks stay committed if a later chunk fails.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`

	// MinValidRate is the fraction of rows that must carry a usable
	// identifier before a batch is considered healthy. Falling below it
	// produces a warning in the batch lineage, not a failure.
	MinValidRate float64 `mapstructure:"min_valid_rate" yaml:"min_valid_rate"`

	// TrustThreshold is the minimal cross-source trust score a vessel
	// needs to be flagged as eligible for model training.
	TrustThreshold float64 `mapstructure:"trust_threshold" yaml:"trust_threshold"`

	// SourceName is the registry short name ('IOTC', 'ICCAT'...) the
	// imported file belongs to. Runtime-only, set per command run.
	SourceName string `mapstructure:"source_name" yaml:"source_name"`

	// ReportDate overrides the publication date of the imported file.
	// Format: YYYY-MM-DD. Runtime-only, set per command run.
	ReportDate string `mapstructure:"report_date" yaml:"report_date"`

	// WithReport writes the run report as JSON next to the input file.
	// Runtime-only, set per command run.
	WithReport bool `mapstructure:"with_report" yaml:"with_report"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "ebisu",
			SSLMode:   "disable",
			BatchSize: 10_000,
		},
		Import: ImportConfig{
			ChunkSize:      1_000,
			MinValidRate:   0.9,
			TrustThreshold: 0.8,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
