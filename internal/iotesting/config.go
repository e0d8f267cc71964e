// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goldfish-inc/perseis-sub001/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "ebisu_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It starts from built-in defaults, applies EBISU_DATABASE_* environment
// variables, and overrides the database name to TestDatabaseName for
// safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()
	cfg.Update(envOptions())

	// Always use test database for safety
	cfg.Database.Database = TestDatabaseName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
// This is useful when you only need database config without the full Config struct.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// envOptions reads the EBISU_DATABASE_* variables the CLI also honors.
// Tests cannot go through the cobra bootstrap, so the subset needed for
// database connections is duplicated here.
func envOptions() []config.Option {
	var opts []config.Option

	if v := os.Getenv("EBISU_DATABASE_HOST"); v != "" {
		opts = append(opts, config.OptDatabaseHost(v))
	}
	if v := os.Getenv("EBISU_DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if v := os.Getenv("EBISU_DATABASE_USER"); v != "" {
		opts = append(opts, config.OptDatabaseUser(v))
	}
	if v := os.Getenv("EBISU_DATABASE_PASSWORD"); v != "" {
		opts = append(opts, config.OptDatabasePassword(v))
	}
	if v := os.Getenv("EBISU_DATABASE_SSL_MODE"); v != "" {
		opts = append(opts, config.OptDatabaseSSLMode(v))
	}

	return opts
}

// SetupTempHomeDir creates a temporary home directory for a test so that
// config, sources and log files never touch ~/.config/ebisu/. The
// directory is cleaned up when the test finishes.
//
// Returns the absolute path to the temporary home directory.
func SetupTempHomeDir(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "ebisu-test-home-*")
	if err != nil {
		t.Fatalf("Failed to create temp home dir: %v", err)
	}

	for _, dir := range []string{
		config.ConfigDir(tempDir),
		config.LogDir(tempDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			os.RemoveAll(tempDir)
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return tempDir
}

// WriteTempSourcesYAML writes a sources.yaml file into the config
// directory under the given home directory. Must be called after
// SetupTempHomeDir().
//
// Usage:
//
//	home := iotesting.SetupTempHomeDir(t)
//	iotesting.WriteTempSourcesYAML(t, home, `
//	sources:
//	  - name: IOTC
//	    authority: 0.95
//	`)
func WriteTempSourcesYAML(t *testing.T, homeDir, content string) {
	t.Helper()

	sourcesPath := config.SourcesFilePath(homeDir)
	err := os.WriteFile(sourcesPath, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to write temp sources.yaml: %v", err)
	}
}

// WriteTempReportCSV writes a registry report file into a temporary
// directory and returns its path. Used by import pipeline tests.
func WriteTempReportCSV(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp report %s: %v", name, err)
	}

	return path
}
