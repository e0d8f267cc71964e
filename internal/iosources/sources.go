// Package iosources loads the registry configuration from
// sources.yaml. This is an impure I/O package implementing
// the sources.Sources contract.
package iosources

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goldfish-inc/perseis-sub001/pkg/config"
	"github.com/goldfish-inc/perseis-sub001/pkg/sources"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

func (s *iosources) Load() (*sources.RegistryConfig, error) {
	sourcesPath := config.SourcesFilePath(s.cfg.HomeDir)
	registry, err := loadRegistryConfig(sourcesPath)
	if err != nil {
		return nil, SourcesConfigError(sourcesPath, err)
	}
	return registry, nil
}

// loadRegistryConfig reads and validates sources.yaml from disk.
// Validation repairs what it can (authority defaults, unknown field
// targets) and reports it through Warnings; structural problems like
// duplicate registry names are errors.
func loadRegistryConfig(path string) (*sources.RegistryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config file: %w", err)
	}

	var registry sources.RegistryConfig
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	if err := registry.Validate(); err != nil {
		return nil, err
	}

	// Log configuration warnings
	for _, w := range registry.Warnings {
		slog.Warn("Source configuration warning",
			"source", w.SourceName,
			"field", w.Field,
			"message", w.Message,
			"suggestion", w.Suggestion)
	}

	return &registry, nil
}
