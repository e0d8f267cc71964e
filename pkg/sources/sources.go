// Package sources provides configuration and validation for vessel
// registry sources.
//
// This package defines the schema for sources.yaml, which declares the
// registries (RFMOs and national lists) the system accepts files from:
// their authority weight and how their raw CSV columns map to canonical
// vessel fields. A file can only be imported for a registered source.
package sources

// Sources loads the registry configuration.
type Sources interface {
	Load() (*RegistryConfig, error)
}

// RegistryConfig represents the complete sources.yaml configuration file.
type RegistryConfig struct {
	// Sources is the list of registries the system accepts files from.
	Sources []SourceConfig `yaml:"sources"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	SourceName string // short name of the source
	Field      string // field name that has the issue
	Message    string // description of the issue
	Suggestion string // how to fix it
}

// SourceConfig represents configuration for a single registry.
type SourceConfig struct {
	// Name is the registry short name ('IOTC', 'ICCAT'...). It is the
	// handle the import command takes and must be unique. Uppercased
	// during validation.
	Name string `yaml:"name"`

	// Title is the human-readable registry name.
	Title string `yaml:"title,omitempty"`

	// HomeURL points at the registry's public record page.
	HomeURL string `yaml:"home_url,omitempty"`

	// Authority weighs how much the registry's claims are trusted,
	// in (0,1]. Intergovernmental registries sit near 1, aggregated or
	// scraped lists lower. Feeds per-source trust scoring.
	Authority float64 `yaml:"authority"`

	// Fields maps raw CSV column names (case-insensitive) to canonical
	// vessel field names. Columns without a mapping are preserved in the
	// extras bag of every extracted fact.
	Fields map[string]string `yaml:"fields"`
}

// DefaultAuthority is assigned when a source omits its authority weight.
const DefaultAuthority = 0.5
