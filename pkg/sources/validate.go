package sources

import (
	"fmt"
	"strings"

	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
)

// Validate checks the configuration for errors and applies defaults.
func (c *RegistryConfig) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources specified in configuration")
	}

	seen := make(map[string]bool)
	for i := range c.Sources {
		warnings, err := c.Sources[i].Validate()
		if err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
		name := c.Sources[i].Name
		if seen[name] {
			return fmt.Errorf("source %d: duplicate source name '%s'", i+1, name)
		}
		seen[name] = true
		c.Warnings = append(c.Warnings, warnings...)
	}

	return nil
}

// Validate checks a single registry configuration for data structure
// validity. Returns a slice of warnings (non-fatal issues) and an error
// (fatal issues). Fixable problems are repaired in place: the name is
// uppercased, column keys lowercased, a missing authority defaulted and
// mappings to unknown fields dropped.
func (d *SourceConfig) Validate() ([]ValidationWarning, error) {
	var warnings []ValidationWarning

	// Name is required
	d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	// Authority must stay a usable weight
	switch {
	case d.Authority == 0:
		d.Authority = DefaultAuthority
		warnings = append(warnings, ValidationWarning{
			SourceName: d.Name,
			Field:      "authority",
			Message:    "authority is not set",
			Suggestion: fmt.Sprintf("Set 'authority' in (0,1]; using %v", DefaultAuthority),
		})
	case d.Authority < 0 || d.Authority > 1:
		old := d.Authority
		d.Authority = DefaultAuthority
		warnings = append(warnings, ValidationWarning{
			SourceName: d.Name,
			Field:      "authority",
			Message:    fmt.Sprintf("authority %v is outside (0,1]", old),
			Suggestion: fmt.Sprintf("Set 'authority' in (0,1]; using %v", DefaultAuthority),
		})
	}

	// Field mappings are required: a source without them could never
	// yield an identifiable fact.
	if len(d.Fields) == 0 {
		return nil, fmt.Errorf("fields mapping is required")
	}

	fields := make(map[string]string, len(d.Fields))
	for rawCol, canon := range d.Fields {
		key := strings.ToLower(strings.TrimSpace(rawCol))
		canon = strings.ToLower(strings.TrimSpace(canon))
		if !vessel.KnownField(canon) {
			warnings = append(warnings, ValidationWarning{
				SourceName: d.Name,
				Field:      fmt.Sprintf("fields.%s", rawCol),
				Message:    fmt.Sprintf("'%s' is not a canonical vessel field", canon),
				Suggestion: "Remove the mapping or target a canonical field; the column will go to extras",
			})
			continue
		}
		fields[key] = canon
	}
	d.Fields = fields

	// A source that maps no identity column can register but every row
	// it ships would be skipped; say so early.
	if len(d.IdentityFields()) == 0 {
		warnings = append(warnings, ValidationWarning{
			SourceName: d.Name,
			Field:      "fields",
			Message:    "no identity fields (imo, ircs, name, flag) are mapped",
			Suggestion: "Map at least one identifier column or all rows will be skipped",
		})
	}

	return warnings, nil
}

// IdentityFields lists the canonical identity fields this source maps,
// in matching-tier order.
func (d *SourceConfig) IdentityFields() []string {
	targets := make(map[string]bool, len(d.Fields))
	for _, canon := range d.Fields {
		targets[canon] = true
	}
	var res []string
	for _, f := range []string{
		vessel.FieldIMO, vessel.FieldIRCS, vessel.FieldName, vessel.FieldFlag,
	} {
		if targets[f] {
			res = append(res, f)
		}
	}
	return res
}
