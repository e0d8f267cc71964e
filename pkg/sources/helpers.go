package sources

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ByName returns the registry with the given short name. Lookup is
// case-insensitive; validated configs store names uppercased.
func (c *RegistryConfig) ByName(name string) (*SourceConfig, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i], true
		}
	}
	return nil, false
}

// Names lists registered short names in configuration order.
func (c *RegistryConfig) Names() []string {
	res := make([]string, len(c.Sources))
	for i := range c.Sources {
		res[i] = c.Sources[i].Name
	}
	return res
}

var fileDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// DateFromFilename extracts a publication date embedded in a registry
// export filename.
// Expected forms:
//   - iotc_vessels_2025-06-01.csv → 2025-06-01
//   - ICCAT-2024-12-15-active.csv → 2024-12-15
//   - wcpfc_vessels.csv           → no date
//
// The first YYYY-MM-DD group wins; an unparseable date is treated as
// absent.
func DateFromFilename(path string) (time.Time, bool) {
	base := filepath.Base(path)
	m := fileDatePattern.FindStringSubmatch(base)
	if len(m) < 2 {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
