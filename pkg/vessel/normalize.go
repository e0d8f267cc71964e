package vessel

import (
	"strings"
)

// NormalizeName uppercases a vessel name and collapses internal
// whitespace runs. Registry exports disagree on casing and padding for
// the same hull, so names are compared in this form everywhere.
func NormalizeName(s string) string {
	return strings.ToUpper(collapseSpaces(s))
}

// NormalizeIRCS canonicalizes an international radio call sign.
// Call signs are short alphanumerics; separators some registries insert
// ('3FW-123' vs '3FW 123') are stripped.
func NormalizeIRCS(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeFlag trims and uppercases a flag state code. Codes are kept
// as reported; reconciling national spellings to ISO 3166 is the
// cleaning stage's job, upstream of this system.
func NormalizeFlag(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
