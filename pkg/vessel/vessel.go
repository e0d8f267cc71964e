// Package vessel provides the pure domain core for vessel identity:
// structured facts extracted from registry rows, identifier validation,
// tiered matching against canonical vessels, and change risk scoring.
//
// The package has no I/O dependencies. All functions are deterministic:
// the same inputs always produce the same outputs, which keeps batch
// imports idempotent and replayable.
package vessel

import (
	"time"
)

// Canonical field names recognized by source field mappings.
const (
	FieldName       = "name"
	FieldIMO        = "imo"
	FieldIRCS       = "ircs"
	FieldMMSI       = "mmsi"
	FieldFlag       = "flag"
	FieldGear       = "gear"
	FieldVesselType = "vessel_type"
	FieldLengthM    = "length_m"
	FieldTonnage    = "tonnage"
	FieldOwner      = "owner"
	FieldOperator   = "operator"
	FieldAuthFrom   = "auth_from"
	FieldAuthTo     = "auth_to"
	FieldAuthStatus = "auth_status"
)

// coreFields is the denominator for completeness scoring.
var coreFields = []string{
	FieldName, FieldIMO, FieldIRCS, FieldMMSI, FieldFlag,
	FieldGear, FieldVesselType, FieldLengthM, FieldTonnage,
	FieldOwner, FieldOperator, FieldAuthFrom, FieldAuthTo, FieldAuthStatus,
}

// KnownField reports whether s is a canonical field name a source
// mapping may target.
func KnownField(s string) bool {
	for _, f := range coreFields {
		if f == s {
			return true
		}
	}
	return false
}

// Authorization status values derived during extraction.
const (
	StatusActive  = "ACTIVE"
	StatusExpired = "EXPIRED"
)

// Fact is one structured vessel observation extracted from a registry
// row. Empty strings, zero numbers and nil dates mean the source did
// not report the field (or reported it in an unusable form).
type Fact struct {
	Name       string
	IMO        string
	IRCS       string
	MMSI       string
	Flag       string
	Gear       string
	VesselType string
	LengthM    float64
	Tonnage    float64
	Owner      string
	Operator   string
	AuthFrom   *time.Time
	AuthTo     *time.Time
	AuthStatus string

	// Extras preserves source columns that have no canonical mapping.
	Extras map[string]any
}

// HasIdentity reports whether the fact carries at least one usable
// identifier: an IMO, a call sign, or a name+flag pair. Facts without
// identity cannot be resolved and are skipped.
func (f Fact) HasIdentity() bool {
	if f.IMO != "" || f.IRCS != "" {
		return true
	}
	return f.Name != "" && f.Flag != ""
}

// Completeness returns the fraction of canonical fields the fact
// populates, in [0,1]. It feeds per-source trust and canonical
// refinement ranking.
func (f Fact) Completeness() float64 {
	var filled int
	for _, name := range coreFields {
		if f.fieldSet(name) {
			filled++
		}
	}
	return float64(filled) / float64(len(coreFields))
}

func (f Fact) fieldSet(name string) bool {
	switch name {
	case FieldName:
		return f.Name != ""
	case FieldIMO:
		return f.IMO != ""
	case FieldIRCS:
		return f.IRCS != ""
	case FieldMMSI:
		return f.MMSI != ""
	case FieldFlag:
		return f.Flag != ""
	case FieldGear:
		return f.Gear != ""
	case FieldVesselType:
		return f.VesselType != ""
	case FieldLengthM:
		return f.LengthM > 0
	case FieldTonnage:
		return f.Tonnage > 0
	case FieldOwner:
		return f.Owner != ""
	case FieldOperator:
		return f.Operator != ""
	case FieldAuthFrom:
		return f.AuthFrom != nil
	case FieldAuthTo:
		return f.AuthTo != nil
	case FieldAuthStatus:
		return f.AuthStatus != ""
	}
	return false
}
