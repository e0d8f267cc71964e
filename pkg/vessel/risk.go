package vessel

import (
	"time"
)

// HighRisk is the risk score at which a change is flagged for review.
// Identity flips (IMO, call sign, flag) reach it on their own.
const HighRisk = 0.5

// FieldRisk returns the review weight of a change to one canonical
// field. Identity fields weigh most: a hull that changes its IMO, call
// sign or flag between publications is the classic reflagging pattern.
func FieldRisk(field string) float64 {
	switch field {
	case FieldIMO, FieldIRCS, FieldFlag:
		return 0.4
	case FieldAuthStatus:
		return 0.3
	case FieldName:
		return 0.2
	}
	return 0.05
}

// RiskScore aggregates field risks for one changed record, capped at 1.
func RiskScore(fields []string) float64 {
	var sum float64
	for _, f := range fields {
		sum += FieldRisk(f)
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// ChangedFields lists the canonical fields whose values differ between
// two facts of the same vessel, in cascade field order. The order is
// fixed so persisted change records stay byte-comparable.
func ChangedFields(prev, cur Fact) []string {
	var res []string
	for _, name := range coreFields {
		if !fieldEqual(name, prev, cur) {
			res = append(res, name)
		}
	}
	return res
}

func fieldEqual(name string, a, b Fact) bool {
	switch name {
	case FieldName:
		return a.Name == b.Name
	case FieldIMO:
		return a.IMO == b.IMO
	case FieldIRCS:
		return a.IRCS == b.IRCS
	case FieldMMSI:
		return a.MMSI == b.MMSI
	case FieldFlag:
		return a.Flag == b.Flag
	case FieldGear:
		return a.Gear == b.Gear
	case FieldVesselType:
		return a.VesselType == b.VesselType
	case FieldLengthM:
		return a.LengthM == b.LengthM
	case FieldTonnage:
		return a.Tonnage == b.Tonnage
	case FieldOwner:
		return a.Owner == b.Owner
	case FieldOperator:
		return a.Operator == b.Operator
	case FieldAuthFrom:
		return timeEqual(a.AuthFrom, b.AuthFrom)
	case FieldAuthTo:
		return timeEqual(a.AuthTo, b.AuthTo)
	case FieldAuthStatus:
		return a.AuthStatus == b.AuthStatus
	}
	return true
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
