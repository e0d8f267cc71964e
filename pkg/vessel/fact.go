package vessel

import (
	"strconv"
	"strings"
	"time"
)

// Issue describes a field value dropped during extraction. The row
// itself survives; only the unusable field is absent from the fact.
type Issue struct {
	Field  string
	Value  string
	Reason string
}

// DateLayout is the only date form extraction accepts. Looser parsing
// hides source quality problems instead of surfacing them.
const DateLayout = "2006-01-02"

// FromRow builds a Fact from one raw registry row. The mapping
// translates raw column names (lowercased) to canonical field names;
// columns without a mapping land in Extras verbatim. Values that fail
// validation are dropped and reported as Issues. The now argument
// anchors authorization status defaulting.
func FromRow(row map[string]string, mapping map[string]string, now time.Time) (Fact, []Issue) {
	var fact Fact
	var issues []Issue

	for rawCol, rawVal := range row {
		val := strings.TrimSpace(rawVal)
		if val == "" {
			continue
		}
		canon, ok := mapping[strings.ToLower(strings.TrimSpace(rawCol))]
		if !ok {
			if fact.Extras == nil {
				fact.Extras = make(map[string]any)
			}
			fact.Extras[rawCol] = val
			continue
		}

		switch canon {
		case FieldName:
			fact.Name = NormalizeName(val)
		case FieldIMO:
			imo := strings.TrimSpace(val)
			if !ValidIMO(imo) {
				issues = append(issues, Issue{
					Field: FieldIMO, Value: val,
					Reason: "failed IMO check digit",
				})
				continue
			}
			fact.IMO = imo
		case FieldIRCS:
			fact.IRCS = NormalizeIRCS(val)
		case FieldMMSI:
			mmsi := strings.TrimSpace(val)
			if !ValidMMSI(mmsi) {
				issues = append(issues, Issue{
					Field: FieldMMSI, Value: val,
					Reason: "MMSI is not nine digits",
				})
				continue
			}
			fact.MMSI = mmsi
		case FieldFlag:
			fact.Flag = NormalizeFlag(val)
		case FieldGear:
			fact.Gear = collapseSpaces(val)
		case FieldVesselType:
			fact.VesselType = collapseSpaces(val)
		case FieldLengthM:
			f, err := parsePositiveFloat(val)
			if err != nil {
				issues = append(issues, Issue{
					Field: FieldLengthM, Value: val,
					Reason: "not a positive number",
				})
				continue
			}
			fact.LengthM = f
		case FieldTonnage:
			f, err := parsePositiveFloat(val)
			if err != nil {
				issues = append(issues, Issue{
					Field: FieldTonnage, Value: val,
					Reason: "not a positive number",
				})
				continue
			}
			fact.Tonnage = f
		case FieldOwner:
			fact.Owner = collapseSpaces(val)
		case FieldOperator:
			fact.Operator = collapseSpaces(val)
		case FieldAuthFrom:
			d, err := time.Parse(DateLayout, val)
			if err != nil {
				issues = append(issues, Issue{
					Field: FieldAuthFrom, Value: val,
					Reason: "not an ISO date (YYYY-MM-DD)",
				})
				continue
			}
			fact.AuthFrom = &d
		case FieldAuthTo:
			d, err := time.Parse(DateLayout, val)
			if err != nil {
				issues = append(issues, Issue{
					Field: FieldAuthTo, Value: val,
					Reason: "not an ISO date (YYYY-MM-DD)",
				})
				continue
			}
			fact.AuthTo = &d
		case FieldAuthStatus:
			fact.AuthStatus = strings.ToUpper(collapseSpaces(val))
		}
	}

	if fact.AuthStatus == "" {
		fact.AuthStatus = DeriveAuthStatus(fact.AuthTo, now)
	}
	return fact, issues
}

// DeriveAuthStatus defaults the authorization status when the source
// reports none: ACTIVE while the authorization end date is absent or
// in the future, EXPIRED once it passed.
func DeriveAuthStatus(authTo *time.Time, now time.Time) string {
	if authTo == nil {
		return StatusActive
	}
	if authTo.Before(now.Truncate(24 * time.Hour)) {
		return StatusExpired
	}
	return StatusActive
}

// parsePositiveFloat accepts plain decimals only. Exponents, signs and
// Inf/NaN spellings that ParseFloat tolerates are source garbage here.
func parsePositiveFloat(s string) (float64, error) {
	var dot bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' && !dot && i > 0 && i < len(s)-1 {
			dot = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, strconv.ErrRange
	}
	return f, nil
}
