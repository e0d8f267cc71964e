package vessel_test

import (
	"testing"
	"time"

	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMapping = map[string]string{
	"vessel_name": vessel.FieldName,
	"imo":         vessel.FieldIMO,
	"call_sign":   vessel.FieldIRCS,
	"mmsi":        vessel.FieldMMSI,
	"flag_code":   vessel.FieldFlag,
	"gear_type":   vessel.FieldGear,
	"vessel_type": vessel.FieldVesselType,
	"length":      vessel.FieldLengthM,
	"tonnage":     vessel.FieldTonnage,
	"owner_name":  vessel.FieldOwner,
	"operator":    vessel.FieldOperator,
	"auth_from":   vessel.FieldAuthFrom,
	"auth_to":     vessel.FieldAuthTo,
	"status":      vessel.FieldAuthStatus,
}

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestFromRow(t *testing.T) {
	t.Run("maps and normalizes known columns", func(t *testing.T) {
		row := map[string]string{
			"vessel_name": "  Golden   Harvest ",
			"imo":         "9074729",
			"call_sign":   "3fw-123",
			"mmsi":        "503123456",
			"flag_code":   "pan",
			"gear_type":   "Purse  Seine",
			"length":      "57.3",
			"tonnage":     "1234",
			"auth_from":   "2024-01-15",
			"auth_to":     "2026-01-15",
		}

		fact, issues := vessel.FromRow(row, testMapping, testNow)

		require.Empty(t, issues)
		assert.Equal(t, "GOLDEN HARVEST", fact.Name)
		assert.Equal(t, "9074729", fact.IMO)
		assert.Equal(t, "3FW123", fact.IRCS)
		assert.Equal(t, "503123456", fact.MMSI)
		assert.Equal(t, "PAN", fact.Flag)
		assert.Equal(t, "Purse Seine", fact.Gear)
		assert.InDelta(t, 57.3, fact.LengthM, 1e-9)
		assert.InDelta(t, 1234.0, fact.Tonnage, 1e-9)
		require.NotNil(t, fact.AuthFrom)
		assert.Equal(t, "2024-01-15", fact.AuthFrom.Format(vessel.DateLayout))
	})

	t.Run("keeps unmapped columns in extras", func(t *testing.T) {
		row := map[string]string{
			"vessel_name":  "KAIYO MARU",
			"flag_code":    "JPN",
			"home_port":    "Shimizu",
			"crew_size":    "24",
			"empty_column": "   ",
		}

		fact, issues := vessel.FromRow(row, testMapping, testNow)

		require.Empty(t, issues)
		require.NotNil(t, fact.Extras)
		assert.Equal(t, "Shimizu", fact.Extras["home_port"])
		assert.Equal(t, "24", fact.Extras["crew_size"])
		assert.NotContains(t, fact.Extras, "empty_column")
	})

	t.Run("drops invalid values and reports issues", func(t *testing.T) {
		row := map[string]string{
			"vessel_name": "KAIYO MARU",
			"flag_code":   "JPN",
			"imo":         "9074728",
			"mmsi":        "1234",
			"length":      "fifty",
			"tonnage":     "-12",
			"auth_to":     "15/01/2026",
		}

		fact, issues := vessel.FromRow(row, testMapping, testNow)

		assert.Equal(t, "", fact.IMO)
		assert.Equal(t, "", fact.MMSI)
		assert.Zero(t, fact.LengthM)
		assert.Zero(t, fact.Tonnage)
		assert.Nil(t, fact.AuthTo)
		assert.Len(t, issues, 5)
		// the row itself survives
		assert.Equal(t, "KAIYO MARU", fact.Name)
		assert.True(t, fact.HasIdentity())
	})

	t.Run("skips empty cells without issues", func(t *testing.T) {
		row := map[string]string{
			"vessel_name": "KAIYO MARU",
			"imo":         "",
			"length":      "  ",
		}

		fact, issues := vessel.FromRow(row, testMapping, testNow)

		assert.Empty(t, issues)
		assert.Equal(t, "", fact.IMO)
		assert.Zero(t, fact.LengthM)
	})

	t.Run("rejects exponent formatted numbers", func(t *testing.T) {
		row := map[string]string{
			"vessel_name": "KAIYO MARU",
			"tonnage":     "1e3",
		}

		fact, issues := vessel.FromRow(row, testMapping, testNow)

		assert.Zero(t, fact.Tonnage)
		assert.Len(t, issues, 1)
	})
}

func TestAuthStatusDefaulting(t *testing.T) {
	tests := []struct {
		name     string
		row      map[string]string
		expected string
	}{
		{
			name: "explicit status wins",
			row: map[string]string{
				"status":  "suspended",
				"auth_to": "2020-01-01",
			},
			expected: "SUSPENDED",
		},
		{
			name:     "no status and no window defaults to active",
			row:      map[string]string{"vessel_name": "X"},
			expected: vessel.StatusActive,
		},
		{
			name: "open window defaults to active",
			row: map[string]string{
				"auth_to": "2026-01-15",
			},
			expected: vessel.StatusActive,
		},
		{
			name: "closed window defaults to expired",
			row: map[string]string{
				"auth_to": "2024-12-31",
			},
			expected: vessel.StatusExpired,
		},
		{
			name: "window closing today is still active",
			row: map[string]string{
				"auth_to": "2025-06-01",
			},
			expected: vessel.StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fact, _ := vessel.FromRow(tt.row, testMapping, testNow)
			assert.Equal(t, tt.expected, fact.AuthStatus)
		})
	}
}

func TestHasIdentity(t *testing.T) {
	tests := []struct {
		name string
		fact vessel.Fact
		ok   bool
	}{
		{
			name: "imo alone is enough",
			fact: vessel.Fact{IMO: "9074729"},
			ok:   true,
		},
		{
			name: "call sign alone is enough",
			fact: vessel.Fact{IRCS: "3FW123"},
			ok:   true,
		},
		{
			name: "name with flag is enough",
			fact: vessel.Fact{Name: "KAIYO MARU", Flag: "JPN"},
			ok:   true,
		},
		{
			name: "name without flag is not",
			fact: vessel.Fact{Name: "KAIYO MARU"},
			ok:   false,
		},
		{
			name: "flag without name is not",
			fact: vessel.Fact{Flag: "JPN", Gear: "Longline"},
			ok:   false,
		},
		{
			name: "mmsi alone is not",
			fact: vessel.Fact{MMSI: "503123456"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.fact.HasIdentity())
		})
	}
}

func TestCompleteness(t *testing.T) {
	t.Run("empty fact scores zero", func(t *testing.T) {
		assert.Zero(t, vessel.Fact{}.Completeness())
	})

	t.Run("richer facts score higher", func(t *testing.T) {
		thin := vessel.Fact{Name: "A", Flag: "PAN", AuthStatus: "ACTIVE"}
		rich := thin
		rich.IMO = "9074729"
		rich.IRCS = "3FW123"
		rich.Gear = "Longline"
		rich.LengthM = 57.3

		assert.Greater(t, rich.Completeness(), thin.Completeness())
		assert.LessOrEqual(t, rich.Completeness(), 1.0)
	})

	t.Run("full fact scores one", func(t *testing.T) {
		d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		full := vessel.Fact{
			Name: "A", IMO: "9074729", IRCS: "3FW123", MMSI: "503123456",
			Flag: "PAN", Gear: "Longline", VesselType: "Fishing",
			LengthM: 57.3, Tonnage: 1234, Owner: "O", Operator: "P",
			AuthFrom: &d, AuthTo: &d, AuthStatus: "ACTIVE",
		}
		assert.InDelta(t, 1.0, full.Completeness(), 1e-9)
	})
}
