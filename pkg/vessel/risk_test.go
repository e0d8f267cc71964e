package vessel_test

import (
	"testing"
	"time"

	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
)

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected float64
	}{
		{
			name:     "identity flip alone reaches review threshold",
			fields:   []string{vessel.FieldFlag},
			expected: 0.4,
		},
		{
			name:     "reflagging pattern caps at one",
			fields:   []string{vessel.FieldIMO, vessel.FieldIRCS, vessel.FieldFlag},
			expected: 1.0,
		},
		{
			name:     "cosmetic changes stay low",
			fields:   []string{vessel.FieldGear, vessel.FieldOwner},
			expected: 0.1,
		},
		{
			name:     "no changes no risk",
			fields:   nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, vessel.RiskScore(tt.fields), 1e-9)
		})
	}

	t.Run("flag change is high risk", func(t *testing.T) {
		score := vessel.RiskScore([]string{vessel.FieldFlag, vessel.FieldName})
		assert.GreaterOrEqual(t, score, vessel.HighRisk)
	})
}

func TestChangedFields(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	prev := vessel.Fact{
		Name: "GOLDEN HARVEST", IMO: "9074729", Flag: "PAN",
		Gear: "Longline", AuthTo: &d1, AuthStatus: "ACTIVE",
	}

	t.Run("identical facts produce no changes", func(t *testing.T) {
		assert.Empty(t, vessel.ChangedFields(prev, prev))
	})

	t.Run("lists changed fields in stable order", func(t *testing.T) {
		cur := prev
		cur.Flag = "VUT"
		cur.Name = "GOLDEN DAWN"
		cur.AuthTo = &d2

		got := vessel.ChangedFields(prev, cur)
		assert.Equal(
			t,
			[]string{vessel.FieldName, vessel.FieldFlag, vessel.FieldAuthTo},
			got,
		)
	})

	t.Run("nil and set dates differ", func(t *testing.T) {
		cur := prev
		cur.AuthTo = nil

		got := vessel.ChangedFields(prev, cur)
		assert.Equal(t, []string{vessel.FieldAuthTo}, got)
	})
}
