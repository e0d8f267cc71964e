package ioimport

import (
	"fmt"
	"sort"
	"testing"

	"github.com/goldfish-inc/perseis-sub001/pkg/schema"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyChanges(t *testing.T) {
	prev := map[string]vessel.Fact{
		"v-same":    {Name: "ALPHA", Flag: "ESP"},
		"v-flag":    {Name: "BETA", Flag: "ESP"},
		"v-heavy":   {Name: "GAMMA", IRCS: "AAAA", Flag: "ESP"},
		"v-removed": {Name: "DELTA", Flag: "PAN"},
	}
	cur := map[string]vessel.Fact{
		"v-same":  {Name: "ALPHA", Flag: "ESP"},
		"v-flag":  {Name: "BETA", Flag: "PAN"},
		"v-heavy": {Name: "OMEGA", IRCS: "BBBB", Flag: "MHL"},
		"v-new":   {Name: "EPSILON", Flag: "CHN"},
	}

	records, unchanged := classifyChanges(prev, cur)
	assert.Equal(t, 1, unchanged)
	require.Len(t, records, 4)

	byID := make(map[string]changeRecord)
	for _, rec := range records {
		byID[rec.vesselID] = rec
	}

	assert.Equal(t, schema.ChangeNew, byID["v-new"].classification)
	assert.Zero(t, byID["v-new"].risk,
		"appearing is expected registry behavior, not a risk signal")

	assert.Equal(t, schema.ChangeRemoved, byID["v-removed"].classification)
	assert.Zero(t, byID["v-removed"].risk)

	flagRec := byID["v-flag"]
	assert.Equal(t, schema.ChangeUpdated, flagRec.classification)
	assert.Equal(t, []string{vessel.FieldFlag}, flagRec.fields)
	assert.InDelta(t, 0.4, flagRec.risk, 1e-9)
	assert.Less(t, flagRec.risk, vessel.HighRisk)

	heavyRec := byID["v-heavy"]
	assert.Equal(t, schema.ChangeUpdated, heavyRec.classification)
	assert.Equal(t,
		[]string{vessel.FieldName, vessel.FieldIRCS, vessel.FieldFlag},
		heavyRec.fields)
	assert.InDelta(t, 1.0, heavyRec.risk, 1e-9, "risk is capped at 1")
	assert.GreaterOrEqual(t, heavyRec.risk, vessel.HighRisk)
}

func TestClassifyChangesFirstAppearances(t *testing.T) {
	cur := map[string]vessel.Fact{
		"v-1": {Name: "ALPHA", Flag: "ESP"},
		"v-2": {Name: "BETA", Flag: "MHL"},
	}

	records, unchanged := classifyChanges(map[string]vessel.Fact{}, cur)
	assert.Zero(t, unchanged)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, schema.ChangeNew, rec.classification)
	}
}

// Map iteration order must not leak into persisted records.
func TestClassifyChangesDeterministic(t *testing.T) {
	prev := make(map[string]vessel.Fact)
	cur := make(map[string]vessel.Fact)
	for i := 0; i < 20; i++ {
		cur[fmt.Sprintf("v-%02d", i)] = vessel.Fact{Name: "X"}
		prev[fmt.Sprintf("p-%02d", i)] = vessel.Fact{Name: "Y"}
	}

	a, _ := classifyChanges(prev, cur)
	b, _ := classifyChanges(prev, cur)
	assert.Equal(t, a, b)
	assert.True(t, sort.SliceIsSorted(a[:20], func(i, j int) bool {
		return a[i].vesselID < a[j].vesselID
	}))
}
