package ioimport

import (
	"testing"

	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateCounts(t *testing.T) {
	facts := []factRow{
		{fact: vessel.Fact{IMO: "9074729", Name: "ALPHA", Flag: "ESP"}},
		{fact: vessel.Fact{IMO: "9074729", Name: "BETA", Flag: "MHL"}},
		{fact: vessel.Fact{Name: "GAMMA", Flag: "PAN"}},
		{fact: vessel.Fact{Name: "GAMMA", Flag: "PAN"}},
		{fact: vessel.Fact{Name: "GAMMA", Flag: "ESP"}},
	}

	dupIMO, dupNameFlag, dupRows := duplicateCounts(facts)
	assert.Equal(t, 2, dupIMO)
	assert.Equal(t, 2, dupNameFlag,
		"a shared name only collides under the same flag")
	assert.Equal(t, 4, dupRows)
}

func TestDuplicateCountsOverlap(t *testing.T) {
	facts := []factRow{
		{fact: vessel.Fact{IMO: "9074729", Name: "ALPHA", Flag: "ESP"}},
		{fact: vessel.Fact{IMO: "9074729", Name: "ALPHA", Flag: "ESP"}},
	}

	dupIMO, dupNameFlag, dupRows := duplicateCounts(facts)
	assert.Equal(t, 2, dupIMO)
	assert.Equal(t, 2, dupNameFlag)
	assert.Equal(t, 2, dupRows,
		"a row colliding on both identifiers counts once")
}

func TestDuplicateCountsClean(t *testing.T) {
	facts := []factRow{
		{fact: vessel.Fact{IMO: "9074729"}},
		{fact: vessel.Fact{Name: "BETA", Flag: "MHL"}},
		{fact: vessel.Fact{}},
		{fact: vessel.Fact{}},
	}

	dupIMO, dupNameFlag, dupRows := duplicateCounts(facts)
	assert.Zero(t, dupIMO)
	assert.Zero(t, dupNameFlag)
	assert.Zero(t, dupRows, "empty identifiers never collide")
}

func TestNullFloat(t *testing.T) {
	assert.Nil(t, nullFloat(0))
	v := nullFloat(32.5)
	require.NotNil(t, v)
	assert.Equal(t, 32.5, *v)
}
