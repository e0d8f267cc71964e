package sources_test

import (
	"testing"

	"github.com/goldfish-inc/perseis-sub001/pkg/sources"
	"github.com/goldfish-inc/perseis-sub001/pkg/vessel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSource() sources.SourceConfig {
	return sources.SourceConfig{
		Name:      "iotc",
		Title:     "Indian Ocean Tuna Commission",
		Authority: 0.95,
		Fields: map[string]string{
			"Vessel_Name": "name",
			"IMO":         "imo",
			"IRCS":        "ircs",
			"Flag":        "flag",
		},
	}
}

func TestSourceValidate(t *testing.T) {
	t.Run("uppercases name and lowercases columns", func(t *testing.T) {
		src := validSource()
		warnings, err := src.Validate()

		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "IOTC", src.Name)
		assert.Equal(t, "name", src.Fields["vessel_name"])
		assert.Equal(t, "imo", src.Fields["imo"])
	})

	t.Run("requires a name", func(t *testing.T) {
		src := validSource()
		src.Name = "  "
		_, err := src.Validate()
		assert.Error(t, err)
	})

	t.Run("requires field mappings", func(t *testing.T) {
		src := validSource()
		src.Fields = nil
		_, err := src.Validate()
		assert.Error(t, err)
	})

	t.Run("defaults missing authority with warning", func(t *testing.T) {
		src := validSource()
		src.Authority = 0
		warnings, err := src.Validate()

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "authority", warnings[0].Field)
		assert.InDelta(t, sources.DefaultAuthority, src.Authority, 1e-9)
	})

	t.Run("repairs out of range authority with warning", func(t *testing.T) {
		src := validSource()
		src.Authority = 1.8
		warnings, err := src.Validate()

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.InDelta(t, sources.DefaultAuthority, src.Authority, 1e-9)
	})

	t.Run("drops mappings to unknown fields with warning", func(t *testing.T) {
		src := validSource()
		src.Fields["Skipper"] = "captain_name"
		warnings, err := src.Validate()

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Message, "captain_name")
		assert.NotContains(t, src.Fields, "skipper")
	})

	t.Run("warns when no identity column is mapped", func(t *testing.T) {
		src := validSource()
		src.Fields = map[string]string{"Gear": "gear"}
		warnings, err := src.Validate()

		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "fields", warnings[0].Field)
	})
}

func TestRegistryValidate(t *testing.T) {
	t.Run("accepts distinct sources", func(t *testing.T) {
		cfg := sources.RegistryConfig{
			Sources: []sources.SourceConfig{validSource(), {
				Name:      "ICCAT",
				Authority: 0.95,
				Fields:    map[string]string{"VesselName": "name", "FlagCode": "flag"},
			}},
		}
		require.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.Warnings)
	})

	t.Run("rejects empty registry", func(t *testing.T) {
		cfg := sources.RegistryConfig{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects duplicate names after normalization", func(t *testing.T) {
		a := validSource()
		b := validSource()
		b.Name = "IOTC "
		cfg := sources.RegistryConfig{Sources: []sources.SourceConfig{a, b}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("collects warnings across sources", func(t *testing.T) {
		a := validSource()
		a.Authority = 0
		b := validSource()
		b.Name = "ICCAT"
		b.Fields = map[string]string{"Gear": "gear"}
		cfg := sources.RegistryConfig{Sources: []sources.SourceConfig{a, b}}

		require.NoError(t, cfg.Validate())
		assert.Len(t, cfg.Warnings, 2)
	})
}

func TestIdentityFields(t *testing.T) {
	src := validSource()
	_, err := src.Validate()
	require.NoError(t, err)

	assert.Equal(
		t,
		[]string{vessel.FieldIMO, vessel.FieldIRCS, vessel.FieldName, vessel.FieldFlag},
		src.IdentityFields(),
	)
}

func TestByName(t *testing.T) {
	cfg := sources.RegistryConfig{
		Sources: []sources.SourceConfig{validSource()},
	}
	require.NoError(t, cfg.Validate())

	t.Run("finds source case-insensitively", func(t *testing.T) {
		src, ok := cfg.ByName("iotc")
		require.True(t, ok)
		assert.Equal(t, "IOTC", src.Name)
	})

	t.Run("reports unknown source", func(t *testing.T) {
		_, ok := cfg.ByName("NAFO")
		assert.False(t, ok)
	})
}

func TestDateFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
		ok       bool
	}{
		{
			name:     "underscore separated",
			path:     "/data/iotc_vessels_2025-06-01.csv",
			expected: "2025-06-01",
			ok:       true,
		},
		{
			name:     "dash separated",
			path:     "ICCAT-2024-12-15-active.csv",
			expected: "2024-12-15",
			ok:       true,
		},
		{
			name: "no date present",
			path: "wcpfc_vessels.csv",
			ok:   false,
		},
		{
			name: "impossible date is treated as absent",
			path: "iotc_9999-99-99.csv",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := sources.DateFromFilename(tt.path)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, d.Format("2006-01-02"))
			}
		})
	}
}
