package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min area", func(c *Config) { c.MinArea = -1 }},
		{"inverted area band", func(c *Config) { c.MaxArea = c.MinArea - 1 }},
		{"negative min width", func(c *Config) { c.MinWidth = -1 }},
		{"zero width ratio", func(c *Config) { c.MaxWidthRatio = 0 }},
		{"inverted aspect band", func(c *Config) { c.MaxAspect = c.MinAspect / 2 }},
		{"strict looser than relaxed", func(c *Config) { c.MaxDensity = c.RelaxedMaxDensity + 0.1 }},
		{"density floor above strict cap", func(c *Config) { c.MinDensity = c.MaxDensity + 0.01 }},
		{"negative track weight", func(c *Config) { c.TrackWeight = -0.5 }},
		{"negative edge margin", func(c *Config) { c.EdgeMargin = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
