package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "templatepipe", cfg.Logger.ServiceName)
	assert.Equal(t, "pipeline_output", cfg.Pipeline.BaseDir)
	assert.Equal(t, "pipeline_state.json", cfg.Pipeline.StateFile)
	assert.Equal(t, []string{"cta_optimizer", "seo_optimizer", "packager"}, cfg.Pipeline.AgentOrder)
	assert.Equal(t, 4, cfg.Pipeline.BatchConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("overrides defaults from yaml", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
pipeline:
  base_dir: /tmp/pipelines
  batch_concurrency: 2
  agent_order:
    - cta_optimizer
agents:
  seo_optimizer:
    business_name: Apex Plumbing
    phone: "512-555-0101"
`)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/pipelines", cfg.Pipeline.BaseDir)
		assert.Equal(t, 2, cfg.Pipeline.BatchConcurrency)
		assert.Equal(t, []string{"cta_optimizer"}, cfg.Pipeline.AgentOrder)

		opts := cfg.AgentOptions("seo_optimizer")
		require.NotNil(t, opts)
		assert.Equal(t, "Apex Plumbing", opts["business_name"])
		assert.Nil(t, cfg.AgentOptions("cta_optimizer"))
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("pipeline.batch_concurrency", 0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch_concurrency")
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base dir", func(c *Config) { c.Pipeline.BaseDir = "" }},
		{"empty state file", func(c *Config) { c.Pipeline.StateFile = "" }},
		{"no agents", func(c *Config) { c.Pipeline.AgentOrder = nil }},
		{"zero concurrency", func(c *Config) { c.Pipeline.BatchConcurrency = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
