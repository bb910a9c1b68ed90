package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/config"
)

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry(config.NewDefaultConfig())

	t.Run("resolves agents in requested order", func(t *testing.T) {
		chain, err := registry.Resolve([]string{PackagerID, CTAOptimizerID})
		require.NoError(t, err)
		require.Len(t, chain, 2)
		assert.Equal(t, PackagerID, chain[0].ID())
		assert.Equal(t, CTAOptimizerID, chain[1].ID())
	})

	t.Run("rejects unknown agent ids", func(t *testing.T) {
		_, err := registry.Resolve([]string{CTAOptimizerID, "theme_validator"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "theme_validator")
	})
}
