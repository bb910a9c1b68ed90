package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/pipeline"
)

// execute runs a fresh root command against a clean viper instance.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	viper.Reset()
	cfgFile = ""

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestVersionCommand(t *testing.T) {
	require.NoError(t, execute(t, "version"))
}

func TestOptimizeCommand(t *testing.T) {
	t.Run("writes the derived output file", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "template.php")
		require.NoError(t, os.WriteFile(input, []byte("<html><!-- hero --></html>"), 0o644))

		require.NoError(t, execute(t, "optimize", input))

		out, err := os.ReadFile(filepath.Join(dir, "template.cta.php"))
		require.NoError(t, err)
		assert.Contains(t, string(out), "<!-- hero -->")
		assert.Contains(t, string(out), "cta-section")
	})

	t.Run("fails with a nonzero exit for a missing input", func(t *testing.T) {
		err := execute(t, "optimize", filepath.Join(t.TempDir(), "missing.php"))
		require.Error(t, err)
	})
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "template_001.php")
	require.NoError(t, os.WriteFile(input, []byte("<html><head></head><!-- hero --></html>"), 0o644))

	baseDir := filepath.Join(dir, "out")
	stateFile := filepath.Join(dir, "pipeline_state.json")

	require.NoError(t, execute(t, "run",
		"--base-dir", baseDir,
		"--state-file", stateFile,
		"--agents", "cta_optimizer,seo_optimizer,packager",
		input,
	))

	store := pipeline.NewStateStore(stateFile, zap.NewNop())
	states, err := store.List()
	require.NoError(t, err)
	require.Len(t, states, 1)

	state := states[0]
	assert.Equal(t, input, state.RequestFile)
	assert.Equal(t, []string{"cta_optimizer", "seo_optimizer", "packager"}, state.AgentOrder)
	for _, agentState := range state.Agents {
		assert.NotEmpty(t, agentState.OutputPath, "agent %s", agentState.AgentID)
	}

	// The chain ends in a package directory with the fully transformed
	// template as index.php.
	finalDir := state.Agents["packager"].OutputPath
	index, err := os.ReadFile(filepath.Join(finalDir, "index.php"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "cta-section")
	assert.Contains(t, string(index), "LocalBusiness")
}

func TestStatusCommand(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "pipeline_state.json")

	store := pipeline.NewStateStore(stateFile, zap.NewNop())
	_, err := store.CreatePipeline("p1", "template.php", []string{"cta_optimizer"})
	require.NoError(t, err)

	t.Run("lists all pipelines", func(t *testing.T) {
		viper.Reset()
		cfgFile = ""
		viper.Set("pipeline.state_file", stateFile)

		root := NewRootCommand()
		root.SetArgs([]string{"status"})
		require.NoError(t, root.ExecuteContext(context.Background()))
	})

	t.Run("errors on an unknown pipeline id", func(t *testing.T) {
		viper.Reset()
		cfgFile = ""
		viper.Set("pipeline.state_file", stateFile)

		root := NewRootCommand()
		root.SetArgs([]string{"status", "nope"})
		require.Error(t, root.ExecuteContext(context.Background()))
	})
}
