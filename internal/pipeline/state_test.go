package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	return NewStateStore(filepath.Join(t.TempDir(), "pipeline_state.json"), zap.NewNop())
}

func TestStateStoreLifecycle(t *testing.T) {
	store := newTestStore(t)

	state, err := store.CreatePipeline("p1", "template.php", []string{"cta_optimizer", "packager"})
	require.NoError(t, err)
	assert.Equal(t, schemas.PipelineQueued, state.Status)
	assert.Equal(t, schemas.AgentPending, state.Agents["cta_optimizer"].Status)

	require.NoError(t, store.StartAgent("p1", "cta_optimizer", "template.php"))

	got, err := store.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, schemas.PipelineRunning, got.Status)
	assert.Equal(t, schemas.AgentRunning, got.Agents["cta_optimizer"].Status)
	assert.NotEmpty(t, got.Agents["cta_optimizer"].StartTime)

	require.NoError(t, store.FinishAgent("p1", schemas.AgentResult{
		AgentID:       "cta_optimizer",
		Success:       true,
		OutputFile:    "template.cta.php",
		ExecutionTime: 0.25,
		Metadata:      map[string]any{"inserted_cta": true},
	}))
	require.NoError(t, store.CompletePipeline("p1"))

	got, err = store.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, schemas.PipelineCompleted, got.Status)
	assert.NotEmpty(t, got.EndTime)
	agent := got.Agents["cta_optimizer"]
	assert.Equal(t, schemas.AgentSuccess, agent.Status)
	assert.Equal(t, "template.cta.php", agent.OutputPath)
	assert.Equal(t, 0.25, agent.ExecutionTime)
}

func TestStateStoreFailureSkipsPendingAgents(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreatePipeline("p1", "template.php", []string{"cta_optimizer", "seo_optimizer", "packager"})
	require.NoError(t, err)

	require.NoError(t, store.StartAgent("p1", "cta_optimizer", "template.php"))
	require.NoError(t, store.FinishAgent("p1", schemas.AgentResult{
		AgentID:      "cta_optimizer",
		ErrorMessage: "read failed",
	}))
	require.NoError(t, store.FailPipeline("p1"))

	got, err := store.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, schemas.PipelineFailed, got.Status)
	assert.Equal(t, schemas.AgentFailed, got.Agents["cta_optimizer"].Status)
	assert.Equal(t, "read failed", got.Agents["cta_optimizer"].ErrorMessage)
	assert.Equal(t, schemas.AgentSkipped, got.Agents["seo_optimizer"].Status)
	assert.Equal(t, schemas.AgentSkipped, got.Agents["packager"].Status)
}

func TestStateStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "pipeline_state.json")

	store := NewStateStore(path, zap.NewNop())
	_, err := store.CreatePipeline("p1", "a.php", []string{"cta_optimizer"})
	require.NoError(t, err)
	_, err = store.CreatePipeline("p2", "b.php", []string{"cta_optimizer"})
	require.NoError(t, err)

	// A fresh store over the same file sees everything.
	reopened := NewStateStore(path, zap.NewNop())
	states, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "p1", states[0].PipelineID)
	assert.Equal(t, "p2", states[1].PipelineID)

	// No stray temp file is left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStateStoreErrors(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreatePipeline("p1", "a.php", []string{"cta_optimizer"})
	require.NoError(t, err)

	t.Run("duplicate pipeline id", func(t *testing.T) {
		_, err := store.CreatePipeline("p1", "a.php", []string{"cta_optimizer"})
		assert.Error(t, err)
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		_, err := store.Get("nope")
		assert.Error(t, err)
		assert.Error(t, store.StartAgent("nope", "cta_optimizer", "x"))
	})

	t.Run("unknown agent", func(t *testing.T) {
		assert.Error(t, store.StartAgent("p1", "nope", "x"))
	})

	t.Run("corrupt state file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipeline_state.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		corrupt := NewStateStore(path, zap.NewNop())
		_, err := corrupt.List()
		assert.Error(t, err)
	})
}
