package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/agents"
)

// Runner executes an ordered chain of agents over a template file. Each
// step's input is the previous step's output file; a failed step fails the
// pipeline and stops the chain.
type Runner struct {
	agents  []schemas.Agent
	state   *StateStore
	baseDir string
	log     *zap.Logger
}

// NewRunner builds a runner for the given agent chain.
func NewRunner(agentChain []schemas.Agent, state *StateStore, baseDir string, logger *zap.Logger) (*Runner, error) {
	if len(agentChain) == 0 {
		return nil, fmt.Errorf("runner requires at least one agent")
	}
	if state == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize runner with nil dependencies")
	}
	return &Runner{
		agents:  agentChain,
		state:   state,
		baseDir: baseDir,
		log:     logger.Named("runner"),
	}, nil
}

// Run executes one pipeline over requestFile and returns its final persisted
// state. The returned error reports orchestration failures and failed agent
// steps; the per-step details live in the state record.
func (r *Runner) Run(ctx context.Context, requestFile string) (*schemas.PipelineState, error) {
	pipelineID := uuid.New().String()

	pctx := Context{
		PipelineID:  pipelineID,
		TemplateID:  agents.ExtractTemplateID(requestFile),
		RequestFile: requestFile,
		BaseDir:     r.baseDir,
	}
	if err := pctx.EnsureLayout(); err != nil {
		return nil, err
	}

	order := make([]string, len(r.agents))
	for i, agent := range r.agents {
		order[i] = agent.ID()
	}
	if _, err := r.state.CreatePipeline(pipelineID, requestFile, order); err != nil {
		return nil, err
	}

	log := r.log.With(zap.String("pipelineID", pipelineID), zap.String("request_file", requestFile))
	log.Info("Pipeline started", zap.Strings("agents", order))

	// Stage the request file into the pipeline's templates directory so all
	// intermediate outputs land inside the pipeline working directory.
	current, err := r.stageInput(pctx, requestFile)
	if err != nil {
		r.markFailed(pipelineID, log)
		return nil, err
	}

	for _, agent := range r.agents {
		if err := r.state.StartAgent(pipelineID, agent.ID(), current); err != nil {
			r.markFailed(pipelineID, log)
			return nil, err
		}

		start := time.Now()
		res := agent.Run(ctx, current, pipelineID)
		// Agents leave execution_time at zero; the runner owns timing.
		res.ExecutionTime = time.Since(start).Seconds()

		if err := r.state.FinishAgent(pipelineID, res); err != nil {
			r.markFailed(pipelineID, log)
			return nil, err
		}

		if !res.Success {
			log.Error("Agent step failed",
				zap.String("agent_id", res.AgentID),
				zap.String("error_message", res.ErrorMessage),
			)
			r.markFailed(pipelineID, log)
			state, getErr := r.state.Get(pipelineID)
			if getErr != nil {
				return nil, getErr
			}
			return state, fmt.Errorf("agent %s failed: %s", res.AgentID, res.ErrorMessage)
		}

		log.Info("Agent step finished",
			zap.String("agent_id", res.AgentID),
			zap.String("output_file", res.OutputFile),
			zap.Float64("execution_time", res.ExecutionTime),
		)
		current = res.OutputFile
	}

	if err := r.state.CompletePipeline(pipelineID); err != nil {
		return nil, err
	}
	log.Info("Pipeline completed", zap.String("final_output", current))
	return r.state.Get(pipelineID)
}

// RunBatch runs one pipeline per input file, at most concurrency at a time.
// All pipelines are attempted even when some fail; the first failure is
// returned after the batch drains. Results are ordered like the inputs, with
// nil entries for pipelines that never produced a state record.
func (r *Runner) RunBatch(ctx context.Context, requestFiles []string, concurrency int) ([]*schemas.PipelineState, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	states := make([]*schemas.PipelineState, len(requestFiles))
	// A plain group: one failed pipeline must not cancel its siblings.
	// Caller cancellation still propagates through ctx.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, file := range requestFiles {
		i, file := i, file
		g.Go(func() error {
			state, err := r.Run(ctx, file)
			states[i] = state
			return err
		})
	}

	err := g.Wait()
	return states, err
}

// stageInput copies the request file into the pipeline templates directory.
func (r *Runner) stageInput(pctx Context, requestFile string) (string, error) {
	templatesDir, err := pctx.Dir(DirTemplates)
	if err != nil {
		return "", err
	}

	src, err := os.Open(requestFile)
	if err != nil {
		return "", fmt.Errorf("failed to open request file: %w", err)
	}
	defer src.Close()

	staged := filepath.Join(templatesDir, filepath.Base(requestFile))
	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("failed to stage request file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy request file: %w", err)
	}
	return staged, nil
}

func (r *Runner) markFailed(pipelineID string, log *zap.Logger) {
	if err := r.state.FailPipeline(pipelineID); err != nil {
		log.Error("Failed to record pipeline failure", zap.Error(err))
	}
}
