package schemas

import "context"

// PipelineStatus defines the lifecycle state of a whole pipeline run.
type PipelineStatus string

const (
	PipelineQueued    PipelineStatus = "queued"
	PipelineRunning   PipelineStatus = "running"
	PipelineCompleted PipelineStatus = "completed"
	PipelineFailed    PipelineStatus = "failed"
	PipelineCancelled PipelineStatus = "cancelled"
)

// AgentStatus defines the state of a single agent step within a pipeline.
type AgentStatus string

const (
	AgentPending AgentStatus = "pending"
	AgentRunning AgentStatus = "running"
	AgentSuccess AgentStatus = "success"
	AgentFailed  AgentStatus = "failed"
	AgentSkipped AgentStatus = "skipped"
)

// AgentResult is the outcome record returned from every agent invocation.
//
// Invariant: Success == true implies OutputFile is non-empty and ErrorMessage
// is empty; Success == false implies the reverse. The record is never mutated
// after construction, with one exception: the pipeline runner stamps
// ExecutionTime, which agents themselves always leave at zero.
type AgentResult struct {
	AgentID       string         `json:"agent_id"`
	Success       bool           `json:"success"`
	OutputFile    string         `json:"output_file"`
	ErrorMessage  string         `json:"error_message"`
	ExecutionTime float64        `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Failure builds a failure-shaped result for the given agent.
func Failure(agentID string, err error) AgentResult {
	return AgentResult{
		AgentID:      agentID,
		ErrorMessage: err.Error(),
	}
}

// Agent is the contract every pipeline agent implements. Run never returns a
// Go error: all failures are folded into a failure-shaped AgentResult so the
// caller only ever consumes the result record.
type Agent interface {
	ID() string
	Run(ctx context.Context, inputFile, pipelineID string) AgentResult
}

// AgentState records the execution of one agent step, as persisted by the
// pipeline state store.
type AgentState struct {
	AgentID       string         `json:"agent_id"`
	Status        AgentStatus    `json:"status"`
	StartTime     string         `json:"start_time,omitempty"`
	EndTime       string         `json:"end_time,omitempty"`
	InputPath     string         `json:"input_path,omitempty"`
	OutputPath    string         `json:"output_path,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// PipelineState is the complete persisted state of one pipeline run.
type PipelineState struct {
	PipelineID  string                 `json:"pipeline_id"`
	Status      PipelineStatus         `json:"status"`
	RequestFile string                 `json:"request_file"`
	StartTime   string                 `json:"start_time"`
	EndTime     string                 `json:"end_time,omitempty"`
	AgentOrder  []string               `json:"agent_order"`
	Agents      map[string]*AgentState `json:"agents"`
	Metadata    map[string]any         `json:"metadata,omitempty"`
}
