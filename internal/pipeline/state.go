package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// stateDocument is the on-disk layout of the state file.
type stateDocument struct {
	Pipelines map[string]*schemas.PipelineState `json:"pipelines"`
	Metadata  map[string]any                    `json:"metadata"`
}

// StateStore persists the state of all pipelines to a single JSON file.
// All operations are serialized by a mutex; writes go through a temporary
// file followed by a rename so a crashed writer never leaves a torn file.
type StateStore struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

// NewStateStore creates a store backed by the given file path. The file is
// created lazily on first write.
func NewStateStore(path string, logger *zap.Logger) *StateStore {
	return &StateStore{
		path: path,
		log:  logger.Named("state"),
	}
}

// CreatePipeline registers a new pipeline in the queued state with every
// named agent pending.
func (s *StateStore) CreatePipeline(pipelineID, requestFile string, agentOrder []string) (*schemas.PipelineState, error) {
	state := &schemas.PipelineState{
		PipelineID:  pipelineID,
		Status:      schemas.PipelineQueued,
		RequestFile: requestFile,
		StartTime:   timestamp(),
		AgentOrder:  append([]string(nil), agentOrder...),
		Agents:      make(map[string]*schemas.AgentState, len(agentOrder)),
	}
	for _, id := range agentOrder {
		state.Agents[id] = &schemas.AgentState{AgentID: id, Status: schemas.AgentPending}
	}

	err := s.update(func(doc *stateDocument) error {
		if _, exists := doc.Pipelines[pipelineID]; exists {
			return fmt.Errorf("pipeline %s already exists", pipelineID)
		}
		doc.Pipelines[pipelineID] = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Pipeline state created",
		zap.String("pipelineID", pipelineID),
		zap.Strings("agents", agentOrder),
	)
	return state, nil
}

// StartAgent marks an agent step running and records its input path. The
// pipeline itself transitions to running on the first started agent.
func (s *StateStore) StartAgent(pipelineID, agentID, inputPath string) error {
	return s.update(func(doc *stateDocument) error {
		state, agent, err := lookup(doc, pipelineID, agentID)
		if err != nil {
			return err
		}
		state.Status = schemas.PipelineRunning
		agent.Status = schemas.AgentRunning
		agent.StartTime = timestamp()
		agent.InputPath = inputPath
		return nil
	})
}

// FinishAgent records the outcome of an agent step from its result record.
func (s *StateStore) FinishAgent(pipelineID string, res schemas.AgentResult) error {
	return s.update(func(doc *stateDocument) error {
		_, agent, err := lookup(doc, pipelineID, res.AgentID)
		if err != nil {
			return err
		}
		agent.EndTime = timestamp()
		agent.OutputPath = res.OutputFile
		agent.ErrorMessage = res.ErrorMessage
		agent.ExecutionTime = res.ExecutionTime
		agent.Metadata = res.Metadata
		if res.Success {
			agent.Status = schemas.AgentSuccess
		} else {
			agent.Status = schemas.AgentFailed
		}
		return nil
	})
}

// CompletePipeline marks a pipeline completed.
func (s *StateStore) CompletePipeline(pipelineID string) error {
	return s.finishPipeline(pipelineID, schemas.PipelineCompleted)
}

// FailPipeline marks a pipeline failed and flags all still-pending agents as
// skipped.
func (s *StateStore) FailPipeline(pipelineID string) error {
	return s.finishPipeline(pipelineID, schemas.PipelineFailed)
}

func (s *StateStore) finishPipeline(pipelineID string, status schemas.PipelineStatus) error {
	return s.update(func(doc *stateDocument) error {
		state, ok := doc.Pipelines[pipelineID]
		if !ok {
			return fmt.Errorf("unknown pipeline %s", pipelineID)
		}
		state.Status = status
		state.EndTime = timestamp()
		if status == schemas.PipelineFailed {
			for _, agent := range state.Agents {
				if agent.Status == schemas.AgentPending {
					agent.Status = schemas.AgentSkipped
				}
			}
		}
		return nil
	})
}

// Get returns the state of a single pipeline.
func (s *StateStore) Get(pipelineID string) (*schemas.PipelineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	state, ok := doc.Pipelines[pipelineID]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %s", pipelineID)
	}
	return state, nil
}

// List returns all known pipeline states ordered by start time.
func (s *StateStore) List() ([]*schemas.PipelineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	states := make([]*schemas.PipelineState, 0, len(doc.Pipelines))
	for _, state := range doc.Pipelines {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].StartTime == states[j].StartTime {
			return states[i].PipelineID < states[j].PipelineID
		}
		return states[i].StartTime < states[j].StartTime
	})
	return states, nil
}

// update applies fn to the loaded document and persists the result.
func (s *StateStore) update(fn func(*stateDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// load reads the state document, returning a fresh one when the file does
// not exist yet.
func (s *StateStore) load() (*stateDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &stateDocument{
				Pipelines: make(map[string]*schemas.PipelineState),
				Metadata:  map[string]any{"created": timestamp()},
			}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var doc stateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	if doc.Pipelines == nil {
		doc.Pipelines = make(map[string]*schemas.PipelineState)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	return &doc, nil
}

// save writes the document via temp file + rename.
func (s *StateStore) save(doc *stateDocument) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func lookup(doc *stateDocument, pipelineID, agentID string) (*schemas.PipelineState, *schemas.AgentState, error) {
	state, ok := doc.Pipelines[pipelineID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown pipeline %s", pipelineID)
	}
	agent, ok := state.Agents[agentID]
	if !ok {
		return nil, nil, fmt.Errorf("pipeline %s has no agent %s", pipelineID, agentID)
	}
	return state, agent, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
