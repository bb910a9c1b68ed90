package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirKind names a standard subdirectory inside a pipeline working directory.
type DirKind string

const (
	DirInputs    DirKind = "inputs"
	DirTemplates DirKind = "templates"
	DirReviews   DirKind = "reviews"
	DirFinal     DirKind = "final"
	DirLogs      DirKind = "logs"
)

// standardDirs is the set created up front for every pipeline.
var standardDirs = []DirKind{DirInputs, DirTemplates, DirReviews, DirFinal, DirLogs}

// Context carries the identifiers and base directory for one pipeline run.
type Context struct {
	PipelineID  string
	TemplateID  string
	RequestFile string
	BaseDir     string
}

// Root returns the pipeline's working directory, pipeline_<id> under the
// base directory.
func (c Context) Root() string {
	return filepath.Join(c.BaseDir, "pipeline_"+c.PipelineID)
}

// Dir returns the path of a standard subdirectory, creating it if needed.
func (c Context) Dir(kind DirKind) (string, error) {
	dir := filepath.Join(c.Root(), string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create pipeline directory %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureLayout creates the full standard directory structure for the
// pipeline.
func (c Context) EnsureLayout() error {
	for _, kind := range standardDirs {
		if _, err := c.Dir(kind); err != nil {
			return err
		}
	}
	return nil
}
