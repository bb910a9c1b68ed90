package agents

import (
	"fmt"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/config"
)

// Registry maps agent ids to constructed agents.
type Registry map[string]schemas.Agent

// NewRegistry builds the default registry, handing each agent its free-form
// options mapping from the configuration.
func NewRegistry(cfg *config.Config) Registry {
	return Registry{
		CTAOptimizerID: NewCTAOptimizer(cfg.AgentOptions(CTAOptimizerID)),
		SEOOptimizerID: NewSEOOptimizer(cfg.AgentOptions(SEOOptimizerID)),
		PackagerID:     NewPackager(cfg.AgentOptions(PackagerID)),
	}
}

// Resolve returns the agents named by order, in order. Unknown ids are an
// error so a misconfigured pipeline fails before any file is touched.
func (r Registry) Resolve(order []string) ([]schemas.Agent, error) {
	resolved := make([]schemas.Agent, 0, len(order))
	for _, id := range order {
		agent, ok := r[id]
		if !ok {
			return nil, fmt.Errorf("no agent registered for id %q", id)
		}
		resolved = append(resolved, agent)
	}
	return resolved, nil
}
