package agents

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
)

// CTAOptimizerID is the agent id reported in every CTA optimizer result.
const CTAOptimizerID = "cta_optimizer"

// ctaBlock is the fixed call-to-action fragment inserted after each anchor.
const ctaBlock = `<div class="cta-section" style="background:#007BFF;padding:2rem;text-align:center;color:#fff;">
    <h2>Call Now to Get Started!</h2>
    <a href="tel:5555555555" class="cta-button" style="background:#fff;color:#007BFF;padding:1rem 2rem;border-radius:8px;text-decoration:none;">Call 555-555-5555</a>
</div>`

// ctaAnchors are checked in order. Every occurrence of a matching anchor gets
// the block inserted immediately after it.
var ctaAnchors = []string{
	"<!-- hero -->",
	"<!-- features -->",
	"<!-- testimonials -->",
	"<!-- contact -->",
}

// CTAOptimizer inserts a fixed call-to-action block into a PHP template at
// anchor comments, appending the block when no anchor is present.
type CTAOptimizer struct {
	// config is retained for the agent's lifetime but not read by the
	// transformation. It reserves room for future CTA templates, anchor
	// sets, and phone numbers.
	config map[string]any
}

// NewCTAOptimizer constructs the agent with an opaque options mapping.
// A nil mapping is valid.
func NewCTAOptimizer(config map[string]any) *CTAOptimizer {
	return &CTAOptimizer{config: config}
}

// ID implements schemas.Agent.
func (a *CTAOptimizer) ID() string { return CTAOptimizerID }

// Run reads inputFile, inserts the CTA block, and writes the result to the
// derived output path (every ".php" in the input path becomes ".cta.php").
// A path without ".php" derives to itself and the original file is
// overwritten; that is a documented limitation, not an error.
//
// All failures are folded into a failure-shaped result. The pipelineID is a
// pass-through correlation key and does not affect the transformation.
func (a *CTAOptimizer) Run(ctx context.Context, inputFile, pipelineID string) schemas.AgentResult {
	if err := ctx.Err(); err != nil {
		return schemas.Failure(CTAOptimizerID, err)
	}

	outputFile := strings.ReplaceAll(inputFile, ".php", ".cta.php")

	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return schemas.Failure(CTAOptimizerID, err)
	}

	optimized := OptimizeCTAs(string(raw))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return schemas.Failure(CTAOptimizerID, err)
	}
	if err := os.WriteFile(outputFile, []byte(optimized), 0o644); err != nil {
		return schemas.Failure(CTAOptimizerID, err)
	}

	return schemas.AgentResult{
		AgentID:    CTAOptimizerID,
		Success:    true,
		OutputFile: outputFile,
		// The fallback append path also inserts a CTA, so the flag is set
		// unconditionally on success.
		Metadata: map[string]any{"inserted_cta": true},
	}
}

// OptimizeCTAs inserts the CTA block after every occurrence of every anchor
// marker, in anchor order. When no anchor matches anywhere, the block is
// appended to the content after a newline.
//
// The transformation is pure and deterministic, and deliberately not
// idempotent: anchors are left in place, so a second pass inserts the block
// again after each of them.
func OptimizeCTAs(content string) string {
	inserted := false
	for _, anchor := range ctaAnchors {
		if strings.Contains(content, anchor) {
			content = strings.ReplaceAll(content, anchor, anchor+"\n"+ctaBlock)
			inserted = true
		}
	}
	if !inserted {
		content += "\n" + ctaBlock
	}
	return content
}
