package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
)

// PackagerID is the agent id reported in every packager result.
const PackagerID = "packager"

// packagerVersion is recorded in the package manifest.
const packagerVersion = "1.0"

// Packager assembles the final distributable directory for a finished
// template: the template itself as index.php plus README, changelog, and a
// machine-readable manifest.
type Packager struct {
	config map[string]any
}

// NewPackager constructs the agent with an opaque options mapping.
// Recognized string key: output_dir (defaults to "final" next to the input).
func NewPackager(config map[string]any) *Packager {
	return &Packager{config: config}
}

// ID implements schemas.Agent.
func (a *Packager) ID() string { return PackagerID }

// Run assembles final/template_<id>/ for the given template file. The
// output_file of a successful result is the package directory.
func (a *Packager) Run(ctx context.Context, inputFile, pipelineID string) schemas.AgentResult {
	if err := ctx.Err(); err != nil {
		return schemas.Failure(PackagerID, err)
	}

	templateID := ExtractTemplateID(inputFile)

	outputRoot := "final"
	if v, ok := a.config["output_dir"].(string); ok && v != "" {
		outputRoot = v
	}
	if !filepath.IsAbs(outputRoot) {
		outputRoot = filepath.Join(filepath.Dir(inputFile), outputRoot)
	}
	packageDir := filepath.Join(outputRoot, "template_"+templateID)

	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return schemas.Failure(PackagerID, err)
	}

	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return schemas.Failure(PackagerID, err)
	}
	if err := os.WriteFile(filepath.Join(packageDir, "index.php"), raw, 0o644); err != nil {
		return schemas.Failure(PackagerID, err)
	}

	if err := os.WriteFile(filepath.Join(packageDir, "README.md"), []byte(packageReadme(templateID)), 0o644); err != nil {
		return schemas.Failure(PackagerID, err)
	}
	if err := os.WriteFile(filepath.Join(packageDir, "CHANGELOG.md"), []byte("# Changelog\n\n- Initial package generated.\n"), 0o644); err != nil {
		return schemas.Failure(PackagerID, err)
	}

	manifest, err := buildManifest(templateID)
	if err != nil {
		return schemas.Failure(PackagerID, err)
	}
	if err := os.WriteFile(filepath.Join(packageDir, "manifest.json"), manifest, 0o644); err != nil {
		return schemas.Failure(PackagerID, err)
	}

	return schemas.AgentResult{
		AgentID:    PackagerID,
		Success:    true,
		OutputFile: packageDir,
		Metadata:   map[string]any{"template_id": templateID},
	}
}

// ExtractTemplateID pulls the template id out of a file name like
// template_001.cta.php. Names that do not carry an id yield "000".
func ExtractTemplateID(path string) string {
	stem := filepath.Base(path)
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	stem = strings.TrimPrefix(stem, "template_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		return "000"
	}
	return stem
}

// buildManifest renders the package manifest document.
func buildManifest(templateID string) ([]byte, error) {
	manifest := map[string]any{
		"version":       "1.0.0",
		"template_id":   templateID,
		"creation_date": time.Now().UTC().Format(time.RFC3339),
		"agent_versions": map[string]string{
			PackagerID: packagerVersion,
		},
	}
	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return out, nil
}

// packageReadme renders the static README shipped with every package.
func packageReadme(templateID string) string {
	return strings.Join([]string{
		fmt.Sprintf("# Template %s", templateID),
		"",
		"## Overview",
		"A professionally generated PHP template designed for speed, security, and conversions.",
		"",
		"## Installation",
		"Place the template in your PHP-enabled hosting environment and open index.php.",
		"",
		"## Customization",
		"Modify the HTML/CSS as needed to match your branding.",
		"",
		"## Features",
		"- Responsive design",
		"- Conversion-optimized CTAs",
		"- Clean semantic HTML",
		"",
		"## License",
		"Generated templates are free to use and modify.",
		"",
	}, "\n")
}
