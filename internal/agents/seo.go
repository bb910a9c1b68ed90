package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/api/schemas"
)

// SEOOptimizerID is the agent id reported in every SEO optimizer result.
const SEOOptimizerID = "seo_optimizer"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// seoDefaults mirror the fallback business profile used when the options
// mapping does not provide a field.
var seoDefaults = map[string]string{
	"business_name": "Local Service Business",
	"city":          "Your City",
	"state":         "Your State",
	"service":       "Professional Services",
	"phone":         "",
}

// SEOOptimizer injects local-SEO meta tags and LocalBusiness schema markup
// into a PHP template's head section.
type SEOOptimizer struct {
	config map[string]any
}

// NewSEOOptimizer constructs the agent with an opaque options mapping.
// Recognized string keys: business_name, city, state, service, phone.
func NewSEOOptimizer(config map[string]any) *SEOOptimizer {
	return &SEOOptimizer{config: config}
}

// ID implements schemas.Agent.
func (a *SEOOptimizer) ID() string { return SEOOptimizerID }

// Run reads inputFile, injects the SEO block, and writes the result to the
// derived output path (every ".php" becomes ".seo.php"). Same error and path
// derivation contract as the CTA optimizer.
func (a *SEOOptimizer) Run(ctx context.Context, inputFile, pipelineID string) schemas.AgentResult {
	if err := ctx.Err(); err != nil {
		return schemas.Failure(SEOOptimizerID, err)
	}

	outputFile := strings.ReplaceAll(inputFile, ".php", ".seo.php")

	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return schemas.Failure(SEOOptimizerID, err)
	}

	enhanced, features, err := a.optimize(string(raw))
	if err != nil {
		return schemas.Failure(SEOOptimizerID, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return schemas.Failure(SEOOptimizerID, err)
	}
	if err := os.WriteFile(outputFile, []byte(enhanced), 0o644); err != nil {
		return schemas.Failure(SEOOptimizerID, err)
	}

	return schemas.AgentResult{
		AgentID:    SEOOptimizerID,
		Success:    true,
		OutputFile: outputFile,
		Metadata:   map[string]any{"seo_features": features},
	}
}

// optimize builds the SEO block and inserts it before the closing </head>
// tag. Content without a head section gets the block appended at the end,
// matching the CTA agent's fallback behavior. The returned count is the
// number of SEO features injected.
func (a *SEOOptimizer) optimize(content string) (string, int, error) {
	name := a.option("business_name")
	city := a.option("city")
	state := a.option("state")
	service := a.option("service")
	phone := a.option("phone")

	description := fmt.Sprintf("%s - %s in %s, %s.", name, service, city, state)
	keywords := fmt.Sprintf("%s, %s, %s", strings.ToLower(service), strings.ToLower(city), strings.ToLower(state))

	schemaMarkup, err := localBusinessSchema(name, city, state, phone)
	if err != nil {
		return "", 0, err
	}

	block := strings.Join([]string{
		fmt.Sprintf(`<meta name="description" content="%s">`, description),
		fmt.Sprintf(`<meta name="keywords" content="%s">`, keywords),
		`<script type="application/ld+json">` + "\n" + schemaMarkup + "\n</script>",
	}, "\n")

	const headClose = "</head>"
	if strings.Contains(content, headClose) {
		return strings.Replace(content, headClose, block+"\n"+headClose, 1), 3, nil
	}
	return content + "\n" + block, 3, nil
}

// option resolves a string option, falling back to the built-in defaults.
func (a *SEOOptimizer) option(key string) string {
	if v, ok := a.config[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return seoDefaults[key]
}

// localBusinessSchema renders the schema.org LocalBusiness JSON-LD document.
func localBusinessSchema(name, city, state, phone string) (string, error) {
	doc := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     name,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": city,
			"addressRegion":   state,
		},
	}
	if phone != "" {
		doc["telephone"] = phone
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema markup: %w", err)
	}
	return string(out), nil
}
