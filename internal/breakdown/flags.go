package breakdown

import (
	"context"
	"fmt"
	"strings"

	"slate/internal/script"
)

// scanFlags runs the single-request safety and risk scan for one scene.
// Returns nil when the request fails; the scene still appears in output.
func (p *Pipeline) scanFlags(ctx context.Context, scene *script.Scene) []script.ReviewFlag {
	parsed := p.generate(ctx, flagPrompt(scene, elementsSummary(scene.Elements)), flagSchema)
	if parsed == nil {
		p.logger.Warn("flag scan failed", "scene", scene.Number)
		return nil
	}
	return flagsFromResult(parsed)
}

// elementsSummary renders harvested elements for model context, one line per
// element: "- {category}: {name}".
func elementsSummary(elements []script.Element) string {
	lines := make([]string, 0, len(elements))
	for _, el := range elements {
		lines = append(lines, fmt.Sprintf("- %s: %s", el.Category, el.Name))
	}
	return strings.Join(lines, "\n")
}
