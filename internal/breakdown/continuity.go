package breakdown

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"slate/internal/script"
)

// continuityNotes runs the two-prompt continuity scheme for one scene: the
// Matchmaker maps generic nouns to items already in the catalog, the Observer
// independently detects physical state changes. The two note lists are
// unioned without deduplication. Either request failing yields an empty
// contribution for that request only.
func (p *Pipeline) continuityNotes(ctx context.Context, scene *script.Scene, historySummary string) string {
	var matchNotes, observerNotes []string

	done := make(chan struct{})
	go func() {
		defer close(done)
		if parsed := p.generate(ctx, matchmakerPrompt(scene, historySummary), continuitySchema); parsed != nil {
			matchNotes = notesFromResult(parsed)
		} else {
			p.logger.Warn("matchmaker pass failed", "scene", scene.Number)
		}
	}()

	if parsed := p.generate(ctx, observerPrompt(scene), continuitySchema); parsed != nil {
		observerNotes = notesFromResult(parsed)
	} else {
		p.logger.Warn("observer pass failed", "scene", scene.Number)
	}
	<-done

	all := append(matchNotes, observerNotes...)
	return strings.Join(all, "\n")
}

// notesFromResult renders the "continuity_notes" list into human-readable
// lines of the form "ITEM -> SPECIFICITY: note". Models sometimes return
// bare strings inside the list; those pass through unchanged.
func notesFromResult(parsed json.RawMessage) []string {
	var body struct {
		ContinuityNotes []any `json:"continuity_notes"`
	}
	if err := json.Unmarshal(parsed, &body); err != nil {
		return nil
	}

	var out []string
	for _, raw := range body.ContinuityNotes {
		switch v := raw.(type) {
		case map[string]any:
			name := stringField(v, "item_name")
			if name == "" {
				name = stringField(v, "item")
			}
			if name == "" {
				name = "Unknown"
			}
			spec := stringField(v, "resolved_specificity")
			if spec == "" {
				spec = "N/A"
			}
			out = append(out, fmt.Sprintf("%s -> %s: %s", name, spec, stringField(v, "note")))
		case string:
			out = append(out, v)
		}
	}
	return out
}
