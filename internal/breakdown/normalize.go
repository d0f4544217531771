package breakdown

import (
	"encoding/json"
	"strconv"
	"strings"

	"slate/internal/script"
)

// entryKind tags the outcome of normalizing one loose JSON entry.
type entryKind int

const (
	kindRejected entryKind = iota
	kindElement
	kindFlag
)

// entry is the tagged variant produced at the normalization boundary. Model
// responses arrive as dicts, lists, or bare strings depending on model mood;
// every shape is resolved here so the rest of the pipeline sees typed values.
type entry struct {
	kind    entryKind
	element script.Element
	flag    script.ReviewFlag
}

// placeholderNames are junk values local models emit for "nothing here".
// They are rejected at the merge boundary, never stored.
var placeholderNames = map[string]struct{}{
	"":     {},
	"NULL": {},
	"NONE": {},
	"N/A":  {},
}

// NormalizeName trims and upper-cases an element name. Idempotent.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// isPlaceholder reports whether a normalized name is a junk placeholder.
func isPlaceholder(name string) bool {
	_, ok := placeholderNames[name]
	return ok
}

// normalizeElement converts one loose entry into an Element. Entries with a
// missing, empty, or placeholder name are rejected. Count defaults to "1"
// when absent or invalid.
func normalizeElement(raw any) entry {
	m, ok := raw.(map[string]any)
	if !ok {
		return entry{kind: kindRejected}
	}

	name := NormalizeName(stringField(m, "name"))
	if isPlaceholder(name) {
		return entry{kind: kindRejected}
	}

	category := strings.TrimSpace(stringField(m, "category"))
	if category == "" {
		return entry{kind: kindRejected}
	}

	count := countField(m, "count")

	el := script.Element{
		Name:       name,
		Category:   category,
		Count:      count,
		Source:     script.SourceExplicit,
		Confidence: 1.0,
	}
	if src := strings.ToLower(stringField(m, "source")); src == string(script.SourceImplied) {
		el.Source = script.SourceImplied
	}
	if conf, ok := m["confidence"].(float64); ok && conf >= 0 && conf <= 1 {
		el.Confidence = conf
	}
	return entry{kind: kindElement, element: el}
}

// normalizeFlag converts one loose entry into a ReviewFlag. Severity must
// coerce to an integer in {1,2,3}; out-of-range severities reject the entry
// rather than being clamped.
func normalizeFlag(raw any) entry {
	m, ok := raw.(map[string]any)
	if !ok {
		return entry{kind: kindRejected}
	}

	severity, ok := severityField(m, "severity")
	if !ok || severity < 1 || severity > 3 {
		return entry{kind: kindRejected}
	}

	flagType := strings.TrimSpace(stringField(m, "flag_type"))
	if flagType == "" {
		flagType = "GENERAL"
	}

	return entry{kind: kindFlag, flag: script.ReviewFlag{
		FlagType: flagType,
		Note:     stringField(m, "note"),
		Severity: severity,
	}}
}

// elementsFromResult decodes the "elements" list out of a parsed response.
// A response without a usable elements key contributes nothing.
func elementsFromResult(parsed json.RawMessage) []script.Element {
	var body struct {
		Elements []any `json:"elements"`
	}
	if err := json.Unmarshal(parsed, &body); err != nil {
		return nil
	}

	var out []script.Element
	for _, raw := range body.Elements {
		if e := normalizeElement(raw); e.kind == kindElement {
			out = append(out, e.element)
		}
	}
	return out
}

// flagsFromResult decodes the "review_flags" list out of a parsed response,
// dropping entries that fail validation without affecting the rest.
func flagsFromResult(parsed json.RawMessage) []script.ReviewFlag {
	var body struct {
		ReviewFlags []any `json:"review_flags"`
	}
	if err := json.Unmarshal(parsed, &body); err != nil {
		return nil
	}

	var out []script.ReviewFlag
	for _, raw := range body.ReviewFlags {
		if e := normalizeFlag(raw); e.kind == kindFlag {
			out = append(out, e.flag)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// countField renders a count as a quantity string, defaulting to "1".
// Models return counts as strings, numbers, or garbage.
func countField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		if v == float64(int64(v)) && v > 0 {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return "1"
}

// severityField coerces a severity value to an integer. JSON numbers arrive
// as float64; some models return digit strings instead.
func severityField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
