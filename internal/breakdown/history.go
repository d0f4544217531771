package breakdown

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"slate/internal/script"
)

// HistoryCatalog is the run-scoped cross-scene reference table mapping
// (category, element name) to the scene that most recently established it.
// It is created empty at run start, owned by the pipeline, and discarded with
// the run. All methods are safe for concurrent use; harvest passes inside a
// scene may run while the catalog is being read.
type HistoryCatalog struct {
	mu sync.Mutex
	// upper-cased category -> upper-cased trimmed name -> scene identifier
	entries map[string]map[string]string
}

// NewHistoryCatalog returns an empty catalog.
func NewHistoryCatalog() *HistoryCatalog {
	return &HistoryCatalog{entries: make(map[string]map[string]string)}
}

// Update upserts every element of a scene. Last write wins for a repeated
// name; entries are never removed.
func (h *HistoryCatalog) Update(sceneNumber string, elements []script.Element) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, el := range elements {
		cat := strings.ToUpper(strings.TrimSpace(el.Category))
		name := NormalizeName(el.Name)
		if cat == "" || name == "" {
			continue
		}
		if h.entries[cat] == nil {
			h.entries[cat] = make(map[string]string)
		}
		h.entries[cat][name] = sceneNumber
	}
}

// Citation returns the scene that last established an element, if any.
func (h *HistoryCatalog) Citation(category, name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byName, ok := h.entries[strings.ToUpper(strings.TrimSpace(category))]
	if !ok {
		return "", false
	}
	scene, ok := byName[NormalizeName(name)]
	return scene, ok
}

// Len returns the number of catalog entries.
func (h *HistoryCatalog) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, byName := range h.entries {
		n += len(byName)
	}
	return n
}

// Render formats the catalog for model context, one category per line:
//
//	CATEGORY PROPS: DUFFEL BAGS (Sc 1), GUNS (Sc 3)
//
// Categories and names are sorted so renders are stable across runs.
func (h *HistoryCatalog) Render() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "CATALOG EMPTY."
	}

	cats := make([]string, 0, len(h.entries))
	for cat := range h.entries {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	lines := make([]string, 0, len(cats))
	for _, cat := range cats {
		byName := h.entries[cat]
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		items := make([]string, 0, len(names))
		for _, name := range names {
			items = append(items, fmt.Sprintf("%s (Sc %s)", name, byName[name]))
		}
		lines = append(lines, fmt.Sprintf("CATEGORY %s: %s", cat, strings.Join(items, ", ")))
	}
	return strings.Join(lines, "\n")
}
