// Package breakdown implements the multi-pass extraction pipeline that turns
// segmented scenes into an enriched production breakdown by querying a
// generative model and reconciling its partial answers.
package breakdown

// Pass identifies one departmental generation request.
type Pass string

const (
	// PassCore extracts cast, background, stunts, and the narrative summary.
	// It is mandatory: a scene whose core pass fails is dropped.
	PassCore Pass = "core"
	// PassSet covers vehicles, builds, greenery, dressing, and mechanical rigs.
	PassSet Pass = "set"
	// PassAction covers props, effects, wardrobe, makeup, animals, labor, VFX.
	PassAction Pass = "action"
	// PassGear covers camera, music, sound, and specialized equipment.
	PassGear Pass = "gear"
)

// technicalPasses are the optional concurrent passes issued after core.
var technicalPasses = []Pass{PassSet, PassAction, PassGear}

// DefaultRoutes is the static category-to-pass table. Categories absent from
// the table ("Security", "Notes" - human-entry only) are silently excluded
// from every pass.
var DefaultRoutes = map[string]Pass{
	"Cast Members":      PassCore,
	"Background Actors": PassCore,
	"Stunts":            PassCore,

	"Vehicles":           PassSet,
	"Art Department":     PassSet,
	"Greenery":           PassSet,
	"Set Dressing":       PassSet,
	"Mechanical Effects": PassSet,

	"Props":            PassAction,
	"Special Effects":  PassAction,
	"Wardrobe":         PassAction,
	"Makeup/Hair":      PassAction,
	"Animals":          PassAction,
	"Animal Wrangler":  PassAction,
	"Additional Labor": PassAction,
	"Visual Effects":   PassAction,

	"Camera":            PassGear,
	"Music":             PassGear,
	"Sound":             PassGear,
	"Special Equipment": PassGear,
	"Miscellaneous":     PassGear,
}

// routeCategories splits the user-selected categories into disjoint per-pass
// subsets, preserving selection order within each pass.
func routeCategories(selected []string, routes map[string]Pass) map[Pass][]string {
	if routes == nil {
		routes = DefaultRoutes
	}
	out := make(map[Pass][]string, 4)
	for _, cat := range selected {
		pass, ok := routes[cat]
		if !ok {
			continue
		}
		out[pass] = append(out[pass], cat)
	}
	return out
}
