package breakdown

import (
	"strings"

	"slate/internal/script"
)

// FilterRange bounds a scene list to the inclusive slice between fromScene
// and toScene. Matching is exact and case-insensitive on the trimmed scene
// identifier. When a bound has no match it defaults to the corresponding list
// boundary rather than erroring; fromScene uses its first match, toScene its
// last. Filtering an already-filtered list by the same bounds is idempotent.
//
// The default-to-boundary fallback is deliberate compatibility behavior; a
// stricter "unknown identifier is an error" policy would be the alternative.
func FilterRange(scenes []script.Scene, fromScene, toScene string) []script.Scene {
	if fromScene == "" && toScene == "" {
		return scenes
	}

	from := strings.ToUpper(strings.TrimSpace(fromScene))
	to := strings.ToUpper(strings.TrimSpace(toScene))

	startIdx := 0
	endIdx := len(scenes)
	startFound := false

	for i, s := range scenes {
		num := strings.ToUpper(strings.TrimSpace(s.Number))
		if from != "" && !startFound && num == from {
			startIdx = i
			startFound = true
		}
		if to != "" && num == to {
			endIdx = i + 1
		}
	}

	if startIdx > endIdx {
		return scenes[startIdx:startIdx]
	}
	return scenes[startIdx:endIdx]
}
