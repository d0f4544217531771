package breakdown

import (
	"context"
	"encoding/json"
	"sync"

	"slate/internal/script"
)

// harvestScene runs the mandatory core pass and the optional technical
// passes for one scene, merging all surviving elements into the scene.
// Returns false when the core pass yields no parsable result, in which case
// the scene must be dropped from the run's output.
func (p *Pipeline) harvestScene(ctx context.Context, scene *script.Scene, routed map[Pass][]string) bool {
	logger := p.logger.With("scene", scene.Number)

	// Core pass gates everything: synopsis, description, and the seed
	// element list come from it.
	parsed := p.generate(ctx, corePrompt(scene, routed[PassCore], p.cfg.Conservative, p.cfg.ExtractImplied), harvestSchema)
	if parsed == nil {
		logger.Error("core pass failed, dropping scene")
		return false
	}

	var summary struct {
		Synopsis    string `json:"synopsis"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(parsed, &summary)
	scene.Synopsis = truncate(summary.Synopsis, script.MaxSynopsisLen)
	scene.Description = summary.Description

	elements := elementsFromResult(parsed)

	// Technical passes run concurrently, each independently gated by the
	// shared worker limiter. A failed pass contributes nothing; results are
	// concatenated without cross-pass deduplication.
	techElements := make([][]script.Element, len(technicalPasses))
	var wg sync.WaitGroup
	for i, pass := range technicalPasses {
		cats := routed[pass]
		if len(cats) == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, pass Pass, cats []string) {
			defer wg.Done()
			parsed := p.generate(ctx, techPrompt(scene, pass, cats, p.cfg.Conservative, p.cfg.ExtractImplied), harvestSchema)
			if parsed == nil {
				logger.Warn("technical pass failed", "pass", pass)
				return
			}
			techElements[i] = elementsFromResult(parsed)
		}(i, pass, cats)
	}
	wg.Wait()

	for _, els := range techElements {
		elements = append(elements, els...)
	}
	scene.Elements = elements

	logger.Debug("scene harvested", "elements", len(elements))
	return true
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
