package breakdown

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"slate/internal/providers"
	"slate/internal/script"
)

// Config is the immutable per-run pipeline configuration.
type Config struct {
	// Workers bounds concurrent in-flight generation requests (>= 1).
	Workers int

	// Temperature is passed to every generation request.
	Temperature float64

	// Conservative restricts extraction to items explicitly in the text.
	Conservative bool

	// ExtractImplied asks passes to also mark items the text implies.
	ExtractImplied bool

	// UseContinuity enables the per-scene continuity reconciler.
	UseContinuity bool

	// UseFlags enables the per-scene safety flag scan.
	UseFlags bool

	// Routes overrides the static category-to-pass table (nil = default).
	Routes map[string]Pass
}

// State tracks pipeline progress through a run.
type State string

const (
	StateIdle          State = "idle"
	StateFiltering     State = "filtering"
	StateHarvesting    State = "harvesting"
	StateContinuity    State = "continuity"
	StateHistoryUpdate State = "history_update"
	StateFlagging      State = "flagging"
	StateDone          State = "done"
)

// ProgressFunc receives four checkpoints per scene at fractional offsets
// 0.2/0.5/0.8/1.0 of that scene's position in the total count, as an overall
// run fraction in (0, 1].
type ProgressFunc func(progress float64, totalScenes int)

// RunOptions bounds and observes a single run.
type RunOptions struct {
	// Categories to extract. Empty selects the full category set.
	Categories []string

	// FromScene/ToScene bound the run to an inclusive scene-identifier
	// slice. See FilterRange for matching semantics.
	FromScene string
	ToScene   string

	// Progress, when set, receives per-scene checkpoints.
	Progress ProgressFunc
}

// RunResult is the outcome of one run. Scenes dropped at harvesting are
// simply absent; the counts report enriched versus skipped with no further
// distinction.
type RunResult struct {
	Scenes    []script.Scene
	Catalog   *HistoryCatalog
	Requested int
	Enriched  int
	Skipped   int
	Cancelled bool
}

// Pipeline orchestrates the per-scene breakdown stages. A Pipeline is meant
// for a single run; create a new one per run so cancellation and state never
// leak across runs.
type Pipeline struct {
	client providers.Client
	cfg    Config
	logger *slog.Logger
	sem    *semaphore.Weighted

	cancelled atomic.Bool
	state     atomic.Value // State
}

// New creates a pipeline around a model client.
func New(client providers.Client, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "pipeline"),
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
	}
	p.state.Store(StateIdle)
	return p
}

// Stop requests cooperative cancellation. The flag is checked once at the
// start of each scene; a scene already being processed runs to completion and
// in-flight requests are never hard-aborted.
func (p *Pipeline) Stop() {
	p.cancelled.Store(true)
}

// State returns the pipeline's current stage.
func (p *Pipeline) State() State {
	return p.state.Load().(State)
}

// Run processes the filtered scene list through harvest, continuity, history
// update, and flag stages, strictly one scene at a time. Scenes whose core
// pass fails are dropped; every other failure degrades to partial data. Run
// never panics or returns an error: all failure paths resolve to typed
// empty/partial values in the result.
//
// Cancellation (Stop or ctx) is scene-boundary granular: the scene being
// processed when it arrives still finishes all its stages.
func (p *Pipeline) Run(ctx context.Context, scenes []script.Scene, opts RunOptions) *RunResult {
	p.state.Store(StateFiltering)
	active := FilterRange(scenes, opts.FromScene, opts.ToScene)

	categories := opts.Categories
	if len(categories) == 0 {
		categories = script.Categories
	}
	routed := routeCategories(categories, p.cfg.Routes)

	total := len(active)
	result := &RunResult{
		Catalog:   NewHistoryCatalog(),
		Requested: total,
	}

	p.logger.Info("run started",
		"scenes", total,
		"workers", p.cfg.Workers,
		"continuity", p.cfg.UseContinuity,
		"flags", p.cfg.UseFlags)

	checkpoint := func(idx int, offset float64) {
		if opts.Progress != nil {
			opts.Progress((float64(idx)+offset)/float64(total), total)
		}
	}

	for i := range active {
		if p.cancelled.Load() || ctx.Err() != nil {
			result.Cancelled = true
			p.logger.Info("run cancelled", "completed_scenes", i)
			break
		}

		// Enrich a copy; the input list is never partially mutated.
		scene := active[i]
		logger := p.logger.With("scene", scene.Number)
		logger.Info("processing scene", "position", i+1, "total", total)

		// A scene that has started runs to completion: its requests are
		// detached from run cancellation so in-flight work is never
		// hard-aborted. The boundary check above is the only stop point.
		sceneCtx := context.WithoutCancel(ctx)

		p.state.Store(StateHarvesting)
		if !p.harvestScene(sceneCtx, &scene, routed) {
			result.Skipped++
			checkpoint(i, 1.0)
			continue
		}
		checkpoint(i, 0.2)

		p.state.Store(StateContinuity)
		if p.cfg.UseContinuity {
			// Render before this scene's own elements enter the catalog:
			// continuity resolves against previously established items.
			scene.ContinuityNotes = p.continuityNotes(sceneCtx, &scene, result.Catalog.Render())
		}
		checkpoint(i, 0.5)

		p.state.Store(StateHistoryUpdate)
		result.Catalog.Update(scene.Number, scene.Elements)
		checkpoint(i, 0.8)

		p.state.Store(StateFlagging)
		if p.cfg.UseFlags {
			scene.Flags = p.scanFlags(sceneCtx, &scene)
			if len(scene.Flags) > 0 {
				logger.Info("review flags found", "count", len(scene.Flags))
			}
		}
		checkpoint(i, 1.0)

		result.Scenes = append(result.Scenes, scene)
		result.Enriched++
	}

	p.state.Store(StateDone)
	p.logger.Info("run complete",
		"requested", result.Requested,
		"enriched", result.Enriched,
		"skipped", result.Skipped,
		"cancelled", result.Cancelled)
	return result
}

// generate issues one generation request gated by the shared worker limiter
// and returns the parsed JSON, or nil when the call failed in any way.
func (p *Pipeline) generate(ctx context.Context, prompt string, schema json.RawMessage) json.RawMessage {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	defer p.sem.Release(1)

	result, err := p.client.Generate(ctx, &providers.GenerateRequest{
		Prompt:      prompt,
		System:      systemPrompt,
		Temperature: p.cfg.Temperature,
		Schema:      schema,
	})
	if err != nil || result.Failed() {
		return nil
	}
	return result.ParsedJSON
}
