package breakdown

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"slate/internal/providers"
	"slate/internal/script"
)

// dispatch keys prompts by the task line each template opens with.
func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "Perform a technical breakdown"):
		return "core"
	case strings.Contains(prompt, "Technical element pass"):
		return "tech"
	case strings.Contains(prompt, "Script Supervisor Matchmaker"):
		return "matchmaker"
	case strings.Contains(prompt, "Script Supervisor Observer"):
		return "observer"
	case strings.Contains(prompt, "Safety & Risk Scan"):
		return "flags"
	default:
		return "unknown"
	}
}

func emptyListFor(kind string) json.RawMessage {
	switch kind {
	case "matchmaker", "observer":
		return json.RawMessage(`{"continuity_notes":[]}`)
	case "flags":
		return json.RawMessage(`{"review_flags":[]}`)
	default:
		return json.RawMessage(`{"elements":[]}`)
	}
}

func bankScenes() []script.Scene {
	return []script.Scene{
		{Number: "1", IntExt: "INT", SetName: "FIRST NATIONAL BANK", DayNight: "DAY", ScriptText: "JAX drops the duffel bags."},
		{Number: "2", IntExt: "EXT", SetName: "BANK PARKING LOT", DayNight: "DAY", ScriptText: "The bags go into the van."},
	}
}

func TestPipelineRun_MergesPasses(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		switch promptKind(req.Prompt) {
		case "core":
			return json.RawMessage(`{
				"synopsis": "Crew robs the bank",
				"description": "Jax and crew empty the vault.",
				"elements": [{"name":"JAX","category":"Cast Members"}]
			}`), nil
		case "tech":
			if strings.Contains(req.Prompt, "Set & Vehicles") {
				return json.RawMessage(`{"elements":[{"name":"getaway van","category":"Vehicles"}]}`), nil
			}
			if strings.Contains(req.Prompt, "Props & Effects") {
				return json.RawMessage(`{"elements":[
					{"name":"DUFFEL BAGS","category":"Props","count":"3"},
					{"name":"GUNS","category":"Props"}
				]}`), nil
			}
			return json.RawMessage(`{"elements":[]}`), nil
		}
		return nil, fmt.Errorf("unexpected prompt")
	}

	p := New(client, Config{Workers: 4}, nil)
	result := p.Run(context.Background(), bankScenes()[:1], RunOptions{})

	if result.Enriched != 1 || result.Skipped != 0 {
		t.Fatalf("enriched=%d skipped=%d, want 1/0", result.Enriched, result.Skipped)
	}
	scene := result.Scenes[0]
	if scene.Synopsis != "Crew robs the bank" {
		t.Errorf("synopsis = %q", scene.Synopsis)
	}

	counts := map[string]int{}
	for _, el := range scene.Elements {
		counts[el.Category+"/"+el.Name]++
	}
	for _, want := range []string{"Cast Members/JAX", "Vehicles/GETAWAY VAN", "Props/DUFFEL BAGS", "Props/GUNS"} {
		if counts[want] != 1 {
			t.Errorf("element %q appears %d times, want 1", want, counts[want])
		}
	}

	if scene, ok := result.Catalog.Citation("Props", "DUFFEL BAGS"); !ok || scene != "1" {
		t.Errorf("catalog citation = %q, %v; want Sc 1", scene, ok)
	}
	if p.State() != StateDone {
		t.Errorf("state = %s, want %s", p.State(), StateDone)
	}
}

func TestPipelineRun_TruncatesSynopsis(t *testing.T) {
	long := strings.Repeat("x", script.MaxSynopsisLen+40)
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		if promptKind(req.Prompt) == "core" {
			return json.RawMessage(fmt.Sprintf(`{"synopsis":%q,"elements":[]}`, long)), nil
		}
		return emptyListFor(promptKind(req.Prompt)), nil
	}

	result := New(client, Config{}, nil).Run(context.Background(), bankScenes()[:1], RunOptions{})
	if len(result.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(result.Scenes))
	}
	if got := len([]rune(result.Scenes[0].Synopsis)); got != script.MaxSynopsisLen {
		t.Errorf("synopsis length = %d, want %d", got, script.MaxSynopsisLen)
	}
}

func TestPipelineRun_DropsSceneOnCoreFailure(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		kind := promptKind(req.Prompt)
		if kind == "core" && strings.Contains(req.Prompt, "Scene 1") {
			return nil, fmt.Errorf("model unavailable")
		}
		if kind == "core" {
			return json.RawMessage(`{"synopsis":"Escape","elements":[{"name":"VAN","category":"Vehicles"}]}`), nil
		}
		return emptyListFor(kind), nil
	}

	result := New(client, Config{Workers: 2}, nil).Run(context.Background(), bankScenes(), RunOptions{})

	if result.Requested != 2 || result.Enriched != 1 || result.Skipped != 1 {
		t.Fatalf("requested=%d enriched=%d skipped=%d, want 2/1/1", result.Requested, result.Enriched, result.Skipped)
	}
	for _, s := range result.Scenes {
		if s.Number == "1" {
			t.Error("dropped scene 1 present in output")
		}
	}
	if _, ok := result.Catalog.Citation("Vehicles", "VAN"); !ok {
		t.Error("surviving scene's elements missing from catalog")
	}
}

func TestPipelineRun_ContinuitySeesPriorScenesOnly(t *testing.T) {
	var mu sync.Mutex
	histories := map[string]string{}

	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		kind := promptKind(req.Prompt)
		switch kind {
		case "core":
			return json.RawMessage(`{"synopsis":"Beat","elements":[{"name":"DUFFEL BAGS","category":"Props"}]}`), nil
		case "matchmaker":
			sceneNum := "1"
			if strings.Contains(req.Prompt, "Scene 2") {
				sceneNum = "2"
			}
			mu.Lock()
			histories[sceneNum] = req.Prompt
			mu.Unlock()
			if sceneNum == "2" {
				return json.RawMessage(`{"continuity_notes":[
					{"item_name":"BAGS","resolved_specificity":"DUFFEL BAGS","note":"Use Scene 1 duffel bags"}
				]}`), nil
			}
			return json.RawMessage(`{"continuity_notes":[]}`), nil
		default:
			return emptyListFor(kind), nil
		}
	}

	cfg := Config{Workers: 2, UseContinuity: true}
	result := New(client, cfg, nil).Run(context.Background(), bankScenes(), RunOptions{})

	if len(result.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(result.Scenes))
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(histories["1"], "CATALOG EMPTY.") {
		t.Error("first scene's matchmaker should see an empty catalog")
	}
	if !strings.Contains(histories["2"], "DUFFEL BAGS (Sc 1)") {
		t.Error("second scene's matchmaker missing scene 1 catalog entry")
	}
	if !strings.Contains(result.Scenes[1].ContinuityNotes, "BAGS -> DUFFEL BAGS: Use Scene 1 duffel bags") {
		t.Errorf("continuity notes = %q", result.Scenes[1].ContinuityNotes)
	}
}

func TestPipelineRun_ContinuityDegradesOnFailure(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		kind := promptKind(req.Prompt)
		switch kind {
		case "core":
			return json.RawMessage(`{"synopsis":"Beat","elements":[]}`), nil
		case "matchmaker":
			return nil, fmt.Errorf("timeout")
		case "observer":
			return json.RawMessage(`{"continuity_notes":[
				{"item":"VAULT DOOR","note":"Blown open"}
			]}`), nil
		}
		return emptyListFor(kind), nil
	}

	cfg := Config{UseContinuity: true}
	result := New(client, cfg, nil).Run(context.Background(), bankScenes()[:1], RunOptions{})

	if len(result.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(result.Scenes))
	}
	notes := result.Scenes[0].ContinuityNotes
	if !strings.Contains(notes, "VAULT DOOR -> N/A: Blown open") {
		t.Errorf("observer note missing: %q", notes)
	}
}

func TestPipelineRun_FlagStageValidatesSeverity(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		kind := promptKind(req.Prompt)
		switch kind {
		case "core":
			return json.RawMessage(`{"synopsis":"Shootout","elements":[{"name":"GUNS","category":"Props"}]}`), nil
		case "flags":
			if !strings.Contains(req.Prompt, "- Props: GUNS") {
				t.Errorf("flag prompt missing element summary:\n%s", req.Prompt)
			}
			return json.RawMessage(`{"review_flags":[
				{"flag_type":"WEAPONRY","note":"firearms on set","severity":3},
				{"flag_type":"BOGUS","note":"invalid","severity":4}
			]}`), nil
		}
		return emptyListFor(kind), nil
	}

	cfg := Config{UseFlags: true}
	result := New(client, cfg, nil).Run(context.Background(), bankScenes()[:1], RunOptions{})

	if len(result.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(result.Scenes))
	}
	flags := result.Scenes[0].Flags
	if len(flags) != 1 {
		t.Fatalf("flags = %#v, want exactly the severity-3 flag", flags)
	}
	if flags[0].FlagType != "WEAPONRY" || flags[0].Severity != 3 {
		t.Errorf("flag = %+v", flags[0])
	}
}

func TestPipelineRun_Cancellation(t *testing.T) {
	client := providers.NewMockClient()
	client.ResponseJSON = json.RawMessage(`{"synopsis":"x","elements":[]}`)

	p := New(client, Config{}, nil)
	p.Stop()
	result := p.Run(context.Background(), bankScenes(), RunOptions{})

	if !result.Cancelled {
		t.Error("expected cancelled result")
	}
	if result.Enriched != 0 || len(result.Scenes) != 0 {
		t.Errorf("enriched=%d scenes=%d, want 0/0", result.Enriched, len(result.Scenes))
	}
	if client.RequestCount() != 0 {
		t.Errorf("requests = %d, want 0", client.RequestCount())
	}
}

func TestPipelineRun_CancellationFinishesCurrentScene(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	kinds := map[string]int{}

	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		kind := promptKind(req.Prompt)
		mu.Lock()
		kinds[kind]++
		mu.Unlock()

		switch kind {
		case "core":
			// Cancellation arriving mid-scene must not abort the scene's
			// remaining passes.
			cancel()
			return json.RawMessage(`{"synopsis":"Heist","elements":[{"name":"GUNS","category":"Props"}]}`), nil
		case "flags":
			return json.RawMessage(`{"review_flags":[{"flag_type":"WEAPONRY","note":"guns","severity":2}]}`), nil
		}
		return emptyListFor(kind), nil
	}

	cfg := Config{Workers: 2, UseFlags: true}
	result := New(client, cfg, nil).Run(ctx, bankScenes(), RunOptions{})

	if !result.Cancelled {
		t.Error("expected cancelled result")
	}
	if result.Enriched != 1 || result.Skipped != 0 {
		t.Fatalf("enriched=%d skipped=%d, want 1/0", result.Enriched, result.Skipped)
	}

	mu.Lock()
	defer mu.Unlock()
	if kinds["core"] != 1 || kinds["tech"] != 3 || kinds["flags"] != 1 {
		t.Errorf("request counts = %v, want core=1 tech=3 flags=1", kinds)
	}
	if len(result.Scenes[0].Flags) != 1 {
		t.Errorf("flag scan result lost: %+v", result.Scenes[0].Flags)
	}
}

func TestPipelineRun_WorkerBound(t *testing.T) {
	var inFlight, peak atomic.Int64

	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)

		if promptKind(req.Prompt) == "core" {
			return json.RawMessage(`{"synopsis":"x","elements":[]}`), nil
		}
		return emptyListFor(promptKind(req.Prompt)), nil
	}

	cfg := Config{Workers: 1, UseContinuity: true, UseFlags: true}
	New(client, cfg, nil).Run(context.Background(), bankScenes()[:1], RunOptions{})

	// core + 3 tech + matchmaker + observer + flags
	if client.RequestCount() != 7 {
		t.Errorf("requests = %d, want 7", client.RequestCount())
	}
	if got := peak.Load(); got > 1 {
		t.Errorf("concurrent requests peaked at %d with 1 worker", got)
	}
}

func TestPipelineRun_ProgressCheckpoints(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		if promptKind(req.Prompt) == "core" {
			return json.RawMessage(`{"synopsis":"x","elements":[]}`), nil
		}
		return emptyListFor(promptKind(req.Prompt)), nil
	}

	var mu sync.Mutex
	var seen []float64
	opts := RunOptions{
		Progress: func(progress float64, totalScenes int) {
			mu.Lock()
			seen = append(seen, progress)
			mu.Unlock()
			if totalScenes != 2 {
				t.Errorf("totalScenes = %d, want 2", totalScenes)
			}
		},
	}

	New(client, Config{}, nil).Run(context.Background(), bankScenes(), opts)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 8 {
		t.Fatalf("got %d checkpoints, want 8: %v", len(seen), seen)
	}
	want := []float64{0.1, 0.25, 0.4, 0.5, 0.6, 0.75, 0.9, 1.0}
	for i := range want {
		if diff := seen[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("checkpoint %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestPipelineRun_RangeOption(t *testing.T) {
	client := providers.NewMockClient()
	client.Handler = func(req *providers.GenerateRequest) (json.RawMessage, error) {
		if promptKind(req.Prompt) == "core" {
			return json.RawMessage(`{"synopsis":"x","elements":[]}`), nil
		}
		return emptyListFor(promptKind(req.Prompt)), nil
	}

	result := New(client, Config{}, nil).Run(context.Background(), bankScenes(), RunOptions{
		FromScene: "2",
	})

	if result.Requested != 1 || len(result.Scenes) != 1 || result.Scenes[0].Number != "2" {
		t.Fatalf("requested=%d scenes=%v", result.Requested, numbersOf(result.Scenes))
	}
}
