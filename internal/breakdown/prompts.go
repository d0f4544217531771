package breakdown

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"slate/internal/script"
)

//go:embed templates/system.tmpl
var systemPrompt string

//go:embed templates/core.tmpl
var corePromptTmpl string

//go:embed templates/tech.tmpl
var techPromptTmpl string

//go:embed templates/matchmaker.tmpl
var matchmakerPromptTmpl string

//go:embed templates/observer.tmpl
var observerPromptTmpl string

//go:embed templates/flags.tmpl
var flagsPromptTmpl string

var (
	coreTemplate       = template.Must(template.New("core").Parse(corePromptTmpl))
	techTemplate       = template.Must(template.New("tech").Parse(techPromptTmpl))
	matchmakerTemplate = template.Must(template.New("matchmaker").Parse(matchmakerPromptTmpl))
	observerTemplate   = template.Must(template.New("observer").Parse(observerPromptTmpl))
	flagsTemplate      = template.Must(template.New("flags").Parse(flagsPromptTmpl))
)

// passLabels name the technical passes in prompts and logs.
var passLabels = map[Pass]string{
	PassSet:    "Set & Vehicles",
	PassAction: "Props & Effects",
	PassGear:   "Technical Gear",
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// Templates are embedded and parsed at init; execution over plain
		// struct data cannot realistically fail. Fall back to raw text.
		return t.Root.String()
	}
	return buf.String()
}

// corePrompt builds the mandatory narrative pass prompt.
func corePrompt(scene *script.Scene, categories []string, conservative, implied bool) string {
	return render(coreTemplate, struct {
		SceneNumber  string
		IntExt       string
		SetName      string
		DayNight     string
		Categories   string
		Conservative bool
		Implied      bool
		ScriptText   string
	}{
		SceneNumber:  scene.Number,
		IntExt:       scene.IntExt,
		SetName:      scene.SetName,
		DayNight:     scene.DayNight,
		Categories:   strings.Join(categories, ", "),
		Conservative: conservative,
		Implied:      implied,
		ScriptText:   scene.ScriptText,
	})
}

// techPrompt builds one technical pass prompt. Technical passes read the
// core-pass description, not the raw scene text.
func techPrompt(scene *script.Scene, pass Pass, categories []string, conservative, implied bool) string {
	return render(techTemplate, struct {
		SceneNumber  string
		Label        string
		Categories   string
		Conservative bool
		Implied      bool
		SceneText    string
	}{
		SceneNumber:  scene.Number,
		Label:        passLabels[pass],
		Categories:   strings.Join(categories, ", "),
		Conservative: conservative,
		Implied:      implied,
		SceneText:    scene.Description,
	})
}

// matchmakerPrompt maps generic in-scene nouns to prior catalog items.
func matchmakerPrompt(scene *script.Scene, historySummary string) string {
	return render(matchmakerTemplate, struct {
		SceneNumber string
		History     string
		ScriptText  string
	}{
		SceneNumber: scene.Number,
		History:     historySummary,
		ScriptText:  scene.ScriptText,
	})
}

// observerPrompt detects physical state changes, with no history input.
func observerPrompt(scene *script.Scene) string {
	return render(observerTemplate, struct {
		SceneNumber string
		ScriptText  string
	}{
		SceneNumber: scene.Number,
		ScriptText:  scene.ScriptText,
	})
}

// flagPrompt builds the safety/risk scan prompt.
func flagPrompt(scene *script.Scene, elementsSummary string) string {
	return render(flagsTemplate, struct {
		SceneNumber string
		ScriptText  string
		Elements    string
	}{
		SceneNumber: scene.Number,
		ScriptText:  scene.ScriptText,
		Elements:    elementsSummary,
	})
}
