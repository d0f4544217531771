// Package script holds the screenplay data model and the segmentation
// boundary that turns raw script text into ordered Scene records ready for
// breakdown.
package script

import (
	"fmt"
	"strconv"
)

// Categories is the fixed production-category set used for element
// extraction, aligned with scheduling-software import conventions.
var Categories = []string{
	"Cast Members", "Background Actors", "Stunts", "Vehicles", "Props",
	"Camera", "Special Effects", "Wardrobe", "Makeup/Hair", "Animals",
	"Animal Wrangler", "Music", "Sound", "Art Department", "Set Dressing",
	"Greenery", "Special Equipment", "Security", "Additional Labor",
	"Visual Effects", "Mechanical Effects", "Miscellaneous", "Notes",
}

// SourceType tracks where an element came from.
type SourceType string

const (
	SourceExplicit SourceType = "explicit"
	SourceImplied  SourceType = "implied"
)

// MaxSynopsisLen caps the model-written synopsis.
const MaxSynopsisLen = 150

// Element is one production item attached to a scene.
type Element struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Count      string     `json:"count"`
	Source     SourceType `json:"source,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

// ReviewFlag is a severity-tagged risk call-out for human review.
// Severity is 1 (high cost/prep) to 3 (hard legal/safety requirement).
type ReviewFlag struct {
	FlagType string `json:"flag_type"`
	Note     string `json:"note"`
	Severity int    `json:"severity"`
}

// Scene is the breakdown data for one script scene. The segmenter fills the
// header fields and text; the pipeline enriches synopsis, description,
// elements, flags, and continuity notes.
type Scene struct {
	SheetNumber string `json:"sheet_number,omitempty"`
	Number      string `json:"scene_number"`
	IntExt      string `json:"int_ext"`
	SetName     string `json:"set_name"`
	DayNight    string `json:"day_night"`

	// Page length as whole pages plus eighths, always at least 1/8 total.
	PagesWhole   int `json:"pages_whole"`
	PagesEighths int `json:"pages_eighths"`

	ScriptText  string `json:"script_text"`
	Synopsis    string `json:"synopsis,omitempty"`
	Description string `json:"description,omitempty"`

	Elements        []Element    `json:"elements,omitempty"`
	Flags           []ReviewFlag `json:"flags,omitempty"`
	ContinuityNotes string       `json:"continuity_notes,omitempty"`
}

// PageLength renders the page count in the industry "N M/8" form.
func (s *Scene) PageLength() string {
	switch {
	case s.PagesWhole > 0 && s.PagesEighths > 0:
		return fmt.Sprintf("%d %d/8", s.PagesWhole, s.PagesEighths)
	case s.PagesWhole > 0:
		return strconv.Itoa(s.PagesWhole)
	default:
		return fmt.Sprintf("%d/8", s.PagesEighths)
	}
}
