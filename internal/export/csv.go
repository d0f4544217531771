package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"slate/internal/script"
)

var csvHeader = []string{
	"Sheet", "Scene", "Int/Ext", "Set", "Day/Night", "Pages",
	"Synopsis", "Elements", "Continuity", "Flags",
}

// WriteCSV renders the review sheet, one row per scene.
func WriteCSV(w io.Writer, scenes []script.Scene) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range scenes {
		row := []string{
			s.SheetNumber,
			s.Number,
			s.IntExt,
			s.SetName,
			s.DayNight,
			s.PageLength(),
			s.Synopsis,
			elementsCell(s.Elements),
			s.ContinuityNotes,
			flagsCell(s.Flags),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write scene %s: %w", s.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the review sheet to a file.
func WriteCSVFile(path string, scenes []script.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, scenes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// elementsCell groups elements by category, categories sorted, names in
// extraction order: "Props: DUFFEL BAGS (3), GUNS | Vehicles: VAN".
func elementsCell(elements []script.Element) string {
	byCat := map[string][]string{}
	for _, el := range elements {
		item := el.Name
		if el.Count != "" && el.Count != "1" {
			item = fmt.Sprintf("%s (%s)", el.Name, el.Count)
		}
		byCat[el.Category] = append(byCat[el.Category], item)
	}

	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	parts := make([]string, 0, len(cats))
	for _, cat := range cats {
		parts = append(parts, fmt.Sprintf("%s: %s", cat, strings.Join(byCat[cat], ", ")))
	}
	return strings.Join(parts, " | ")
}

// flagsCell renders review flags as "[S3] WEAPONRY: firearms on set" lines.
func flagsCell(flags []script.ReviewFlag) string {
	lines := make([]string, 0, len(flags))
	for _, f := range flags {
		lines = append(lines, fmt.Sprintf("[S%d] %s: %s", f.Severity, f.FlagType, f.Note))
	}
	return strings.Join(lines, "\n")
}
