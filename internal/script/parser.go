package script

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// linesPerPage approximates a formatted screenplay page; used to estimate
// scene length in eighths.
const linesPerPage = 54

var (
	// [ \t] rather than \s: with (?m), \s would match newlines and pull the
	// blank line above a slugline into the match, leaving an empty header.
	slugRe        = regexp.MustCompile(`(?m)^[ \t]*(?:\d+[A-Z]*[ \t]+)?(?:INT\.|EXT\.|I/E\.|INT/EXT\.)`)
	sceneNumberRe = regexp.MustCompile(`(\d+[A-Z]*)`)
	headerNumRe   = regexp.MustCompile(`(?i)^\s*(\d+[A-Z]*|[A-Z]+\d+)\b`)
	trailerNumRe  = regexp.MustCompile(`(?i)\b(\d+[A-Z]*|[A-Z]+\d+)\s*$`)
	scenePrefixRe = regexp.MustCompile(`(?i)SCENE|SC\.?\s*`)
)

// lazyTriggers mark sluglines that inherit location/time from the previous
// scene ("INT. VAULT - CONTINUOUS").
var lazyTriggers = []string{"CONTINUOUS", "LATER", "SAME", "FOLLOWING", "MOMENTS"}

var intExtPrefixes = []string{"INT/EXT", "I/E", "INT", "EXT"}

// Parser segments raw screenplay text into Scene records. It keeps the last
// seen header fields so lazy sluglines inherit correctly; use one Parser per
// document.
type Parser struct {
	lastSetName  string
	lastDayNight string
	lastIntExt   string
}

// NewParser returns a fresh Parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadScript reads a script file and returns its plain text. Plain text and
// Final Draft (.fdx) are supported natively; other formats must be converted
// to text upstream.
func LoadScript(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read script: %w", err)
		}
		return string(data), nil
	case ".fdx":
		return extractFDX(path)
	default:
		return "", fmt.Errorf("unsupported script format %q (supported: .txt, .fdx)", filepath.Ext(path))
	}
}

// Split segments full script text into ordered Scene records with header
// metadata and page-length estimates. Text before the first slugline is
// ignored.
func (p *Parser) Split(fullText string) []Scene {
	locs := slugRe.FindAllStringIndex(fullText, -1)
	if len(locs) == 0 {
		return nil
	}

	scenes := make([]Scene, 0, len(locs))
	for i, loc := range locs {
		end := len(fullText)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := fullText[loc[0]:end]

		headerLine, body, _ := strings.Cut(chunk, "\n")
		headerLine = strings.TrimSpace(headerLine)
		body = strings.TrimSpace(body)

		intExt, setName, dayNight := p.parseHeader(headerLine)

		// Page math: line count scaled to eighths, never below 1/8.
		lineCount := len(strings.Split(body, "\n"))
		totalEighths := int(math.Round(float64(lineCount) / linesPerPage * 8))
		if totalEighths < 1 {
			totalEighths = 1
		}

		scenes = append(scenes, Scene{
			Number:       extractSceneNumber(headerLine, len(scenes)+1),
			IntExt:       intExt,
			SetName:      setName,
			DayNight:     dayNight,
			PagesWhole:   totalEighths / 8,
			PagesEighths: totalEighths % 8,
			ScriptText:   body,
		})
	}
	return scenes
}

// parseHeader extracts INT/EXT, set name, and time of day from a slugline,
// applying inheritance for CONTINUOUS/LATER style headers.
func (p *Parser) parseHeader(header string) (intExt, setName, dayNight string) {
	header = headerNumRe.ReplaceAllString(header, "")
	header = trailerNumRe.ReplaceAllString(header, "")
	header = strings.TrimSpace(header)

	upper := strings.ToUpper(header)

	var currentIE string
	words := strings.Fields(upper)
	if len(words) > 0 {
		first := strings.ReplaceAll(words[0], ".", "")
		switch first {
		case "INT", "EXT", "INT/EXT":
			currentIE = first
		case "IE", "I/E":
			currentIE = "INT/EXT"
		case "UNDERWATER", "SPACE", "VIRTUAL":
			currentIE = "INT"
		}
	}

	var currentSet, currentTOD string
	if idx := strings.LastIndex(header, "-"); idx >= 0 {
		currentSet = strings.TrimSpace(header[:idx])
		currentTOD = strings.ToUpper(strings.TrimSpace(header[idx+1:]))
	} else {
		currentSet = header
	}
	for _, pref := range append(append([]string{}, intExtPrefixes...), "UNDERWATER", "SPACE", "VIRTUAL") {
		re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(pref) + `\.?\s*`)
		currentSet = strings.TrimSpace(re.ReplaceAllString(currentSet, ""))
	}

	isLazy := false
	for _, trigger := range lazyTriggers {
		if strings.Contains(upper, trigger) {
			isLazy = true
			break
		}
	}

	intExt = currentIE
	if intExt == "" {
		if isLazy {
			intExt = p.lastIntExt
		} else {
			intExt = "INT"
		}
	}
	setName = currentSet
	if setName == "" {
		if isLazy {
			setName = p.lastSetName
		} else {
			setName = "UNKNOWN SET"
		}
	}
	dayNight = currentTOD
	if dayNight == "" || isLazy {
		if isLazy && p.lastDayNight != "" {
			dayNight = p.lastDayNight
		} else if dayNight == "" {
			dayNight = "DAY"
		}
	}

	p.lastIntExt = intExt
	p.lastSetName = setName
	p.lastDayNight = dayNight
	return intExt, setName, dayNight
}

// extractSceneNumber pulls the scene identifier (e.g. "15A") out of a
// slugline, falling back to the scene's position in the list.
func extractSceneNumber(header string, fallback int) string {
	clean := strings.TrimSpace(scenePrefixRe.ReplaceAllString(header, ""))
	if m := sceneNumberRe.FindString(clean); m != "" {
		return m
	}
	return fmt.Sprintf("%d", fallback)
}
