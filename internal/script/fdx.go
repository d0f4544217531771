package script

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Final Draft documents store each script line as a Paragraph of Text runs.
type fdxDocument struct {
	Content fdxContent `xml:"Content"`
}

type fdxContent struct {
	Paragraphs []fdxParagraph `xml:"Paragraph"`
}

type fdxParagraph struct {
	Type  string   `xml:"Type,attr"`
	Texts []string `xml:"Text"`
}

// extractFDX parses a Final Draft XML file into plain script text, one
// paragraph per line.
func extractFDX(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read fdx file: %w", err)
	}

	var doc fdxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse fdx xml: %w", err)
	}

	lines := make([]string, 0, len(doc.Content.Paragraphs))
	for _, para := range doc.Content.Paragraphs {
		lines = append(lines, strings.Join(para.Texts, ""))
	}
	return strings.Join(lines, "\n"), nil
}
