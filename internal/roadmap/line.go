// Package roadmap turns generated roadmap text into typed lines and sections,
// and tracks per-item progress and section editing on top of them.
package roadmap

import (
	"fmt"
	"strings"
)

// LineKind is the syntactic type of a roadmap line.
type LineKind int

const (
	KindText LineKind = iota
	KindHeading
	KindSubheading
	KindBullet
)

var kindNames = map[LineKind]string{
	KindText:       "text",
	KindHeading:    "heading",
	KindSubheading: "subheading",
	KindBullet:     "bullet",
}

func (k LineKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one classified, non-blank roadmap line. Index is the position of the
// line in the original text, so blank lines still occupy an index.
type Line struct {
	Index  int      `json:"index"`
	Kind   LineKind `json:"kind"`
	Raw    string   `json:"raw"`
	Text   string   `json:"text"`
	Tags   []string `json:"tags,omitempty"`
	Nested bool     `json:"nested,omitempty"`
}

// Classify splits text into lines and classifies each non-blank one.
// Unrecognised shapes become KindText; classification never fails.
func Classify(text string) []Line {
	rawLines := strings.Split(text, "\n")
	lines := make([]Line, 0, len(rawLines))
	for i, raw := range rawLines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		line := ClassifyLine(i, trimmed)
		if line.Kind == KindBullet && raw[0] != '*' {
			line.Nested = true
		}
		lines = append(lines, line)
	}
	return lines
}

// ClassifyLine types a single trimmed line by its prefix.
func ClassifyLine(index int, line string) Line {
	l := Line{Index: index, Kind: KindText, Raw: line, Text: line}
	switch {
	case strings.HasPrefix(line, "## "):
		l.Kind = KindHeading
		l.Text = strings.TrimSpace(line[3:])
	case isSubheading(line):
		l.Kind = KindSubheading
		l.Text = strings.TrimSpace(line[2 : len(line)-2])
	case strings.HasPrefix(line, "* "):
		l.Kind = KindBullet
		l.Text, l.Tags = ExtractTags(line)
	}
	return l
}

func isSubheading(line string) bool {
	return len(line) >= 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**")
}

// HasAllTags reports whether the line carries every selected tag. Matching is
// exact and case-sensitive.
func (l Line) HasAllTags(selected []string) bool {
	for _, want := range selected {
		found := false
		for _, tag := range l.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
