package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/skillwise/internal/prompt"
)

var (
	ErrNotEditing   = errors.New("no section is being edited")
	ErrNotAHeading  = errors.New("line is not a section heading")
	ErrEmptyTitle   = errors.New("section title cannot be empty")
	ErrEmptyRewrite = errors.New("model returned an empty section heading")
)

// Requester produces text for a prompt.
type Requester interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Editor owns the roadmap lines and the editing cursor of a session.
// It is either idle or editing exactly one subsection heading.
type Editor struct {
	lines   []string
	editing bool
	cursor  int
}

// NewEditor restores an editor from stored text and cursor. A cursor that no
// longer points at a subsection heading is dropped.
func NewEditor(text string, cursor *int) *Editor {
	e := &Editor{lines: strings.Split(text, "\n")}
	if cursor != nil && e.isHeading(*cursor) {
		e.editing = true
		e.cursor = *cursor
	}
	return e
}

// Text returns the current roadmap text.
func (e *Editor) Text() string {
	return strings.Join(e.lines, "\n")
}

// Cursor returns the edited line index, or nil when idle.
func (e *Editor) Cursor() *int {
	if !e.editing {
		return nil
	}
	c := e.cursor
	return &c
}

// Editing reports the edited line index and whether a section is being edited.
func (e *Editor) Editing() (int, bool) {
	return e.cursor, e.editing
}

// Begin starts editing the section headed at line index.
func (e *Editor) Begin(index int) error {
	if !e.isHeading(index) {
		return fmt.Errorf("line %d: %w", index, ErrNotAHeading)
	}
	e.editing = true
	e.cursor = index
	return nil
}

// Save rewrites the edited heading in place and returns to idle.
func (e *Editor) Save(title string) error {
	if !e.editing {
		return ErrNotEditing
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	e.lines[e.cursor] = "**" + title + "**"
	e.editing = false
	return nil
}

// Regenerate asks the model for a new heading scoped to the edited section and
// the target role. On failure the editor keeps editing the same line.
func (e *Editor) Regenerate(ctx context.Context, r Requester, role string) error {
	if !e.editing {
		return ErrNotEditing
	}

	section, ok := FindSection(Group(Classify(e.Text())), e.cursor)
	if !ok {
		return fmt.Errorf("line %d: %w", e.cursor, ErrNotAHeading)
	}
	steps := make([]string, 0, len(section.Lines))
	for _, l := range section.Lines {
		steps = append(steps, l.Raw)
	}

	out, err := r.Generate(ctx, prompt.Section(role, section.Title, steps))
	if err != nil {
		return fmt.Errorf("regenerate section %q: %w", section.Title, err)
	}

	title := headingFromResponse(out)
	if title == "" {
		return ErrEmptyRewrite
	}
	e.lines[e.cursor] = "**" + title + "**"
	e.editing = false
	return nil
}

// Cancel returns to idle without touching the text.
func (e *Editor) Cancel() {
	e.editing = false
	e.cursor = 0
}

func (e *Editor) isHeading(index int) bool {
	if index < 0 || index >= len(e.lines) {
		return false
	}
	return isSubheading(strings.TrimSpace(e.lines[index]))
}

// headingFromResponse keeps the first non-blank line of a model reply with any
// heading markers removed, so the rewritten line stays a single heading.
func headingFromResponse(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "## ")
		line = strings.TrimSpace(strings.Trim(line, "*"))
		if line != "" {
			return line
		}
	}
	return ""
}
