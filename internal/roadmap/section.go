package roadmap

// Section is the run of lines opened by a subsection heading. Lines that come
// before the first heading form an untitled section with HeadingIndex -1.
type Section struct {
	Title        string `json:"title"`
	HeadingIndex int    `json:"heading_index"`
	Lines        []Line `json:"lines"`
}

// Bullets returns the actionable lines of the section.
func (s Section) Bullets() []Line {
	var bullets []Line
	for _, l := range s.Lines {
		if l.Kind == KindBullet {
			bullets = append(bullets, l)
		}
	}
	return bullets
}

// Editable reports whether the section has a heading line and at least one
// actionable item.
func (s Section) Editable() bool {
	if s.HeadingIndex < 0 {
		return false
	}
	for _, l := range s.Lines {
		if l.Kind == KindBullet {
			return true
		}
	}
	return false
}

// Group does a single pass over classified lines, flushing the open section
// whenever a subsection heading starts a new one.
func Group(lines []Line) []Section {
	var sections []Section
	current := Section{HeadingIndex: -1}

	flush := func() {
		if current.HeadingIndex >= 0 || len(current.Lines) > 0 {
			sections = append(sections, current)
		}
	}

	for _, l := range lines {
		if l.Kind == KindSubheading {
			flush()
			current = Section{Title: l.Text, HeadingIndex: l.Index}
			continue
		}
		current.Lines = append(current.Lines, l)
	}
	flush()

	return sections
}

// Filter keeps only bullets and text lines that carry every selected tag.
// Phase headings stay in place; sections left without visible items are
// dropped. An empty selection returns sections unchanged.
func Filter(sections []Section, selected []string) []Section {
	if len(selected) == 0 {
		return sections
	}

	var out []Section
	for _, s := range sections {
		var kept []Line
		items := 0
		for _, l := range s.Lines {
			if l.Kind == KindHeading {
				kept = append(kept, l)
				continue
			}
			if l.HasAllTags(selected) {
				kept = append(kept, l)
				items++
			}
		}
		if items == 0 {
			continue
		}
		s.Lines = kept
		out = append(out, s)
	}
	return out
}

// FindSection returns the section whose heading sits at line index.
func FindSection(sections []Section, index int) (Section, bool) {
	for _, s := range sections {
		if s.HeadingIndex == index && index >= 0 {
			return s, true
		}
	}
	return Section{}, false
}
