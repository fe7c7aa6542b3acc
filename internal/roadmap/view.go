package roadmap

// Item is a rendered section line. Bullets carry their progress key and state.
type Item struct {
	Line
	Key  *ProgressKey `json:"key,omitempty"`
	Done bool         `json:"done"`
}

// SectionView is a section ready for display.
type SectionView struct {
	Title        string `json:"title"`
	HeadingIndex int    `json:"heading_index"`
	Editable     bool   `json:"editable"`
	Items        []Item `json:"items"`
}

// View is the interactive state derived from a roadmap.
type View struct {
	Sections  []SectionView `json:"sections"`
	Tags      TagSet        `json:"tags"`
	Selected  []string      `json:"selected,omitempty"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	// Created counts progress entries added while rendering.
	Created int `json:"-"`
}

// Render classifies text, applies the tag filter and attaches progress.
// Progress entries for rendered bullets are created lazily in p.
func Render(text string, selected []string, p Progress) View {
	lines := Classify(text)
	all := Group(lines)

	v := View{Tags: CollectTags(lines), Selected: selected}

	for _, s := range all {
		for _, b := range s.Bullets() {
			v.Total++
			if p[KeyFor(s, b)] {
				v.Completed++
			}
		}
	}

	for _, s := range Filter(all, selected) {
		sv := SectionView{
			Title:        s.Title,
			HeadingIndex: s.HeadingIndex,
			Editable:     s.Editable(),
		}
		for _, l := range s.Lines {
			item := Item{Line: l}
			if l.Kind == KindBullet {
				k := KeyFor(s, l)
				done, created := p.Ensure(k)
				if created {
					v.Created++
				}
				item.Key = &k
				item.Done = done
			}
			sv.Items = append(sv.Items, item)
		}
		v.Sections = append(v.Sections, sv)
	}

	return v
}
