package roadmap

// ProgressKey identifies a checklist item by its section title and the raw
// bullet line.
type ProgressKey struct {
	Section string `json:"section"`
	Item    string `json:"item"`
}

// KeyFor builds the progress key of a bullet inside a section.
func KeyFor(s Section, bullet Line) ProgressKey {
	return ProgressKey{Section: s.Title, Item: bullet.Raw}
}

// Composite is the flat record key used when progress is persisted.
func (k ProgressKey) Composite() string {
	return k.Section + k.Item
}

// Progress maps checklist items to their completion flag.
type Progress map[ProgressKey]bool

// Ensure returns the flag for k, creating an unchecked entry on first sight.
// The second result is true when the entry was created.
func (p Progress) Ensure(k ProgressKey) (bool, bool) {
	if done, ok := p[k]; ok {
		return done, false
	}
	p[k] = false
	return false, true
}

// Encode flattens progress into the persisted record format.
func (p Progress) Encode() map[string]bool {
	flat := make(map[string]bool, len(p))
	for k, done := range p {
		flat[k.Composite()] = done
	}
	return flat
}

// Completed counts checked items.
func (p Progress) Completed() int {
	n := 0
	for _, done := range p {
		if done {
			n++
		}
	}
	return n
}

// DecodeProgress resolves a flat persisted record against the bullets that
// exist in sections. Entries for bullets no longer present are ignored.
func DecodeProgress(flat map[string]bool, sections []Section) Progress {
	p := make(Progress)
	for _, s := range sections {
		for _, b := range s.Bullets() {
			k := KeyFor(s, b)
			if done, ok := flat[k.Composite()]; ok {
				p[k] = done
			}
		}
	}
	return p
}

// Toggle sets the completion flag of k.
func (p Progress) Toggle(k ProgressKey, done bool) {
	p[k] = done
}

// RenameSection moves the entries of s to the keys they have once s is titled
// title.
func (p Progress) RenameSection(s Section, title string) {
	if s.Title == title {
		return
	}
	for _, b := range s.Bullets() {
		old := KeyFor(s, b)
		done, ok := p[old]
		if !ok {
			continue
		}
		delete(p, old)
		p[ProgressKey{Section: title, Item: b.Raw}] = done
	}
}

// HasItem reports whether k names a bullet present in sections.
func HasItem(sections []Section, k ProgressKey) bool {
	for _, s := range sections {
		if s.Title != k.Section {
			continue
		}
		for _, b := range s.Bullets() {
			if b.Raw == k.Item {
				return true
			}
		}
	}
	return false
}
