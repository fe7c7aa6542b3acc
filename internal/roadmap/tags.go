package roadmap

import (
	"sort"
	"strings"
)

// FallbackTags is offered to the filter UI when the roadmap carries no tags at all.
var FallbackTags = []string{"Advanced", "Beginner-Friendly", "Coursera", "Udemy", "YouTube"}

// TagSet is the list of tags a roadmap can be filtered by.
type TagSet struct {
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback"`
}

// ExtractTags splits a bullet line into its text and trailing tag list.
// Two forms are recognised: "<text> - t1, t2" (split on the last " - ") and
// "<text> [t1, t2]" (first '[' up to the next ']'). A tag list needs a comma;
// without one the whole line is text and no tags are returned.
func ExtractTags(line string) (string, []string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "*"))

	if i := strings.LastIndex(body, " - "); i >= 0 {
		if tags := splitTags(body[i+3:]); tags != nil {
			return strings.TrimSpace(body[:i]), tags
		}
	}

	if open := strings.Index(body, "["); open >= 0 {
		if end := strings.Index(body[open+1:], "]"); end >= 0 {
			if tags := splitTags(body[open+1 : open+1+end]); tags != nil {
				return strings.TrimSpace(body[:open]), tags
			}
		}
	}

	return body, nil
}

func splitTags(s string) []string {
	if !strings.Contains(s, ",") {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CollectTags gathers the distinct bullet tags of a roadmap, sorted. When no
// bullet has tags the fallback set is returned with Fallback set.
func CollectTags(lines []Line) TagSet {
	seen := make(map[string]struct{})
	for _, l := range lines {
		if l.Kind != KindBullet {
			continue
		}
		for _, tag := range l.Tags {
			seen[tag] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return TagSet{Tags: append([]string(nil), FallbackTags...), Fallback: true}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return TagSet{Tags: tags}
}

// ParseTagQuery turns "a, b,,c" into ["a" "b" "c"].
func ParseTagQuery(q string) []string {
	var tags []string
	for _, part := range strings.Split(q, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
