// Package prompt builds the model prompts used for roadmap generation,
// section rewrites and roadmap questions.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Accepted prompt length in characters.
const (
	MinLength = 50
	MaxLength = 4000
)

const roadmapTemplate = "Create a personalized learning roadmap to help the user achieve their career goal of becoming a %s " +
	"with the specific aspiration: '%s'. " +
	"Here is the user's resume: %s. " +
	"Analyze the resume to identify current skills and experience. " +
	"Based on the role of %s, identify the key skills and knowledge areas required, " +
	"and focus on bridging the gaps between the user's current skills and the role's requirements. " +
	"Group the steps into phases, each introduced by a line of the form '**<phase title>**'. " +
	"Provide a step-by-step roadmap with actionable learning steps, including specific resources (e.g., courses, tutorials) " +
	"and tag each resource with relevant labels (e.g., 'YouTube', 'Beginner-Friendly', 'Coursera') in the format: " +
	"'* <step> - <tag1>, <tag2>'. Ensure the roadmap is practical and tailored to the user's goal and role."

const sectionTemplate = "Rewrite this learning roadmap section heading for a %s so it reflects the steps listed under it. " +
	"Reply with the new heading text only, on a single line, without markdown.\n" +
	"Heading: %s\n" +
	"Steps:\n%s"

const questionTemplate = "Answer the user's question about their learning roadmap using the roadmap as context.\n" +
	"Roadmap: %s\n" +
	"Question: %s"

// Roadmap builds the roadmap generation prompt. The resume is shortened so the
// prompt stays within MaxLength.
func Roadmap(role, goal, resume string) string {
	role, goal = clean(role), clean(goal)
	budget := MaxLength - Length(fmt.Sprintf(roadmapTemplate, role, goal, "", role))
	return fmt.Sprintf(roadmapTemplate, role, goal, Shorten(clean(resume), budget), role)
}

// Section builds the prompt that regenerates one section heading.
func Section(role, heading string, steps []string) string {
	role, heading = clean(role), clean(heading)
	budget := MaxLength - Length(fmt.Sprintf(sectionTemplate, role, heading, ""))
	return fmt.Sprintf(sectionTemplate, role, heading, Shorten(strings.Join(steps, "\n"), budget))
}

// Question builds a roadmap Q&A prompt around the given context.
func Question(body, question string) string {
	question = clean(question)
	budget := MaxLength - Length(fmt.Sprintf(questionTemplate, "", question))
	return fmt.Sprintf(questionTemplate, Shorten(clean(body), budget), question)
}

// Length counts characters, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Shorten cuts s to at most max characters.
func Shorten(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Length(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

func clean(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, "�"))
}
