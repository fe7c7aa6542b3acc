// Package skill scores a résumé against the skills a target role requires.
package skill

import (
	"math"
	"strings"
)

// DefaultSkills applies to roles with no entry in RoleSkills.
var DefaultSkills = []string{"Python", "Git", "Problem Solving", "Communication"}

// RoleSkills lists the required skill keywords per predefined role.
var RoleSkills = map[string][]string{
	"AI Engineer":               {"Python", "Machine Learning", "TensorFlow", "NLP"},
	"Frontend Developer":        {"HTML", "CSS", "JavaScript", "React"},
	"Backend Developer":         {"Python", "Node.js", "SQL", "REST APIs"},
	"Full Stack Developer":      {"HTML", "JavaScript", "Node.js", "SQL"},
	"Product Manager":           {"Agile", "SQL", "Figma", "Jira"},
	"Data Analyst":              {"SQL", "Excel", "Tableau", "Python"},
	"Cybersecurity Expert":      {"Networking", "Penetration Testing", "Cryptography", "Linux"},
	"DevOps Engineer":           {"Docker", "Kubernetes", "AWS", "CI/CD"},
	"UI/UX Designer":            {"Figma", "Adobe XD", "User Research", "Prototyping"},
	"Machine Learning Engineer": {"Python", "TensorFlow", "Scikit-learn", "Deep Learning"},
	"Blockchain Developer":      {"Solidity", "Ethereum", "Smart Contracts", "Cryptography"},
	"Cloud Architect":           {"AWS", "Azure", "GCP", "Terraform"},
	"Data Scientist":            {"Python", "R", "Machine Learning", "Statistics"},
	"Software Engineer":         {"Java", "Python", "Git", "Algorithms"},
	"Mobile App Developer":      {"Swift", "Kotlin", "React Native", "Flutter"},
}

// Roles is the display order of the predefined roles.
var Roles = []string{
	"AI Engineer",
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Product Manager",
	"Data Analyst",
	"Cybersecurity Expert",
	"DevOps Engineer",
	"UI/UX Designer",
	"Machine Learning Engineer",
	"Blockchain Developer",
	"Cloud Architect",
	"Data Scientist",
	"Software Engineer",
	"Mobile App Developer",
}

// Recommendation pairs a skill with a suggested course.
type Recommendation struct {
	Skill  string `json:"skill"`
	Course string `json:"course"`
}

// Report is the skill-gap analysis of one résumé for one role.
type Report struct {
	Role            string           `json:"role"`
	Required        []string         `json:"required"`
	Matching        []string         `json:"matching"`
	Missing         []string         `json:"missing"`
	Score           float64          `json:"score"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Required returns the skills of role, falling back to DefaultSkills.
func Required(role string) []string {
	if skills, ok := RoleSkills[role]; ok {
		return skills
	}
	return DefaultSkills
}

// IsPredefined reports whether role has its own skill list.
func IsPredefined(role string) bool {
	_, ok := RoleSkills[role]
	return ok
}

// Matches reports whether the résumé mentions skill, ignoring case.
func Matches(resume, skill string) bool {
	return strings.Contains(strings.ToLower(resume), strings.ToLower(skill))
}

// IsMissing reports whether the résumé does not mention skill.
func IsMissing(resume, skill string) bool {
	return !Matches(resume, skill)
}

// Analyze scores resume against the required skills of role.
func Analyze(role, resume string) Report {
	required := Required(role)
	r := Report{
		Role:            role,
		Required:        required,
		Matching:        []string{},
		Missing:         []string{},
		Recommendations: []Recommendation{},
	}

	for _, s := range required {
		if Matches(resume, s) {
			r.Matching = append(r.Matching, s)
		}
		if IsMissing(resume, s) {
			r.Missing = append(r.Missing, s)
			r.Recommendations = append(r.Recommendations, Recommendation{Skill: s, Course: CourseFor(s)})
		}
	}

	if len(required) > 0 {
		r.Score = Score(len(r.Matching), len(required))
	}
	return r
}

// Score is matched/required as a percentage with one decimal.
func Score(matched, required int) float64 {
	if required == 0 {
		return 0
	}
	pct := float64(matched) / float64(required) * 100
	return math.Round(pct*10) / 10
}
