package dto

import (
	"strings"
	"time"

	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/fadilmartias/skillwise/internal/skill"
	"github.com/google/uuid"
)

// OtherRole selects the free-text custom role.
const OtherRole = "Other"

type CreateSessionRequest struct {
	Goal       string `form:"goal" json:"goal" validate:"max=500"`
	Role       string `form:"role" json:"role" validate:"required,max=100,role"`
	CustomRole string `form:"custom_role" json:"custom_role" validate:"required_if=Role Other,max=100"`
}

// EffectiveRole is the custom role when "Other" is selected.
func (r CreateSessionRequest) EffectiveRole() string {
	if r.Role == OtherRole {
		return strings.TrimSpace(r.CustomRole)
	}
	return strings.TrimSpace(r.Role)
}

type ProgressRequest struct {
	Section string `json:"section"`
	Item    string `json:"item" validate:"required,startswith=*"`
	Done    bool   `json:"done"`
}

type SaveSectionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type QuestionRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}

type FeedbackRequest struct {
	Kind   model.FeedbackKind `json:"kind" validate:"required,oneof=helpful not_helpful survey"`
	Rating *int               `json:"rating" validate:"omitempty,min=1,max=5"`
}

type PageQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
}

type SessionDTO struct {
	ID                uuid.UUID           `json:"id"`
	Goal              string              `json:"goal"`
	Role              string              `json:"role"`
	Status            model.SessionStatus `json:"status"`
	ResumeChars       int                 `json:"resume_chars"`
	HasRoadmap        bool                `json:"has_roadmap"`
	EditingLine       *int                `json:"editing_line"`
	GenerationSeconds float64             `json:"generation_seconds"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func NewSessionDTO(s *model.RoadmapSession) SessionDTO {
	return SessionDTO{
		ID:                s.ID,
		Goal:              s.Goal,
		Role:              s.Role,
		Status:            s.Status,
		ResumeChars:       s.ResumeLength(),
		HasRoadmap:        s.Roadmap != "",
		EditingLine:       s.EditingLine,
		GenerationSeconds: s.GenerationSeconds,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// RoadmapDTO is the interactive view of a roadmap.
type RoadmapDTO struct {
	Session     SessionDTO            `json:"session"`
	Sections    []roadmap.SectionView `json:"sections"`
	Tags        []string              `json:"tags"`
	TagFallback bool                  `json:"tag_fallback"`
	Selected    []string              `json:"selected"`
	Completed   int                   `json:"completed"`
	Total       int                   `json:"total"`
	SkillGap    skill.Report          `json:"skill_gap"`
}

type AnswerDTO struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type ProgressDTO struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Progress  map[string]bool `json:"progress"`
}
