package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	StatusUploaded   SessionStatus = "uploaded"
	StatusGenerating SessionStatus = "generating"
	StatusReady      SessionStatus = "ready"
	StatusFailed     SessionStatus = "failed"
)

// RoadmapSession holds one user's résumé, generated roadmap and progress.
// Progress is stored in its flat "<section><raw bullet>" form.
type RoadmapSession struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ResumeText        string          `gorm:"type:text" json:"resume_text"`
	Goal              string          `gorm:"type:text" json:"goal"`
	Role              string          `gorm:"type:varchar(100)" json:"role"`
	Roadmap           string          `gorm:"type:text" json:"roadmap"`
	Progress          map[string]bool `gorm:"type:jsonb;serializer:json" json:"progress"`
	EditingLine       *int            `json:"editing_line"`
	Status            SessionStatus   `gorm:"type:varchar(20);index" json:"status"`
	GenerationSeconds float64         `gorm:"type:float" json:"generation_seconds"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// ResumeChars is filled by queries that skip resume_text.
	ResumeChars int `gorm:"->;-:migration" json:"-"`
}

// ResumeLength is the résumé length in characters, from the loaded text or
// from ResumeChars when the text was not selected.
func (s *RoadmapSession) ResumeLength() int {
	if s.ResumeText == "" {
		return s.ResumeChars
	}
	return utf8.RuneCountInString(s.ResumeText)
}

func (s *RoadmapSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Progress == nil {
		s.Progress = map[string]bool{}
	}
	return nil
}

func (s *RoadmapSession) TableName() string {
	return "roadmap_sessions"
}
