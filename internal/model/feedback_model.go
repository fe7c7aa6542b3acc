package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackKind string

const (
	FeedbackHelpful    FeedbackKind = "helpful"
	FeedbackNotHelpful FeedbackKind = "not_helpful"
	FeedbackSurvey     FeedbackKind = "survey"
)

type Feedback struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID    `gorm:"type:uuid;index" json:"session_id"`
	Kind      FeedbackKind `gorm:"type:varchar(20)" json:"kind"`
	Rating    *int         `json:"rating,omitempty"`
	Roadmap   string       `gorm:"type:text" json:"roadmap"`
	CreatedAt time.Time    `json:"created_at"`
}

func (f *Feedback) TableName() string {
	return "feedbacks"
}
