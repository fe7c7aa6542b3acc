package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// RoadmapSection is one grouped section of a session's roadmap, embedded for
// question answering.
type RoadmapSection struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    uuid.UUID       `gorm:"type:uuid;index" json:"session_id"`
	Title        string          `json:"title"`
	HeadingIndex int             `json:"heading_index"`
	Content      string          `gorm:"type:text" json:"content"`
	Embedding    pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (s *RoadmapSection) TableName() string {
	return "roadmap_sections"
}
