package repository

import (
	"context"

	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db}
}

// Replace swaps the indexed sections of a session in one transaction.
func (r *SectionRepository) Replace(ctx context.Context, sessionID uuid.UUID, sections []model.RoadmapSection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.RoadmapSection{}).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		for i := range sections {
			sections[i].SessionID = sessionID
			if sections[i].ID == uuid.Nil {
				sections[i].ID = uuid.New()
			}
		}
		return tx.Create(&sections).Error
	})
}

// Search returns the topK sections of a session nearest to embedding.
func (r *SectionRepository) Search(ctx context.Context, sessionID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.RoadmapSection, error) {
	var sections []model.RoadmapSection

	err := r.db.WithContext(ctx).Raw(`
        SELECT id, session_id, title, heading_index, content, created_at
        FROM roadmap_sections
        WHERE session_id = ?
        ORDER BY embedding <-> ?
        LIMIT ?
    `, sessionID, embedding, topK).Scan(&sections).Error

	return sections, err
}
