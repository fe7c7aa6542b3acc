package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.RoadmapSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) Update(ctx context.Context, s *model.RoadmapSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RoadmapSession, error) {
	var s model.RoadmapSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// listColumns leaves out the résumé text and reports its length instead.
const listColumns = "id, goal, role, roadmap, progress, editing_line, status, generation_seconds, created_at, updated_at, " +
	"char_length(resume_text) AS resume_chars"

// List returns one page of sessions, newest first, and the total count.
func (r *SessionRepository) List(ctx context.Context, page, pageSize int) ([]model.RoadmapSession, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.RoadmapSession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []model.RoadmapSession
	err := r.db.WithContext(ctx).
		Select(listColumns).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error
	return sessions, total, err
}
