package repository

import (
	"context"

	"github.com/fadilmartias/skillwise/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(f).Error
}
