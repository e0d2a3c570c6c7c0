package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sarvuday-server/internal/model"
)

type QuizResultRepository struct {
	db *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

func (r *QuizResultRepository) Create(ctx context.Context, result *model.QuizResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("create quiz result failed: %w", err)
	}
	return nil
}

// ListByUser returns a user's quiz results, newest first.
func (r *QuizResultRepository) ListByUser(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list quiz results failed: %w", err)
	}
	return results, nil
}
