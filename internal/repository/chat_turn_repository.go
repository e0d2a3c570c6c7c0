package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sarvuday-server/internal/model"
)

type ChatTurnRepository struct {
	db *gorm.DB
}

func NewChatTurnRepository(db *gorm.DB) *ChatTurnRepository {
	return &ChatTurnRepository{db: db}
}

// Create inserts a new turn. Turns are never updated afterwards.
func (r *ChatTurnRepository) Create(ctx context.Context, turn *model.ChatTurn) error {
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("create chat turn failed: %w", err)
	}
	return nil
}

// ListCompleted returns turns carrying both a message and a response, oldest
// first. A positive limit keeps only the most recent limit turns.
func (r *ChatTurnRepository) ListCompleted(ctx context.Context, userID uint, conversationID string, limit int) ([]model.ChatTurn, error) {
	query := r.conversation(ctx, userID, conversationID).
		Where("message IS NOT NULL AND message <> ''").
		Where("response IS NOT NULL AND response <> ''")

	var turns []model.ChatTurn
	if limit > 0 {
		if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&turns).Error; err != nil {
			return nil, fmt.Errorf("list recent chat turns failed: %w", err)
		}
		reverse(turns)
		return turns, nil
	}

	if err := query.Order("created_at ASC").Order("id ASC").Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list chat turns failed: %w", err)
	}
	return turns, nil
}

// ListMessages returns every turn with a non-empty message, oldest first.
func (r *ChatTurnRepository) ListMessages(ctx context.Context, userID uint, conversationID string) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.conversation(ctx, userID, conversationID).
		Where("message IS NOT NULL AND message <> ''").
		Order("created_at ASC").Order("id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return turns, nil
}

// ListByUser returns all turns of a user, oldest first.
func (r *ChatTurnRepository) ListByUser(ctx context.Context, userID uint) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("list user chat turns failed: %w", err)
	}
	return turns, nil
}

func (r *ChatTurnRepository) ExistsConversation(ctx context.Context, userID uint, conversationID string) (bool, error) {
	var count int64
	if err := r.conversation(ctx, userID, conversationID).Model(&model.ChatTurn{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check conversation failed: %w", err)
	}
	return count > 0, nil
}

func (r *ChatTurnRepository) conversation(ctx context.Context, userID uint, conversationID string) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND conversation_id = ?", userID, conversationID)
}

func reverse(turns []model.ChatTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
