package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sarvuday-server/internal/model"
)

var (
	ErrPendingExists    = errors.New("conversation already has a pending assessment record")
	ErrRecordNotPending = errors.New("assessment record is not pending")
)

// AssessmentRepository persists assessment records together with the
// per-conversation pointer to the pending one. Every state transition updates
// the record and the pointer in a single transaction.
type AssessmentRepository struct {
	db *gorm.DB
}

type AssessmentFilter struct {
	ConversationID string
	Category       string
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// GetPending returns the pending record of a conversation or nil.
func (r *AssessmentRepository) GetPending(ctx context.Context, userID uint, conversationID string) (*model.AssessmentRecord, error) {
	var state model.ConversationState
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation state failed: %w", err)
	}
	if state.PendingRecordID == nil {
		return nil, nil
	}

	record, err := r.GetByID(ctx, *state.PendingRecordID)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsPending() {
		return nil, nil
	}
	return record, nil
}

// CreatePending inserts a pending record and points the conversation at it.
// It fails with ErrPendingExists when another record is already pending.
func (r *AssessmentRepository) CreatePending(ctx context.Context, record *model.AssessmentRecord) error {
	record.ID = 0
	record.Response = nil
	record.Score = model.ScorePending

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state := model.ConversationState{
			UserID:         record.UserID,
			ConversationID: record.ConversationID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error; err != nil {
			return fmt.Errorf("ensure conversation state failed: %w", err)
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create assessment record failed: %w", err)
		}

		res := tx.Model(&model.ConversationState{}).
			Where("user_id = ? AND conversation_id = ? AND pending_record_id IS NULL", record.UserID, record.ConversationID).
			Update("pending_record_id", record.ID)
		if res.Error != nil {
			return fmt.Errorf("set pending pointer failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPendingExists
		}
		return nil
	})
}

// Resolve records the mapped option of a pending record.
func (r *AssessmentRepository) Resolve(ctx context.Context, recordID uint, response string, score int) error {
	if score < 0 {
		return fmt.Errorf("resolve with negative score %d", score)
	}
	return r.finish(ctx, recordID, response, score)
}

// Abandon marks a pending record as displaced before it was answered.
func (r *AssessmentRepository) Abandon(ctx context.Context, recordID uint) error {
	return r.finish(ctx, recordID, model.AbandonedResponse, model.ScoreAbandoned)
}

func (r *AssessmentRepository) finish(ctx context.Context, recordID uint, response string, score int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AssessmentRecord{}).
			Where("id = ? AND score = ?", recordID, model.ScorePending).
			Updates(map[string]interface{}{
				"response": response,
				"score":    score,
			})
		if res.Error != nil {
			return fmt.Errorf("update assessment record failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotPending
		}

		if err := tx.Model(&model.ConversationState{}).
			Where("pending_record_id = ?", recordID).
			Update("pending_record_id", nil).Error; err != nil {
			return fmt.Errorf("clear pending pointer failed: %w", err)
		}
		return nil
	})
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id uint) (*model.AssessmentRecord, error) {
	var record model.AssessmentRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assessment record failed: %w", err)
	}
	return &record, nil
}

// ListByConversation returns every record of a conversation, oldest first.
func (r *AssessmentRepository) ListByConversation(ctx context.Context, userID uint, conversationID string) ([]model.AssessmentRecord, error) {
	var records []model.AssessmentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at ASC").Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list assessment records failed: %w", err)
	}
	return records, nil
}

// ListScored returns records carrying a genuine score, newest first.
func (r *AssessmentRepository) ListScored(ctx context.Context, userID uint, filter AssessmentFilter) ([]model.AssessmentRecord, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND score >= 0 AND response IS NOT NULL", userID)
	if filter.ConversationID != "" {
		query = query.Where("conversation_id = ?", filter.ConversationID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var records []model.AssessmentRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list scored assessment records failed: %w", err)
	}
	return records, nil
}
