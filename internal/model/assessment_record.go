package model

import "time"

const (
	ScorePending   = -1
	ScoreAbandoned = -2

	// AbandonedResponse is stored on records displaced before an answer arrived.
	AbandonedResponse = "Not answered"
)

// AssessmentRecord is one question of a standardized questionnaire conducted
// through the chat. Score carries the record state: ScorePending until an
// option is mapped, ScoreAbandoned when displaced, otherwise the clinical score.
type AssessmentRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_assessment_conv,priority:1" json:"user"`
	ConversationID string    `gorm:"size:64;not null;index:idx_assessment_conv,priority:2" json:"conversationId"`
	Category       string    `gorm:"size:16;not null;index" json:"category"`
	Question       string    `gorm:"type:text;not null" json:"question"`
	Response       *string   `gorm:"type:text" json:"response"`
	Score          int       `gorm:"not null;default:-1" json:"score"`
	CreatedAt      time.Time `json:"timestamp"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (r AssessmentRecord) IsPending() bool {
	return r.Score == ScorePending
}

func (r AssessmentRecord) IsAbandoned() bool {
	return r.Score == ScoreAbandoned
}

// IsScored reports whether the record carries a genuine clinical score.
func (r AssessmentRecord) IsScored() bool {
	return r.Score >= 0
}
