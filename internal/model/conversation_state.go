package model

import "time"

// ConversationState points at the single pending assessment record of a
// conversation, if any.
type ConversationState struct {
	UserID          uint      `gorm:"primaryKey;autoIncrement:false"`
	ConversationID  string    `gorm:"primaryKey;size:64"`
	PendingRecordID *uint     `gorm:"index"`
	UpdatedAt       time.Time
}
