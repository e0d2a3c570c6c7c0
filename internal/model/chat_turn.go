package model

import "time"

// ChatTurn is one entry of a conversation: a user message paired with the
// assistant response, or a header row registering a session before any
// message exists. Turns are insert-only.
type ChatTurn struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ConversationID   string    `gorm:"size:64;not null;index:idx_turn_conv,priority:2" json:"conversationId"`
	UserID           uint      `gorm:"not null;index:idx_turn_conv,priority:1" json:"user"`
	Message          *string   `gorm:"type:text" json:"message,omitempty"`
	Response         *string   `gorm:"type:text" json:"response,omitempty"`
	ConversationName *string   `gorm:"size:128" json:"conversationName,omitempty"`
	IsSessionHeader  bool      `gorm:"not null;default:false" json:"isSessionHeader"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

func (t ChatTurn) MessageText() string {
	if t.Message == nil {
		return ""
	}
	return *t.Message
}

func (t ChatTurn) ResponseText() string {
	if t.Response == nil {
		return ""
	}
	return *t.Response
}
