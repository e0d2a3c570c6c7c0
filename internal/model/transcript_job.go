package model

import "time"

// TranscriptJob asks the export worker to write the transcript of one
// conversation to disk.
type TranscriptJob struct {
	UserID         uint      `json:"userId"`
	ConversationID string    `json:"conversationId"`
	RequestedAt    time.Time `json:"requestedAt"`
}
