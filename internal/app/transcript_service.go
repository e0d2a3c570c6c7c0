package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sarvuday-server/internal/model"
	"sarvuday-server/internal/repository"
)

// TranscriptService renders conversations as plain-text transcripts and
// writes them under the export directory.
type TranscriptService struct {
	turnRepo *repository.ChatTurnRepository
	dir      string
	now      func() time.Time
}

func NewTranscriptService(turnRepo *repository.ChatTurnRepository, dir string) *TranscriptService {
	if strings.TrimSpace(dir) == "" {
		dir = "chat_logs"
	}
	return &TranscriptService{turnRepo: turnRepo, dir: dir, now: time.Now}
}

func TranscriptFileName(userID uint, conversationID string) string {
	return fmt.Sprintf("patient_%d_session_%s.txt", userID, conversationID)
}

// ExportSession writes the transcript of a conversation owned by userID.
func (s *TranscriptService) ExportSession(ctx context.Context, userID uint, conversationID string) (string, error) {
	conversationID = strings.TrimSpace(conversationID)
	if userID == 0 || conversationID == "" {
		return "", ErrInvalidInput
	}
	if !conversationIDPattern.MatchString(conversationID) {
		return "", ErrSessionNotFound
	}
	exists, err := s.turnRepo.ExistsConversation(ctx, userID, conversationID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrSessionNotFound
	}

	if _, err := s.Write(ctx, model.TranscriptJob{UserID: userID, ConversationID: conversationID}); err != nil {
		return "", err
	}
	return TranscriptFileName(userID, conversationID), nil
}

// Write renders and stores one transcript. It reports false when the
// conversation has no completed turns and nothing was written.
func (s *TranscriptService) Write(ctx context.Context, job model.TranscriptJob) (bool, error) {
	if job.UserID == 0 || !conversationIDPattern.MatchString(job.ConversationID) {
		return false, fmt.Errorf("%w: transcript job %+v", ErrInvalidInput, job)
	}

	turns, err := s.turnRepo.ListCompleted(ctx, job.UserID, job.ConversationID, 0)
	if err != nil {
		return false, err
	}
	if len(turns) == 0 {
		return false, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("create transcript dir failed: %w", err)
	}
	path := filepath.Join(s.dir, TranscriptFileName(job.UserID, job.ConversationID))
	content := RenderTranscript(job.UserID, job.ConversationID, turns, s.now())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write transcript failed: %w", err)
	}
	return true, nil
}

func RenderTranscript(userID uint, conversationID string, turns []model.ChatTurn, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient ID: %d\n", userID)
	fmt.Fprintf(&b, "Session ID: %s\n", conversationID)
	fmt.Fprintf(&b, "Date: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Messages: %d\n", len(turns))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for i, turn := range turns {
		fmt.Fprintf(&b, "Question %d: %s\n", i+1, turn.MessageText())
		fmt.Fprintf(&b, "Answer %d: %s\n\n", i+1, turn.ResponseText())
	}
	return b.String()
}
