package app

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sarvuday-server/internal/ai"
	"sarvuday-server/internal/model"
	"sarvuday-server/internal/repository"
)

const (
	FallbackReply       = "I couldn't process that request. Please try again."
	conversationNameMax = 50
	sessionNameLayout   = "2006-01-02 15:04:05"
)

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type CompletionProvider interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type AssessmentTracker interface {
	Track(ctx context.Context, userID uint, conversationID, message string) TrackResult
}

type HistoryCache interface {
	GetRecent(ctx context.Context, userID uint, conversationID string) ([]model.ChatTurn, bool, error)
	SetRecent(ctx context.Context, userID uint, conversationID string, turns []model.ChatTurn) error
	Invalidate(ctx context.Context, userID uint, conversationID string) error
	IsDirty(ctx context.Context, userID uint, conversationID string) (bool, error)
}

type TranscriptQueue interface {
	Enqueue(ctx context.Context, job model.TranscriptJob) error
}

type ChatOptions struct {
	SystemPrompt  string
	HistoryWindow int
}

type ChatService struct {
	turnRepo     *repository.ChatTurnRepository
	assessments  AssessmentTracker
	completion   CompletionProvider
	historyCache HistoryCache
	transcripts  TranscriptQueue
	opts         ChatOptions
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

type SendMessageInput struct {
	UserID         uint
	ConversationID string
	Message        string
}

type SendMessageResult struct {
	Turn           *model.ChatTurn
	ConversationID string
	IsNewSession   bool
}

type SessionHeader struct {
	SessionID        string `json:"sessionId"`
	ConversationName string `json:"conversationName"`
}

// SessionSummary carries the conversation id under both "_id" and
// "sessionId"; existing clients key session lists on "_id".
type SessionSummary struct {
	ID           string    `json:"_id"`
	SessionID    string    `json:"sessionId"`
	SessionName  string    `json:"sessionName"`
	FirstMessage *string   `json:"firstMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewChatService(
	turnRepo *repository.ChatTurnRepository,
	assessments AssessmentTracker,
	completion CompletionProvider,
	historyCache HistoryCache,
	transcripts TranscriptQueue,
	opts ChatOptions,
	logger *zap.Logger,
) *ChatService {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 3
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = "You are a helpful AI assistant."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		turnRepo:     turnRepo,
		assessments:  assessments,
		completion:   completion,
		historyCache: historyCache,
		transcripts:  transcripts,
		opts:         opts,
		logger:       logger.Named("chat"),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// SendMessage runs the assessment tracking for the message, then asks the
// completion endpoint for a reply and stores the turn. Tracking never fails
// the call; a failed completion does, and nothing is stored in that case.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrMessageEmpty
	}

	conversationID := strings.TrimSpace(input.ConversationID)
	isNewSession := conversationID == ""
	if isNewSession {
		conversationID = s.newID()
	} else if !conversationIDPattern.MatchString(conversationID) {
		return nil, fmt.Errorf("%w: malformed session id", ErrInvalidInput)
	}

	if s.assessments != nil {
		s.assessments.Track(ctx, input.UserID, conversationID, message)
	}

	history, err := s.recentTurns(ctx, input.UserID, conversationID)
	if err != nil {
		return nil, err
	}
	promptMessages, err := s.buildPromptMessages(history, message)
	if err != nil {
		return nil, err
	}

	reply, err := s.completion.Complete(ctx, promptMessages)
	if err != nil {
		s.logger.Error("completion request failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = FallbackReply
	}

	turn := &model.ChatTurn{
		UserID:         input.UserID,
		ConversationID: conversationID,
		Message:        &message,
		Response:       &reply,
		CreatedAt:      s.now(),
	}
	if isNewSession {
		name := truncateRunes(message, conversationNameMax)
		turn.ConversationName = &name
	}
	if err := s.AppendTurn(ctx, turn); err != nil {
		return nil, err
	}

	s.enqueueTranscript(input.UserID, conversationID)

	return &SendMessageResult{
		Turn:           turn,
		ConversationID: conversationID,
		IsNewSession:   isNewSession,
	}, nil
}

// AppendTurn stores one completed turn and drops the cached history window.
func (s *ChatService) AppendTurn(ctx context.Context, turn *model.ChatTurn) error {
	if turn.UserID == 0 || turn.ConversationID == "" {
		return ErrInvalidInput
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now()
	}
	if err := s.turnRepo.Create(ctx, turn); err != nil {
		return err
	}
	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(ctx, turn.UserID, turn.ConversationID); err != nil {
			s.logger.Warn("invalidate history cache failed", zap.Error(err))
		}
	}
	return nil
}

// CreateSession registers a conversation before any message exists.
func (s *ChatService) CreateSession(ctx context.Context, userID uint, initialMessage string) (*SessionHeader, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	now := s.now()
	name := truncateRunes(strings.TrimSpace(initialMessage), conversationNameMax)
	if name == "" {
		name = "Chat " + now.Format(sessionNameLayout)
	}

	header := &model.ChatTurn{
		UserID:           userID,
		ConversationID:   s.newID(),
		ConversationName: &name,
		IsSessionHeader:  true,
		CreatedAt:        now,
	}
	if err := s.turnRepo.Create(ctx, header); err != nil {
		return nil, err
	}
	return &SessionHeader{SessionID: header.ConversationID, ConversationName: name}, nil
}

// ListSessions returns one entry per conversation, most recently active first.
// The display name prefers the first user message over the stored name.
func (s *ChatService) ListSessions(ctx context.Context, userID uint) ([]SessionSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	turns, err := s.turnRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type group struct {
		summary    SessionSummary
		storedName string
	}
	groups := map[string]*group{}
	order := make([]string, 0)
	for i := range turns {
		t := turns[i]
		g, ok := groups[t.ConversationID]
		if !ok {
			g = &group{summary: SessionSummary{
				ID:        t.ConversationID,
				SessionID: t.ConversationID,
				CreatedAt: t.CreatedAt,
				UpdatedAt: t.CreatedAt,
			}}
			groups[t.ConversationID] = g
			order = append(order, t.ConversationID)
		}
		if t.CreatedAt.Before(g.summary.CreatedAt) {
			g.summary.CreatedAt = t.CreatedAt
		}
		if t.CreatedAt.After(g.summary.UpdatedAt) {
			g.summary.UpdatedAt = t.CreatedAt
		}
		if g.storedName == "" && t.ConversationName != nil {
			g.storedName = *t.ConversationName
		}
		if g.summary.FirstMessage == nil && t.MessageText() != "" {
			first := t.MessageText()
			g.summary.FirstMessage = &first
		}
	}

	sessions := make([]SessionSummary, 0, len(order))
	for _, id := range order {
		g := groups[id]
		switch {
		case g.summary.FirstMessage != nil:
			g.summary.SessionName = *g.summary.FirstMessage
		case g.storedName != "":
			g.summary.SessionName = g.storedName
		default:
			g.summary.SessionName = "Chat " + g.summary.CreatedAt.Format(sessionNameLayout)
		}
		sessions = append(sessions, g.summary)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// GetHistory returns every turn of the conversation that carries a message.
func (s *ChatService) GetHistory(ctx context.Context, userID uint, conversationID string) ([]model.ChatTurn, error) {
	conversationID = strings.TrimSpace(conversationID)
	if userID == 0 || conversationID == "" {
		return nil, ErrInvalidInput
	}
	return s.turnRepo.ListMessages(ctx, userID, conversationID)
}

func (s *ChatService) recentTurns(ctx context.Context, userID uint, conversationID string) ([]model.ChatTurn, error) {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetRecent(ctx, userID, conversationID); cacheErr == nil && hit {
				return cached, nil
			}
			turns, err := s.turnRepo.ListCompleted(ctx, userID, conversationID, s.opts.HistoryWindow)
			if err != nil {
				return nil, err
			}
			_ = s.historyCache.SetRecent(ctx, userID, conversationID, turns)
			return turns, nil
		}
	}
	return s.turnRepo.ListCompleted(ctx, userID, conversationID, s.opts.HistoryWindow)
}

func (s *ChatService) buildPromptMessages(history []model.ChatTurn, current string) ([]ai.ChatMessage, error) {
	messages := make([]ai.ChatMessage, 0, len(history)*2+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: strings.TrimSpace(s.opts.SystemPrompt)})
	for _, turn := range history {
		messages = append(messages,
			ai.ChatMessage{Role: "user", Content: strings.TrimSpace(turn.MessageText())},
			ai.ChatMessage{Role: "assistant", Content: strings.TrimSpace(turn.ResponseText())},
		)
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: strings.TrimSpace(current)})

	for _, m := range messages {
		if m.Content == "" {
			return nil, ErrInvalidHistory
		}
	}
	return messages, nil
}

func (s *ChatService) enqueueTranscript(userID uint, conversationID string) {
	if s.transcripts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	job := model.TranscriptJob{UserID: userID, ConversationID: conversationID, RequestedAt: s.now()}
	if err := s.transcripts.Enqueue(ctx, job); err != nil {
		s.logger.Warn("enqueue transcript export failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
