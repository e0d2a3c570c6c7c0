package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sarvuday-server/internal/ai"
	"sarvuday-server/internal/assessment"
	"sarvuday-server/internal/model"
	"sarvuday-server/internal/repository"
)

type SemanticMapper interface {
	Map(ctx context.Context, req ai.MappingRequest) (*ai.MappingResult, error)
}

type ConversationLocker interface {
	Acquire(ctx context.Context, userID uint, conversationID string) (func(), error)
}

// AssessmentPolicy holds the confidence floors applied to mapper verdicts.
type AssessmentPolicy struct {
	OptionConfidence          float64
	QuestionConfidence        float64
	InitialQuestionConfidence float64
}

// DefaultAssessmentPolicy is the baseline configuration overrides start from.
func DefaultAssessmentPolicy() AssessmentPolicy {
	return AssessmentPolicy{
		OptionConfidence:   0.6,
		QuestionConfidence: 0.6,
	}
}

// TrackResult reports what a message did to the ledger. Zero IDs mean the
// transition did not happen. Err is set when mapping was cut short; it is
// informational only and never fails the chat request.
type TrackResult struct {
	CreatedID   uint
	ResolvedID  uint
	AbandonedID uint
	Err         error
}

type AssessmentService struct {
	repo   *repository.AssessmentRepository
	mapper SemanticMapper
	locker ConversationLocker
	policy AssessmentPolicy
	logger *zap.Logger
}

func NewAssessmentService(
	repo *repository.AssessmentRepository,
	mapper SemanticMapper,
	locker ConversationLocker,
	policy AssessmentPolicy,
	logger *zap.Logger,
) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		repo:   repo,
		mapper: mapper,
		locker: locker,
		policy: policy,
		logger: logger.Named("assessment"),
	}
}

// Track correlates one user message with the conversation's questionnaire
// state. With no pending question the message is matched against the
// question catalog; with one pending it is matched against that question's
// options, and a weak or foreign match abandons the pending question before
// the same message is tried as a new question.
func (s *AssessmentService) Track(ctx context.Context, userID uint, conversationID, message string) TrackResult {
	log := s.logger.With(zap.Uint("user_id", userID), zap.String("conversation_id", conversationID))

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, userID, conversationID)
		if err != nil {
			log.Warn("assessment lock unavailable, mapping without it", zap.Error(err))
		} else {
			defer release()
		}
	}

	pending, err := s.repo.GetPending(ctx, userID, conversationID)
	if err != nil {
		log.Error("load pending assessment failed", zap.Error(err))
		return TrackResult{Err: err}
	}
	if pending == nil {
		return s.matchQuestion(ctx, log, userID, conversationID, message, s.policy.InitialQuestionConfidence)
	}

	res, err := s.mapper.Map(ctx, ai.MappingRequest{
		Message:        message,
		ConversationID: conversationID,
		MappingType:    ai.MappingOption,
		Category:       pending.Category,
		Question:       pending.Question,
	})
	if err != nil {
		log.Warn("semantic mapper unavailable, skipping assessment", zap.Error(err))
		return TrackResult{Err: err}
	}
	if !res.Success {
		log.Info("semantic mapper returned unsuccessful option mapping", zap.String("detail", res.Message))
		return TrackResult{}
	}

	sameQuestion := res.Category == pending.Category && res.Question == pending.Question
	if sameQuestion && res.Confidence >= s.policy.OptionConfidence {
		if err := s.repo.Resolve(ctx, pending.ID, res.MappedOption, res.Score); err != nil {
			log.Error("resolve assessment failed", zap.Uint("record_id", pending.ID), zap.Error(err))
			return TrackResult{Err: err}
		}
		log.Info("mapped message to option",
			zap.String("option", res.MappedOption),
			zap.Int("score", res.Score),
			zap.Float64("confidence", res.Confidence))
		return TrackResult{ResolvedID: pending.ID}
	}

	if sameQuestion {
		log.Info("option confidence too low, abandoning question",
			zap.String("question", pending.Question),
			zap.Float64("confidence", res.Confidence))
	} else {
		log.Info("option mapped to a different question, abandoning",
			zap.String("expected", pending.Question),
			zap.String("got", res.Question))
	}
	if err := s.repo.Abandon(ctx, pending.ID); err != nil {
		log.Error("abandon assessment failed", zap.Uint("record_id", pending.ID), zap.Error(err))
		return TrackResult{Err: err}
	}

	// The same raw message gets a second chance as a new question.
	result := s.matchQuestion(ctx, log, userID, conversationID, message, s.policy.QuestionConfidence)
	result.AbandonedID = pending.ID
	return result
}

func (s *AssessmentService) matchQuestion(
	ctx context.Context,
	log *zap.Logger,
	userID uint,
	conversationID, message string,
	floor float64,
) TrackResult {
	res, err := s.mapper.Map(ctx, ai.MappingRequest{
		Message:        message,
		ConversationID: conversationID,
		MappingType:    ai.MappingQuestion,
	})
	if err != nil {
		log.Warn("semantic mapper unavailable, skipping assessment", zap.Error(err))
		return TrackResult{Err: err}
	}
	if !res.Success || strings.TrimSpace(res.Question) == "" {
		log.Debug("message did not map to a question", zap.String("detail", res.Message))
		return TrackResult{}
	}
	if res.Confidence < floor {
		log.Debug("question confidence below floor",
			zap.Float64("confidence", res.Confidence),
			zap.Float64("floor", floor))
		return TrackResult{}
	}

	category, err := assessment.ParseCategory(res.Category)
	if err != nil {
		log.Warn("semantic mapper returned unknown category", zap.String("category", res.Category))
		return TrackResult{Err: err}
	}

	record := &model.AssessmentRecord{
		UserID:         userID,
		ConversationID: conversationID,
		Category:       category.String(),
		Question:       res.Question,
	}
	if err := s.repo.CreatePending(ctx, record); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			log.Warn("another pending question appeared concurrently", zap.String("question", res.Question))
		} else {
			log.Error("create assessment failed", zap.Error(err))
		}
		return TrackResult{Err: err}
	}

	log.Info("mapped message to question",
		zap.String("category", record.Category),
		zap.String("question", record.Question),
		zap.Float64("confidence", res.Confidence))
	return TrackResult{CreatedID: record.ID}
}

type SummaryFilter struct {
	ConversationID string
	Category       string
}

type ResponseEntry struct {
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

type CategorySummary struct {
	TotalScore int             `json:"totalScore"`
	Severity   string          `json:"severity"`
	Responses  []ResponseEntry `json:"responses"`
}

// AssessmentSummary is keyed by conversation id, then category.
type AssessmentSummary map[string]map[string]*CategorySummary

// Summarize groups scored records; pending and abandoned records never count.
func (s *AssessmentService) Summarize(ctx context.Context, userID uint, filter SummaryFilter) (AssessmentSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	repoFilter := repository.AssessmentFilter{ConversationID: strings.TrimSpace(filter.ConversationID)}
	if strings.TrimSpace(filter.Category) != "" {
		category, err := assessment.ParseCategory(filter.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: %q, expected one of %v", ErrInvalidCategory, filter.Category, assessment.Categories())
		}
		repoFilter.Category = category.String()
	}

	records, err := s.repo.ListScored(ctx, userID, repoFilter)
	if err != nil {
		return nil, err
	}

	summary := AssessmentSummary{}
	for _, r := range records {
		if !r.IsScored() || r.Response == nil {
			continue
		}
		byCategory, ok := summary[r.ConversationID]
		if !ok {
			byCategory = map[string]*CategorySummary{}
			summary[r.ConversationID] = byCategory
		}
		cs, ok := byCategory[r.Category]
		if !ok {
			cs = &CategorySummary{Responses: []ResponseEntry{}}
			byCategory[r.Category] = cs
		}
		cs.Responses = append(cs.Responses, ResponseEntry{
			Question:  r.Question,
			Response:  *r.Response,
			Score:     r.Score,
			Timestamp: r.CreatedAt,
		})
		cs.TotalScore += r.Score
	}

	for _, byCategory := range summary {
		for category, cs := range byCategory {
			cs.Severity = assessment.Severity(assessment.Category(category), cs.TotalScore)
		}
	}
	return summary, nil
}
