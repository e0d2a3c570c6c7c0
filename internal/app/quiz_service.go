package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sarvuday-server/internal/model"
	"sarvuday-server/internal/repository"
)

const (
	quizTypeMax = 64
	remarkMax   = 255
)

// QuizService records questionnaires completed as forms. These results are
// kept apart from the chat assessment ledger.
type QuizService struct {
	repo *repository.QuizResultRepository
	now  func() time.Time
}

type SubmitQuizInput struct {
	UserID   uint
	QuizType string
	Score    int
	Remark   string
}

func NewQuizService(repo *repository.QuizResultRepository) *QuizService {
	return &QuizService{repo: repo, now: time.Now}
}

func (s *QuizService) Submit(ctx context.Context, input SubmitQuizInput) (*model.QuizResult, error) {
	quizType := strings.TrimSpace(input.QuizType)
	remark := strings.TrimSpace(input.Remark)
	switch {
	case input.UserID == 0:
		return nil, ErrInvalidInput
	case quizType == "" || utf8.RuneCountInString(quizType) > quizTypeMax:
		return nil, fmt.Errorf("%w: quizType is required", ErrInvalidInput)
	case remark == "" || utf8.RuneCountInString(remark) > remarkMax:
		return nil, fmt.Errorf("%w: remark is required", ErrInvalidInput)
	case input.Score < 0:
		return nil, fmt.Errorf("%w: score must not be negative", ErrInvalidInput)
	}

	result := &model.QuizResult{
		UserID:   input.UserID,
		QuizType: quizType,
		Score:    input.Score,
		Remark:   remark,
		Date:     s.now(),
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *QuizService) History(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}
