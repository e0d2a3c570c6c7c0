package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarvuday-server/internal/repository"
	"sarvuday-server/internal/testutil"
)

func TestQuizSubmitThenHistory(t *testing.T) {
	svc := NewQuizService(repository.NewQuizResultRepository(testutil.NewDB(t)))
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitQuizInput{UserID: 1, QuizType: " PHQ-9 ", Score: 7, Remark: "Mild depression"})
	require.NoError(t, err)
	assert.Equal(t, "PHQ-9", first.QuizType)
	assert.NotZero(t, first.ID)

	_, err = svc.Submit(ctx, SubmitQuizInput{UserID: 1, QuizType: "BDI", Score: 0, Remark: "Minimal"})
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "BDI", history[0].QuizType)
	assert.Equal(t, 7, history[1].Score)
	assert.Equal(t, "Mild depression", history[1].Remark)
}

func TestQuizSubmitValidates(t *testing.T) {
	svc := NewQuizService(repository.NewQuizResultRepository(testutil.NewDB(t)))
	ctx := context.Background()

	cases := []SubmitQuizInput{
		{UserID: 0, QuizType: "PHQ-9", Score: 1, Remark: "ok"},
		{UserID: 1, QuizType: "  ", Score: 1, Remark: "ok"},
		{UserID: 1, QuizType: "PHQ-9", Score: 1, Remark: ""},
		{UserID: 1, QuizType: "PHQ-9", Score: -3, Remark: "ok"},
	}
	for _, in := range cases {
		_, err := svc.Submit(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}
