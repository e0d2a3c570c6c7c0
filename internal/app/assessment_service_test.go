package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarvuday-server/internal/ai"
	"sarvuday-server/internal/model"
	"sarvuday-server/internal/repository"
	"sarvuday-server/internal/testutil"
)

const hopelessQuestion = "Feeling down, depressed, or hopeless"

type fakeMapper struct {
	question *ai.MappingResult
	option   *ai.MappingResult
	err      error
	requests []ai.MappingRequest
}

func (f *fakeMapper) Map(_ context.Context, req ai.MappingRequest) (*ai.MappingResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if req.MappingType == ai.MappingOption {
		if f.option == nil {
			return &ai.MappingResult{Success: false, Message: "no option"}, nil
		}
		return f.option, nil
	}
	if f.question == nil {
		return &ai.MappingResult{Success: false, Message: "no question"}, nil
	}
	return f.question, nil
}

func questionMatch(category, question string, confidence float64) *ai.MappingResult {
	return &ai.MappingResult{
		Success:     true,
		MappingType: ai.MappingQuestion,
		Category:    category,
		Question:    question,
		Confidence:  confidence,
	}
}

func optionMatch(category, question, option string, score int, confidence float64) *ai.MappingResult {
	return &ai.MappingResult{
		Success:      true,
		MappingType:  ai.MappingOption,
		Category:     category,
		Question:     question,
		MappedOption: option,
		Score:        score,
		Confidence:   confidence,
	}
}

func newAssessmentFixture(t *testing.T) (*AssessmentService, *repository.AssessmentRepository, *fakeMapper) {
	t.Helper()
	repo := repository.NewAssessmentRepository(testutil.NewDB(t))
	mapper := &fakeMapper{}
	return NewAssessmentService(repo, mapper, nil, DefaultAssessmentPolicy(), nil), repo, mapper
}

func TestTrackOpensQuestionFromMessage(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)

	res := svc.Track(ctx, 1, "c1", "I feel hopeless every day")
	require.NoError(t, res.Err)
	require.NotZero(t, res.CreatedID)

	pending, err := repo.GetPending(ctx, 1, "c1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, res.CreatedID, pending.ID)
	assert.Equal(t, "PHQ-9", pending.Category)
	assert.Equal(t, hopelessQuestion, pending.Question)
	assert.Equal(t, model.ScorePending, pending.Score)
	assert.Nil(t, pending.Response)

	require.Len(t, mapper.requests, 1)
	assert.Equal(t, ai.MappingQuestion, mapper.requests[0].MappingType)
}

func TestTrackResolvesPendingWithConfidentOption(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)
	created := svc.Track(ctx, 1, "c1", "I feel hopeless every day")
	require.NotZero(t, created.CreatedID)

	mapper.option = optionMatch("PHQ-9", hopelessQuestion, "More than half the days", 2, 0.75)
	res := svc.Track(ctx, 1, "c1", "most days honestly")
	require.NoError(t, res.Err)
	assert.Equal(t, created.CreatedID, res.ResolvedID)
	assert.Zero(t, res.CreatedID)

	last := mapper.requests[len(mapper.requests)-1]
	assert.Equal(t, ai.MappingOption, last.MappingType)
	assert.Equal(t, "PHQ-9", last.Category)
	assert.Equal(t, hopelessQuestion, last.Question)

	record, err := repo.GetByID(ctx, created.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, 2, record.Score)
	require.NotNil(t, record.Response)
	assert.Equal(t, "More than half the days", *record.Response)

	pending, err := repo.GetPending(ctx, 1, "c1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestTrackAbandonsWeakOptionAndRetriesAsQuestion(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)
	created := svc.Track(ctx, 1, "c1", "I feel hopeless every day")

	mapper.option = optionMatch("PHQ-9", hopelessQuestion, "Several days", 1, 0.4)
	mapper.question = questionMatch("PHQ-9", "Trouble falling or staying asleep, or sleeping too much", 0.7)
	res := svc.Track(ctx, 1, "c1", "I also can't sleep")
	require.NoError(t, res.Err)
	assert.Equal(t, created.CreatedID, res.AbandonedID)
	require.NotZero(t, res.CreatedID)
	assert.NotEqual(t, created.CreatedID, res.CreatedID)

	abandoned, err := repo.GetByID(ctx, created.CreatedID)
	require.NoError(t, err)
	assert.Equal(t, model.ScoreAbandoned, abandoned.Score)
	assert.True(t, abandoned.IsAbandoned())
	assert.False(t, abandoned.IsScored())
	require.NotNil(t, abandoned.Response)
	assert.Equal(t, model.AbandonedResponse, *abandoned.Response)

	pending, err := repo.GetPending(ctx, 1, "c1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, res.CreatedID, pending.ID)
}

func TestTrackAbandonsWhenOptionBelongsToAnotherQuestion(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)
	created := svc.Track(ctx, 1, "c1", "I feel hopeless every day")

	mapper.option = optionMatch("BDI", "Sadness", "I am sad all the time", 2, 0.9)
	mapper.question = questionMatch("BDI", "Sadness", 0.3)
	res := svc.Track(ctx, 1, "c1", "I am sad all the time")
	require.NoError(t, res.Err)
	assert.Equal(t, created.CreatedID, res.AbandonedID)
	assert.Zero(t, res.CreatedID)

	pending, err := repo.GetPending(ctx, 1, "c1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestTrackMapperErrorLeavesLedgerUntouched(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)
	created := svc.Track(ctx, 1, "c1", "I feel hopeless every day")

	mapper.err = errors.New("connection refused")
	res := svc.Track(ctx, 1, "c1", "several days")
	require.Error(t, res.Err)
	assert.Zero(t, res.ResolvedID)
	assert.Zero(t, res.AbandonedID)

	pending, err := repo.GetPending(ctx, 1, "c1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, created.CreatedID, pending.ID)
}

func TestTrackUnsuccessfulQuestionMappingCreatesNothing(t *testing.T) {
	svc, repo, _ := newAssessmentFixture(t)
	ctx := context.Background()

	res := svc.Track(ctx, 1, "c1", "what a nice day")
	require.NoError(t, res.Err)
	assert.Zero(t, res.CreatedID)

	records, err := repo.ListByConversation(ctx, 1, "c1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTrackRejectsUnknownCategory(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("GAD-7", "Feeling nervous", 0.9)

	res := svc.Track(ctx, 1, "c1", "I am nervous")
	require.Error(t, res.Err)

	records, err := repo.ListByConversation(ctx, 1, "c1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTrackKeepsSinglePendingRecord(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()
	mapper.question = questionMatch("PHQ-9", hopelessQuestion, 0.82)
	mapper.option = optionMatch("PHQ-9", hopelessQuestion, "Several days", 1, 0.2)

	for i := 0; i < 4; i++ {
		svc.Track(ctx, 1, "c1", "I feel hopeless every day")
	}

	records, err := repo.ListByConversation(ctx, 1, "c1")
	require.NoError(t, err)
	pendingCount := 0
	for _, r := range records {
		if r.IsPending() {
			pendingCount++
		}
	}
	assert.Equal(t, 1, pendingCount)
	assert.Len(t, records, 4)
}

func TestSummarizeGroupsScoredRecords(t *testing.T) {
	svc, repo, mapper := newAssessmentFixture(t)
	ctx := context.Background()

	answer := func(conv, category, question, option string, score int) {
		mapper.question = questionMatch(category, question, 0.9)
		mapper.option = nil
		created := svc.Track(ctx, 1, conv, question)
		require.NotZero(t, created.CreatedID)
		require.NoError(t, repo.Resolve(ctx, created.CreatedID, option, score))
	}
	answer("c1", "PHQ-9", hopelessQuestion, "Nearly every day", 3)
	answer("c1", "PHQ-9", "Little interest or pleasure in doing things", "Nearly every day", 3)
	answer("c1", "BDI", "Sadness", "I am sad all the time", 2)
	answer("c2", "HDRS", "Insomnia: early in the night", "Occasional difficulty", 1)

	mapper.question = questionMatch("PHQ-9", "Poor appetite or overeating", 0.9)
	require.NotZero(t, svc.Track(ctx, 1, "c1", "not hungry").CreatedID)

	summary, err := svc.Summarize(ctx, 1, SummaryFilter{})
	require.NoError(t, err)
	require.Len(t, summary, 2)

	phq := summary["c1"]["PHQ-9"]
	require.NotNil(t, phq)
	assert.Equal(t, 6, phq.TotalScore)
	assert.Equal(t, "Mild", phq.Severity)
	assert.Len(t, phq.Responses, 2)

	assert.Equal(t, 2, summary["c1"]["BDI"].TotalScore)
	assert.Equal(t, "Minimal", summary["c1"]["BDI"].Severity)
	assert.Equal(t, "Normal", summary["c2"]["HDRS"].Severity)

	filtered, err := svc.Summarize(ctx, 1, SummaryFilter{Category: "hdrs"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Contains(t, filtered, "c2")

	_, err = svc.Summarize(ctx, 1, SummaryFilter{Category: "GAD-7"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Contains(t, err.Error(), "[PHQ-9 BDI HDRS]")
}
