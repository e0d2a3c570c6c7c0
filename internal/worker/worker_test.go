package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sarvuday-server/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingWriter struct {
	mu   sync.Mutex
	jobs []model.TranscriptJob
	err  error
}

func (w *recordingWriter) Write(_ context.Context, job model.TranscriptJob) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs = append(w.jobs, job)
	return w.err == nil, w.err
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.jobs)
}

func TestLocalDispatcherDrainsOnClose(t *testing.T) {
	writer := &recordingWriter{}
	d := NewLocalDispatcher(writer, 8, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Enqueue(context.Background(), model.TranscriptJob{UserID: 1, ConversationID: "c1"}))
	}
	d.Close()

	assert.Equal(t, 5, writer.count())
	assert.ErrorIs(t, d.Enqueue(context.Background(), model.TranscriptJob{UserID: 1}), ErrDispatcherClosed)
	d.Close()
}

func TestLocalDispatcherSurvivesWriterErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("disk full")}
	d := NewLocalDispatcher(writer, 1, nil)

	require.NoError(t, d.Enqueue(context.Background(), model.TranscriptJob{UserID: 1, ConversationID: "c1"}))
	require.NoError(t, d.Enqueue(context.Background(), model.TranscriptJob{UserID: 1, ConversationID: "c2"}))
	d.Close()

	assert.Equal(t, 2, writer.count())
}

func TestTranscriptWorkerHandle(t *testing.T) {
	writer := &recordingWriter{}
	w := NewTranscriptWorker(nil, writer, "transcripts", nil)

	require.NoError(t, w.handle(context.Background(), []byte(`{"userId":4,"conversationId":"c9"}`)))
	require.Len(t, writer.jobs, 1)
	assert.Equal(t, uint(4), writer.jobs[0].UserID)
	assert.Equal(t, "c9", writer.jobs[0].ConversationID)

	assert.Error(t, w.handle(context.Background(), []byte(`not json`)))
	w.Close()
}
