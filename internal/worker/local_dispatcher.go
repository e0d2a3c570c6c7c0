package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"sarvuday-server/internal/model"
)

var ErrDispatcherClosed = errors.New("transcript dispatcher closed")

// LocalDispatcher runs transcript jobs on an in-process goroutine. It stands
// in for the broker when no RabbitMQ URL is configured.
type LocalDispatcher struct {
	writer TranscriptWriter
	logger *zap.Logger
	jobs   chan model.TranscriptJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewLocalDispatcher(writer TranscriptWriter, buffer int, logger *zap.Logger) *LocalDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &LocalDispatcher{
		writer: writer,
		logger: logger.Named("transcript_dispatcher"),
		jobs:   make(chan model.TranscriptJob, buffer),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands a job to the dispatcher goroutine, waiting for buffer space
// until ctx is done.
func (d *LocalDispatcher) Enqueue(ctx context.Context, job model.TranscriptJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (d *LocalDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *LocalDispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		if err := writeJob(context.Background(), d.writer, d.logger, job); err != nil {
			d.logger.Warn("transcript job failed",
				zap.String("conversation_id", job.ConversationID),
				zap.Error(err))
		}
	}
}
