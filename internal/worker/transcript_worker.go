package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"sarvuday-server/internal/model"
)

// TranscriptWriter renders and stores one transcript.
type TranscriptWriter interface {
	Write(ctx context.Context, job model.TranscriptJob) (bool, error)
}

// TranscriptWorker consumes transcript export jobs from RabbitMQ.
type TranscriptWorker struct {
	conn      *amqp.Connection
	writer    TranscriptWriter
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTranscriptWorker(conn *amqp.Connection, writer TranscriptWriter, queueName string, logger *zap.Logger) *TranscriptWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptWorker{
		conn:      conn,
		writer:    writer,
		queueName: queueName,
		logger:    logger.Named("transcript_worker"),
	}
}

func (w *TranscriptWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Warn("transcript job failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("transcript worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *TranscriptWorker) handle(ctx context.Context, body []byte) error {
	var job model.TranscriptJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode transcript job failed: %w", err)
	}
	return writeJob(ctx, w.writer, w.logger, job)
}

func (w *TranscriptWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func writeJob(ctx context.Context, writer TranscriptWriter, logger *zap.Logger, job model.TranscriptJob) error {
	written, err := writer.Write(ctx, job)
	if err != nil {
		return err
	}
	if written {
		logger.Debug("transcript written",
			zap.Uint("user_id", job.UserID),
			zap.String("conversation_id", job.ConversationID))
	}
	return nil
}
