package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/cfg"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/jitter"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// Notifier сообщает о появлении новых событий, чтобы не ждать очередного опроса.
type Notifier interface {
	Notifications() <-chan struct{}
}

// OutboxWorker публикует события outbox в Kafka. События забираются по сигналу
// Notifier (если он есть) и периодическим опросом; неотправленные события
// возвращаются в очередь и повторяются с экспоненциальной задержкой.
type OutboxWorker struct {
	repo         usecase.OutboxRepository
	logger       logger.Logger
	producer     usecase.MessageProducer
	notifier     Notifier
	pollInterval time.Duration
	batchSize    int

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	failures int
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	notifier Notifier,
	cfg *cfg.OutboxCfg,
) *OutboxWorker {
	return &OutboxWorker{
		repo:         repo,
		logger:       logger,
		producer:     producer,
		notifier:     notifier,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop останавливает worker и дожидается завершения текущего батча.
func (w *OutboxWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	var notifications <-chan struct{}
	if w.notifier != nil {
		notifications = w.notifier.Notifications()
	}

	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	for {
		timer := time.NewTimer(w.nextDelay())

		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Infof("Outbox worker stopped")
			return
		case <-notifications:
			timer.Stop()
			w.logger.Debugf("Received outbox notification, draining outbox events")
		case <-timer.C:
		}

		w.drain(ctx)
	}
}

// nextDelay - интервал опроса, после неудач растущий экспоненциально.
func (w *OutboxWorker) nextDelay() time.Duration {
	if w.failures == 0 {
		return jitter.Duration(w.pollInterval, jitter.DefaultJitter)
	}
	return jitter.ExponentialBackoff(retryBaseDelay, retryMaxDelay, w.failures-1, jitter.DefaultJitter)
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.failures++
			w.logger.Warnf("Outbox batch processing failed (attempt %d): %v", w.failures, err)
			return
		}

		w.failures = 0
		if !hasMore {
			return
		}
	}
}

// processBatch публикует один батч. Возвращает true, если в очереди могут остаться события.
// При первой неудаче оставшиеся события батча возвращаются в очередь.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	const op = "OutboxWorker.processBatch"

	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	if len(events) == 0 {
		return false, nil
	}

	for i, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.release(events[i:])
			return false, e.Wrap(op, err)
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(event.EventID, event.EventType, event.AggregateID, event.Payload)
	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		if transient(err) {
			return e.Wrap(fmt.Sprintf("event %s: temporary kafka failure", event.EventID), err)
		}
		return e.Wrap(fmt.Sprintf("event %s: kafka failure", event.EventID), err)
	}
	return nil
}

// release не зависит от ctx worker'а: при остановке события всё равно должны вернуться в очередь.
func (w *OutboxWorker) release(events []*usecase.OutboxEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, event := range events {
		if err := w.repo.Release(ctx, event.ID); err != nil {
			w.logger.Warnf("release outbox event %d failed: %v", event.ID, err)
		}
	}
}

// transient сообщает, что ошибка сетевая или временная на стороне брокера.
func transient(err error) bool {
	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
