package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/jitter"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	listenWaitTimeout   = 30 * time.Second
	reconnectBaseDelay  = time.Second
	reconnectMaxDelay   = 30 * time.Second
	notificationsBuffer = 1
)

// OutboxListener подписывается на канал outbox_pending отдельным соединением
// и сигнализирует worker'у о новых событиях.
type OutboxListener struct {
	dsn     string
	logger  logger.Logger
	signals chan struct{}
}

func NewOutboxListener(dsn string, logger logger.Logger) *OutboxListener {
	return &OutboxListener{
		dsn:     dsn,
		logger:  logger,
		signals: make(chan struct{}, notificationsBuffer),
	}
}

// Notifications возвращает канал сигналов. Подряд идущие уведомления схлопываются в один сигнал.
func (l *OutboxListener) Notifications() <-chan struct{} {
	return l.signals
}

// Run слушает уведомления до отмены ctx, переподключаясь при обрыве соединения.
func (l *OutboxListener) Run(ctx context.Context) {
	attempt := 0
	for ctx.Err() == nil {
		err := l.listen(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		delay := jitter.ExponentialBackoff(reconnectBaseDelay, reconnectMaxDelay, attempt, jitter.DefaultJitter)
		l.logger.Warnf("Outbox listener connection lost: %v. Reconnecting in %s", err, delay)
		attempt++

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (l *OutboxListener) listen(ctx context.Context) error {
	const op = "OutboxListener.listen"

	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+OutboxChannel); err != nil {
		return e.Wrap(op, err)
	}
	l.logger.Infof("Subscribed to '%s' channel", OutboxChannel)

	for {
		waitCtx, cancel := context.WithTimeout(ctx, listenWaitTimeout)
		notification, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return e.Wrap(op, err)
		}

		if notification.Channel == OutboxChannel {
			l.signal()
		}
	}
}

func (l *OutboxListener) signal() {
	select {
	case l.signals <- struct{}{}:
	default:
	}
}
