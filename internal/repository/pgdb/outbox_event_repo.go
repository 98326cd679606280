package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/taxonomy-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel - канал LISTEN/NOTIFY, в который сообщается о новых событиях.
const OutboxChannel = "outbox_pending"

const outboxColumns = "id, event_id, event_type, aggregate_id, payload, status, created_at, processed_at"

type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{pool: pool, conv: conv}
}

// Create записывает событие в транзакции изменения категории.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(event)
	args := pgx.NamedArgs{
		"eventID":     model.EventID,
		"eventType":   model.EventType,
		"aggregateID": model.AggregateID,
		"payload":     model.Payload,
		"status":      model.Status,
		"createdAt":   model.CreatedAt,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO outbox_events (event_id, event_type, aggregate_id, payload, status, created_at)
		VALUES (@eventID, @eventType, @aggregateID, @payload, @status, @createdAt)
		RETURNING id`, args).Scan(&model.ID)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event %s: %w", whereami.WhereAmI(), event.EventID, e.ErrConflict)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// уведомление уходит слушателям только после коммита транзакции
	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, model.AggregateID); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing захватывает до limit самых старых pending-событий.
// SKIP LOCKED позволяет нескольким экземплярам сервиса разбирать очередь параллельно.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	var models []*converter.OutboxEventModel

	err := pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE outbox_events
			SET status = $1, processing_started_at = now()
			WHERE id IN (
				SELECT id FROM outbox_events
				WHERE status = $2
				ORDER BY created_at, id
				LIMIT $3
				FOR UPDATE SKIP LOCKED
			)
			RETURNING `+outboxColumns,
			string(usecase.Processing), string(usecase.Pending), limit)
		if err != nil {
			return err
		}

		models, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.OutboxEventModel])
		return err
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

// MarkAsProcessed не считает ошибкой отсутствие строки в статусе processing.
func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return o.transition(ctx, id, usecase.Processing, usecase.Processed,
		"processed_at = now()")
}

// Release возвращает событие в статус pending для повторной публикации.
func (o *OutboxEventRepo) Release(ctx context.Context, id int64) error {
	return o.transition(ctx, id, usecase.Processing, usecase.Pending,
		"processing_started_at = NULL")
}

func (o *OutboxEventRepo) transition(ctx context.Context, id int64, from, to usecase.OutboxStatus, set string) error {
	query := "UPDATE outbox_events SET status = $1, " + set + " WHERE id = $2 AND status = $3"

	if _, err := o.pool.Exec(ctx, query, string(to), id, string(from)); err != nil {
		return fmt.Errorf("%s: event %d %s -> %s: %w", whereami.WhereAmI(), id, from, to, err)
	}

	return nil
}
