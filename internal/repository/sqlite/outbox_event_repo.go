package sqlite

import (
	"context"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/jimlawless/whereami"
	"gorm.io/gorm"
)

type OutboxEventRepo struct {
	db *gorm.DB
}

func NewOutboxEventRepo(db *gorm.DB) *OutboxEventRepo {
	return &OutboxEventRepo{db: db}
}

func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	model := toOutboxModel(event)
	if err := tr.GormFromCtx(ctx, o.db).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrConflict)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toOutboxEntity(model), nil
}

// GetAndMarkAsProcessing забирает до limit ожидающих событий в порядке создания.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	var models []OutboxEventModel

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", string(usecase.Pending)).
			Order("created_at, id").
			Limit(limit).
			Find(&models).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(models))
		for i := range models {
			ids = append(ids, models[i].ID)
			models[i].Status = string(usecase.Processing)
		}

		return tx.Model(&OutboxEventModel{}).
			Where("id IN ? AND status = ?", ids, string(usecase.Pending)).
			Updates(map[string]any{
				"status":                string(usecase.Processing),
				"processing_started_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	events := make([]*usecase.OutboxEvent, 0, len(models))
	for i := range models {
		events = append(events, toOutboxEntity(&models[i]))
	}

	return events, nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	err := o.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ? AND status = ?", id, string(usecase.Processing)).
		Updates(map[string]any{
			"status":       string(usecase.Processed),
			"processed_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (o *OutboxEventRepo) Release(ctx context.Context, id int64) error {
	err := o.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ? AND status = ?", id, string(usecase.Processing)).
		Updates(map[string]any{
			"status":                string(usecase.Pending),
			"processing_started_at": nil,
		}).Error
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
