package converter

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/document"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToModel(entity *domain.Category) (*CategoryModel, error)
	ToEntity(model *CategoryModel) (*domain.Category, error)
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type categoryConverter struct{}

func NewCategoryConverter() CategoryConverter {
	return categoryConverter{}
}

func (categoryConverter) ToModel(entity *domain.Category) (*CategoryModel, error) {
	legacy, err := json.Marshal(document.FromSubcategories(entity.LegacySubcategories))
	if err != nil {
		return nil, err
	}

	nodes, err := json.Marshal(document.FromNodes(entity.Nodes))
	if err != nil {
		return nil, err
	}

	return &CategoryModel{
		ID:                  entity.ID,
		Name:                entity.Name,
		Slug:                entity.Slug,
		Icon:                entity.Icon,
		Color:               entity.Color,
		CreatedBy:           entity.CreatedBy,
		LegacySubcategories: legacy,
		Nodes:               nodes,
		Version:             entity.Version,
		CreatedAt:           entity.CreatedAt,
		UpdatedAt:           entity.UpdatedAt,
	}, nil
}

func (categoryConverter) ToEntity(model *CategoryModel) (*domain.Category, error) {
	var legacy []*document.Subcategory
	if len(model.LegacySubcategories) > 0 {
		if err := json.Unmarshal(model.LegacySubcategories, &legacy); err != nil {
			return nil, err
		}
	}

	var nodes []*document.Node
	if len(model.Nodes) > 0 {
		if err := json.Unmarshal(model.Nodes, &nodes); err != nil {
			return nil, err
		}
	}

	return &domain.Category{
		ID:                  model.ID,
		Name:                model.Name,
		Slug:                model.Slug,
		Icon:                model.Icon,
		Color:               model.Color,
		CreatedBy:           model.CreatedBy,
		LegacySubcategories: document.ToSubcategories(legacy),
		Nodes:               document.ToNodes(nodes),
		Version:             model.Version,
		CreatedAt:           model.CreatedAt.UTC(),
		UpdatedAt:           utcPointer(model.UpdatedAt),
	}, nil
}

type outboxEventConverter struct{}

func NewOutboxEventConverter() OutboxEventConverter {
	return outboxEventConverter{}
}

func (outboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (outboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c outboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}
	return res
}

func utcPointer(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
