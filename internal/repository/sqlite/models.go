package sqlite

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/document"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
)

type CategoryModel struct {
	ID                  string `gorm:"primaryKey"`
	Name                string `gorm:"not null;uniqueIndex"`
	Slug                string `gorm:"not null;uniqueIndex"`
	Icon                string
	Color               string
	CreatedBy           string `gorm:"not null"`
	LegacySubcategories string `gorm:"not null"`
	Nodes               string `gorm:"not null"`
	Version             int64  `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           *time.Time `gorm:"autoUpdateTime:false"`
}

func (CategoryModel) TableName() string { return "categories" }

type OutboxEventModel struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	EventID             string `gorm:"not null;uniqueIndex"`
	EventType           string `gorm:"not null"`
	AggregateID         string `gorm:"not null"`
	Payload             []byte `gorm:"not null"`
	Status              string `gorm:"not null"`
	CreatedAt           time.Time
	ProcessingStartedAt *time.Time
	ProcessedAt         *time.Time
}

func (OutboxEventModel) TableName() string { return "outbox_events" }

func toCategoryModel(c *domain.Category) (*CategoryModel, error) {
	legacy, err := json.Marshal(document.FromSubcategories(c.LegacySubcategories))
	if err != nil {
		return nil, err
	}

	nodes, err := json.Marshal(document.FromNodes(c.Nodes))
	if err != nil {
		return nil, err
	}

	return &CategoryModel{
		ID:                  c.ID,
		Name:                c.Name,
		Slug:                c.Slug,
		Icon:                c.Icon,
		Color:               c.Color,
		CreatedBy:           c.CreatedBy,
		LegacySubcategories: string(legacy),
		Nodes:               string(nodes),
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}, nil
}

func toCategoryEntity(m *CategoryModel) (*domain.Category, error) {
	var legacy []*document.Subcategory
	if err := json.Unmarshal([]byte(m.LegacySubcategories), &legacy); err != nil {
		return nil, err
	}

	var nodes []*document.Node
	if err := json.Unmarshal([]byte(m.Nodes), &nodes); err != nil {
		return nil, err
	}

	createdAt := m.CreatedAt.UTC()
	var updatedAt *time.Time
	if m.UpdatedAt != nil {
		t := m.UpdatedAt.UTC()
		updatedAt = &t
	}

	return &domain.Category{
		ID:                  m.ID,
		Name:                m.Name,
		Slug:                m.Slug,
		Icon:                m.Icon,
		Color:               m.Color,
		CreatedBy:           m.CreatedBy,
		LegacySubcategories: document.ToSubcategories(legacy),
		Nodes:               document.ToNodes(nodes),
		Version:             m.Version,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

func toOutboxModel(event *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          event.ID,
		EventID:     event.EventID,
		EventType:   string(event.EventType),
		AggregateID: event.AggregateID,
		Payload:     event.Payload,
		Status:      string(event.Status),
		CreatedAt:   event.CreatedAt,
		ProcessedAt: event.ProcessedAt,
	}
}

func toOutboxEntity(m *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          m.ID,
		EventID:     m.EventID,
		EventType:   usecase.OutboxEventType(m.EventType),
		AggregateID: m.AggregateID,
		Payload:     m.Payload,
		Status:      usecase.OutboxStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}
}
