package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/google/uuid"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	CategoryCreated OutboxEventType = "category.created"
	CategoryUpdated OutboxEventType = "category.updated"
	CategoryDeleted OutboxEventType = "category.deleted"
	TaxonomyChanged OutboxEventType = "taxonomy.changed"
)

// OutboxEvent - событие об изменении категории, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string
	Payload     []byte // JSON CategoryChange
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// CategoryChange - полезная нагрузка события.
type CategoryChange struct {
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Version    int64     `json:"version"`
	Operation  string    `json:"operation"`
	TargetIDs  []string  `json:"targetIds"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewCategoryChangeEvent формирует событие outbox для сохранённой категории.
// operation - имя операции таксономии (например, "AddNode"), targetIDs - затронутые узлы.
func NewCategoryChangeEvent(eventType OutboxEventType, category *domain.Category, operation string, targetIDs []string, now time.Time) (*OutboxEvent, error) {
	if targetIDs == nil {
		targetIDs = []string{}
	}

	payload, err := json.Marshal(CategoryChange{
		CategoryID: category.ID,
		Name:       category.Name,
		Slug:       category.Slug,
		Version:    category.Version,
		Operation:  operation,
		TargetIDs:  targetIDs,
		OccurredAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: category.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}, nil
}
