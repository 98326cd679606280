package converter

import "time"

// CategoryModel представляет запись таблицы categories в PostgreSQL.
// Вложенные структуры хранятся в jsonb-колонках.
type CategoryModel struct {
	ID                  string     `db:"id"`
	Name                string     `db:"name"`
	Slug                string     `db:"slug"`
	Icon                string     `db:"icon"`
	Color               string     `db:"color"`
	CreatedBy           string     `db:"created_by"`
	LegacySubcategories []byte     `db:"legacy_subcategories"`
	Nodes               []byte     `db:"nodes"`
	Version             int64      `db:"version"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
