package usecase

import (
	"context"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
)

// CategoryRepository загружает и сохраняет агрегат категории целиком.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	// Get возвращает агрегат или e.ErrCategoryNotFound.
	Get(ctx context.Context, id string) (*domain.Category, error)
	// Save заменяет агрегат целиком, если его версия совпадает с сохранённой,
	// иначе возвращает e.ErrVersionConflict. При успехе версия увеличивается.
	Save(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	// List возвращает категории, начиная с самых новых.
	List(ctx context.Context) ([]*domain.Category, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Release возвращает событие в очередь после неудачной публикации.
	Release(ctx context.Context, id int64) error
}

// CacheRepository - кэш чтения категорий. Промах кэша возвращает (nil, nil).
//
// Заполнение кэша условное: перед загрузкой из хранилища читается поколение записи,
// а Set* пишут, только если поколение с тех пор не изменилось. Invalidate увеличивает
// поколение, поэтому заполнение, прочитавшее агрегат до изменения, не перезапишет
// инвалидированную запись.
type CacheRepository interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CategoryGeneration(ctx context.Context, id string) (int64, error)
	SetCategory(ctx context.Context, category *domain.Category, generation int64) error
	GetCategories(ctx context.Context) ([]*domain.Category, error)
	ListGeneration(ctx context.Context) (int64, error)
	SetCategories(ctx context.Context, categories []*domain.Category, generation int64) error
	// Invalidate удаляет из кэша указанные категории и список категорий и меняет их поколения.
	Invalidate(ctx context.Context, ids ...string) error
}

// TxManager выполняет fn в одной транзакции хранилища.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
