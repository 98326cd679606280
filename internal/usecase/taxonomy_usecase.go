package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/DRSN-tech/taxonomy-backend/pkg/slug"
	"github.com/google/uuid"
)

const backgroundCacheTimeout = 500 * time.Millisecond

// TaxonomyUseCase реализует операции над деревьями категорий.
// Каждая операция - это load → изменение агрегата → save в одной транзакции
// вместе с событием outbox; кэш сбрасывается после коммита.
type TaxonomyUseCase struct {
	categoryRepo CategoryRepository
	outboxRepo   OutboxRepository
	cacheRepo    CacheRepository
	txManager    TxManager
	logger       logger.Logger
	nodes        *tree.Engine
	legacy       *tree.Engine
	now          func() time.Time
}

func NewTaxonomyUC(
	categoryRepo CategoryRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	logger logger.Logger,
) *TaxonomyUseCase {
	return &TaxonomyUseCase{
		categoryRepo: categoryRepo,
		outboxRepo:   outboxRepo,
		cacheRepo:    cacheRepo,
		txManager:    txManager,
		logger:       logger,
		nodes:        tree.NewEngine(tree.GenericPolicy),
		legacy:       tree.NewEngine(tree.LegacyPolicy),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// mutation изменяет загруженный агрегат и возвращает идентификаторы затронутых элементов.
// nil означает, что агрегат не изменился и сохранять его не нужно.
type mutation func(category *domain.Category) ([]string, error)

// ListCategories возвращает все категории, начиная с самых новых.
func (t *TaxonomyUseCase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	const op = "TaxonomyUseCase.ListCategories"

	cached, err := t.cacheRepo.GetCategories(ctx)
	if err != nil {
		t.logger.Warnf("Failed to read categories from cache: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	generation, genErr := t.cacheRepo.ListGeneration(ctx)
	if genErr != nil {
		t.logger.Warnf("Failed to read categories cache generation: %v", e.Wrap(op, genErr))
	}

	categories, err := t.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if genErr == nil {
		t.cacheInBackground(op, func(ctx context.Context) error {
			return t.cacheRepo.SetCategories(ctx, categories, generation)
		})
	}

	return categories, nil
}

// GetCategory возвращает одну категорию со всеми вложенными структурами.
func (t *TaxonomyUseCase) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	const op = "TaxonomyUseCase.GetCategory"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrIDRequired)
	}

	cached, err := t.cacheRepo.GetCategory(ctx, id)
	if err != nil {
		t.logger.Warnf("Failed to read category from cache: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	// поколение читается до загрузки, иначе можно закэшировать агрегат старше инвалидации
	generation, genErr := t.cacheRepo.CategoryGeneration(ctx, id)
	if genErr != nil {
		t.logger.Warnf("Failed to read category cache generation: %v", e.Wrap(op, genErr))
	}

	category, err := t.categoryRepo.Get(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if genErr == nil {
		t.cacheInBackground(op, func(ctx context.Context) error {
			return t.cacheRepo.SetCategory(ctx, category, generation)
		})
	}

	return category, nil
}

// CreateCategory создаёт пустую категорию. Имя и slug уникальны среди всех категорий.
func (t *TaxonomyUseCase) CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.CreateCategory"

	name, categorySlug, err := normalizeName(req.Name)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, e.Wrap(op, e.ErrOwnerRequired)
	}

	category := domain.NewCategory(uuid.NewString(), name, categorySlug, req.Icon, req.Color, req.OwnerID, t.now())

	var created *domain.Category
	err = t.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = t.categoryRepo.Create(ctx, category)
		if err != nil {
			return err
		}

		return t.writeEvent(ctx, CategoryCreated, created, "CreateCategory", []string{created.ID})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	t.invalidateCache(ctx)
	t.logger.Infof("Category created: id=%s slug=%s", created.ID, created.Slug)

	return created, nil
}

// UpdateCategory меняет имя, иконку или цвет категории.
func (t *TaxonomyUseCase) UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.UpdateCategory"

	category, err := t.mutate(ctx, req.CategoryID, "UpdateCategory", CategoryUpdated, func(c *domain.Category) ([]string, error) {
		changed := false
		if req.Name != nil {
			name, categorySlug, err := normalizeName(*req.Name)
			if err != nil {
				return nil, err
			}
			c.Name, c.Slug = name, categorySlug
			changed = true
		}
		if req.Icon != nil {
			c.Icon = *req.Icon
			changed = true
		}
		if req.Color != nil {
			c.Color = *req.Color
			changed = true
		}

		if !changed {
			return nil, nil
		}

		return []string{c.ID}, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

// DeleteCategory удаляет категорию вместе с обеими вложенными структурами.
func (t *TaxonomyUseCase) DeleteCategory(ctx context.Context, id string) error {
	const op = "TaxonomyUseCase.DeleteCategory"

	if strings.TrimSpace(id) == "" {
		return e.Wrap(op, e.ErrIDRequired)
	}

	err := t.txManager.Do(ctx, func(ctx context.Context) error {
		category, err := t.categoryRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if err := t.categoryRepo.Delete(ctx, id); err != nil {
			return err
		}

		return t.writeEvent(ctx, CategoryDeleted, category, "DeleteCategory", []string{category.ID})
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	t.invalidateCache(ctx, id)
	t.logger.Infof("Category deleted: id=%s", id)

	return nil
}

// AddNode добавляет узел в обобщённое дерево категории.
func (t *TaxonomyUseCase) AddNode(ctx context.Context, req *AddNodeReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.AddNode"

	category, err := t.mutate(ctx, req.CategoryID, "AddNode", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		nodes, node, err := t.nodes.Insert(c.Nodes, req.ParentPath, req.Name, req.LegacyRef)
		if err != nil {
			return nil, err
		}
		c.Nodes = nodes

		return []string{node.ID}, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

// UpdateNode переименовывает узел обобщённого дерева.
func (t *TaxonomyUseCase) UpdateNode(ctx context.Context, req *UpdateNodeReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.UpdateNode"

	category, err := t.mutate(ctx, req.CategoryID, "UpdateNode", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.rename(t.nodes, c.Nodes, req.FullPath, req.Name)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

// DeleteNode удаляет узел обобщённого дерева вместе с поддеревом.
func (t *TaxonomyUseCase) DeleteNode(ctx context.Context, req *DeleteNodeReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.DeleteNode"

	category, err := t.mutate(ctx, req.CategoryID, "DeleteNode", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		nodes, removed, err := t.nodes.Delete(c.Nodes, req.FullPath)
		if err != nil {
			return nil, err
		}
		c.Nodes = nodes

		return tree.SubtreeIDs(removed), nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) AddSubcategory(ctx context.Context, req *AddSubcategoryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.AddSubcategory"

	category, err := t.mutate(ctx, req.CategoryID, "AddSubcategory", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.insertLegacy(c, nil, req.Name)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) UpdateSubcategory(ctx context.Context, req *UpdateSubcategoryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.UpdateSubcategory"

	category, err := t.mutate(ctx, req.CategoryID, "UpdateSubcategory", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.renameLegacy(c, []string{req.SubcategoryID}, req.Name)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) DeleteSubcategory(ctx context.Context, req *DeleteSubcategoryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.DeleteSubcategory"

	category, err := t.mutate(ctx, req.CategoryID, "DeleteSubcategory", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.deleteLegacy(c, []string{req.SubcategoryID})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) AddSecondary(ctx context.Context, req *AddSecondaryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.AddSecondary"

	category, err := t.mutate(ctx, req.CategoryID, "AddSecondary", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.insertLegacy(c, []string{req.SubcategoryID}, req.Name)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) UpdateSecondary(ctx context.Context, req *UpdateSecondaryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.UpdateSecondary"

	category, err := t.mutate(ctx, req.CategoryID, "UpdateSecondary", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.renameLegacy(c, []string{req.SubcategoryID, req.SecondaryID}, req.Name)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (t *TaxonomyUseCase) DeleteSecondary(ctx context.Context, req *DeleteSecondaryReq) (*domain.Category, error) {
	const op = "TaxonomyUseCase.DeleteSecondary"

	category, err := t.mutate(ctx, req.CategoryID, "DeleteSecondary", TaxonomyChanged, func(c *domain.Category) ([]string, error) {
		return t.deleteLegacy(c, []string{req.SubcategoryID, req.SecondaryID})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

// mutate загружает агрегат, применяет apply и сохраняет тот же агрегат обратно.
func (t *TaxonomyUseCase) mutate(ctx context.Context, categoryID, operation string, eventType OutboxEventType, apply mutation) (*domain.Category, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, e.ErrIDRequired
	}

	var result *domain.Category
	err := t.txManager.Do(ctx, func(ctx context.Context) error {
		category, err := t.categoryRepo.Get(ctx, categoryID)
		if err != nil {
			return err
		}

		targets, err := apply(category)
		if err != nil {
			return err
		}

		if targets == nil {
			result = category
			return nil
		}

		category.Touch(t.now())
		result, err = t.categoryRepo.Save(ctx, category)
		if err != nil {
			return err
		}

		return t.writeEvent(ctx, eventType, result, operation, targets)
	})
	if err != nil {
		return nil, err
	}

	t.invalidateCache(ctx, categoryID)

	return result, nil
}

func (t *TaxonomyUseCase) rename(en *tree.Engine, root []*tree.Node, path []string, name *string) ([]string, error) {
	newName := ""
	if name != nil {
		newName = *name
	}

	node, err := en.Rename(root, path, newName)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(newName) == "" {
		return nil, nil
	}

	return []string{node.ID}, nil
}

func (t *TaxonomyUseCase) insertLegacy(c *domain.Category, parentPath []string, name string) ([]string, error) {
	legacy, node, err := t.legacy.Insert(c.LegacyTree(), parentPath, name, nil)
	if err != nil {
		return nil, err
	}
	c.SetLegacyTree(legacy)

	return []string{node.ID}, nil
}

func (t *TaxonomyUseCase) renameLegacy(c *domain.Category, path []string, name *string) ([]string, error) {
	legacy := c.LegacyTree()
	targets, err := t.rename(t.legacy, legacy, path, name)
	if err != nil {
		return nil, err
	}
	c.SetLegacyTree(legacy)

	return targets, nil
}

func (t *TaxonomyUseCase) deleteLegacy(c *domain.Category, path []string) ([]string, error) {
	legacy, removed, err := t.legacy.Delete(c.LegacyTree(), path)
	if err != nil {
		return nil, err
	}
	c.SetLegacyTree(legacy)

	return tree.SubtreeIDs(removed), nil
}

func (t *TaxonomyUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, category *domain.Category, operation string, targets []string) error {
	event, err := NewCategoryChangeEvent(eventType, category, operation, targets, t.now())
	if err != nil {
		return err
	}

	_, err = t.outboxRepo.Create(ctx, event)
	return err
}

// invalidateCache сбрасывает кэш после коммита. Ошибки кэша не влияют на результат операции.
func (t *TaxonomyUseCase) invalidateCache(ctx context.Context, ids ...string) {
	if err := t.cacheRepo.Invalidate(ctx, ids...); err != nil {
		t.logger.Warnf("Failed to invalidate category cache: %v", err)
	}
}

// cacheInBackground записывает данные в кэш, не задерживая ответ.
func (t *TaxonomyUseCase) cacheInBackground(op string, fn func(ctx context.Context) error) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := fn(bgCtx); err != nil {
			t.logger.Warnf("Failed to cache categories in background: %v", e.Wrap(op, err))
		}
	}()
}

// normalizeName проверяет имя и вычисляет slug.
func normalizeName(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "", e.ErrNameRequired
	}

	s := slug.Normalize(name)
	if s == "" {
		return "", "", e.ErrEmptySlug
	}

	return name, s, nil
}
