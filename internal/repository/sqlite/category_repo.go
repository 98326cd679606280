package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/jimlawless/whereami"
	"gorm.io/gorm"
)

// CategoryRepo хранит агрегаты категорий в SQLite, одна строка на категорию.
type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Version = 1

	model, err := toCategoryModel(category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := tr.GormFromCtx(ctx, r.db).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return category, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	var model CategoryModel
	if err := tr.GormFromCtx(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	category, err := toCategoryEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return category, nil
}

// Save перезаписывает агрегат целиком при совпадении версии.
func (r *CategoryRepo) Save(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	model, err := toCategoryModel(category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db := tr.GormFromCtx(ctx, r.db)
	res := db.Model(&CategoryModel{}).
		Where("id = ? AND version = ?", category.ID, category.Version).
		Updates(map[string]any{
			"name":                 model.Name,
			"slug":                 model.Slug,
			"icon":                 model.Icon,
			"color":                model.Color,
			"legacy_subcategories": model.LegacySubcategories,
			"nodes":                model.Nodes,
			"version":              category.Version + 1,
			"updated_at":           model.UpdatedAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&CategoryModel{}).Where("id = ?", category.ID).Count(&count).Error; err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if count == 0 {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVersionConflict)
	}

	category.Version++
	return category, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res := tr.GormFromCtx(ctx, r.db).Delete(&CategoryModel{}, "id = ?", id)
	if res.Error != nil {
		return e.Wrap(whereami.WhereAmI(), res.Error)
	}
	if res.RowsAffected == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := tr.GormFromCtx(ctx, r.db).Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	categories := make([]*domain.Category, 0, len(models))
	for i := range models {
		category, err := toCategoryEntity(&models[i])
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
