package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const categoryColumns = `id, name, slug, icon, color, created_by, legacy_subcategories, nodes, version, created_at, updated_at`

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
// Агрегат хранится одной строкой, вложенные структуры в jsonb.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Version = 1

	model, err := c.conv.ToModel(category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tr.QuerierFromCtx(ctx, c.pool).Exec(ctx, query,
		model.ID, model.Name, model.Slug, model.Icon, model.Color, model.CreatedBy,
		model.LegacySubcategories, model.Nodes, model.Version, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return category, nil
}

// Get загружает агрегат. Внутри транзакции строка блокируется до коммита,
// чтобы параллельные изменения одной категории выполнялись последовательно.
func (c *CategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if _, err := tr.TxFromCtx(ctx); err == nil {
		query += ` FOR UPDATE`
	}

	row := tr.QuerierFromCtx(ctx, c.pool).QueryRow(ctx, query, id)
	category, err := c.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || invalidUUID(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return category, nil
}

// Save перезаписывает агрегат целиком при совпадении версии.
func (c *CategoryRepo) Save(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	model, err := c.conv.ToModel(category)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE categories
		SET name = $3, slug = $4, icon = $5, color = $6,
			legacy_subcategories = $7, nodes = $8,
			version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $2
	`

	q := tr.QuerierFromCtx(ctx, c.pool)
	tag, err := q.Exec(ctx, query,
		model.ID, model.Version, model.Name, model.Slug, model.Icon, model.Color,
		model.LegacySubcategories, model.Nodes, model.UpdatedAt,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		if invalidUUID(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, model.ID).Scan(&exists); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if !exists {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVersionConflict)
	}

	category.Version++
	return category, nil
}

func (c *CategoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := tr.QuerierFromCtx(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if invalidUUID(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

func (c *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at DESC, id DESC`

	rows, err := tr.QuerierFromCtx(ctx, c.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := c.scan(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, category)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *CategoryRepo) scan(row pgx.Row) (*domain.Category, error) {
	var model converter.CategoryModel
	if err := row.Scan(
		&model.ID, &model.Name, &model.Slug, &model.Icon, &model.Color, &model.CreatedBy,
		&model.LegacySubcategories, &model.Nodes, &model.Version, &model.CreatedAt, &model.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return c.conv.ToEntity(&model)
}
