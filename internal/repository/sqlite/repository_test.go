package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/tr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "taxonomy_test.db"))
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func newCategory(id, name, slug string, createdAt time.Time) *domain.Category {
	return domain.NewCategory(id, name, slug, "icon", "#000", "owner-1", createdAt)
}

func TestCategoryRepo_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(openTestDB(t))

	ref := "legacy-7"
	c := newCategory("c1", "Home", "home", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	c.Nodes = []*tree.Node{{ID: "n1", Name: "Kitchen", Slug: "kitchen", LegacyRef: &ref, Children: []*tree.Node{}}}
	c.LegacySubcategories = []*domain.Subcategory{{
		ID: "s1", Name: "Garden", Slug: "garden",
		SecondarySubcategories: []*domain.SecondarySubcategory{{ID: "x1", Name: "Tools", Slug: "tools"}},
	}}

	created, err := repo.Create(ctx, c)
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.Version)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Name)
	assert.Equal(t, "owner-1", got.CreatedBy)
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))
	assert.Nil(t, got.UpdatedAt)
	require.Len(t, got.Nodes, 1)
	require.NotNil(t, got.Nodes[0].LegacyRef)
	assert.Equal(t, "legacy-7", *got.Nodes[0].LegacyRef)
	require.Len(t, got.LegacySubcategories, 1)
	require.Len(t, got.LegacySubcategories[0].SecondarySubcategories, 1)
	assert.Equal(t, "x1", got.LegacySubcategories[0].SecondarySubcategories[0].ID)
}

func TestCategoryRepo_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(openTestDB(t))
	now := time.Now().UTC()

	_, err := repo.Create(ctx, newCategory("c1", "Home", "home", now))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newCategory("c2", "Home", "home-2", now))
	assert.ErrorIs(t, err, e.ErrCategoryExists)
	assert.ErrorIs(t, err, e.ErrConflict)

	_, err = repo.Create(ctx, newCategory("c3", "Home 2", "home", now))
	assert.ErrorIs(t, err, e.ErrCategoryExists)
}

func TestCategoryRepo_GetMissing(t *testing.T) {
	repo := NewCategoryRepo(openTestDB(t))

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestCategoryRepo_SaveReplacesAggregateAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(openTestDB(t))

	_, err := repo.Create(ctx, newCategory("c1", "Home", "home", time.Now().UTC()))
	require.NoError(t, err)

	loaded, err := repo.Get(ctx, "c1")
	require.NoError(t, err)

	loaded.Nodes = append(loaded.Nodes, &tree.Node{ID: "n1", Name: "A", Slug: "a", Children: []*tree.Node{}})
	loaded.Touch(time.Now().UTC())

	saved, err := repo.Save(ctx, loaded)
	require.NoError(t, err)
	assert.EqualValues(t, 2, saved.Version)

	reloaded, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, reloaded.Version)
	require.Len(t, reloaded.Nodes, 1)
	assert.NotNil(t, reloaded.UpdatedAt)
}

func TestCategoryRepo_SaveStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(openTestDB(t))

	_, err := repo.Create(ctx, newCategory("c1", "Home", "home", time.Now().UTC()))
	require.NoError(t, err)

	first, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "c1")
	require.NoError(t, err)

	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	_, err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, e.ErrVersionConflict)
	assert.ErrorIs(t, err, e.ErrConflict)
}

func TestCategoryRepo_SaveMissing(t *testing.T) {
	repo := NewCategoryRepo(openTestDB(t))

	_, err := repo.Save(context.Background(), newCategory("ghost", "Ghost", "ghost", time.Now().UTC()))
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestCategoryRepo_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepo(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newCategory("c1", "Old", "old", base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newCategory("c2", "New", "new", base.Add(time.Hour)))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c1", list[1].ID)

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), e.ErrCategoryNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestGormManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCategoryRepo(db)
	manager := tr.NewGormManager(db)
	boom := errors.New("boom")

	err := manager.Do(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, newCategory("c1", "Home", "home", time.Now().UTC())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestOutboxEventRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxEventRepo(openTestDB(t))
	c := newCategory("c1", "Home", "home", time.Now().UTC())

	for i := 0; i < 3; i++ {
		event, err := usecase.NewCategoryChangeEvent(usecase.TaxonomyChanged, c, "AddNode", []string{"n"}, time.Now().UTC())
		require.NoError(t, err)
		_, err = repo.Create(ctx, event)
		require.NoError(t, err)
	}

	batch, err := repo.GetAndMarkAsProcessing(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, usecase.Processing, batch[0].Status)
	assert.Less(t, batch[0].ID, batch[1].ID)

	rest, err := repo.GetAndMarkAsProcessing(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	require.NoError(t, repo.MarkAsProcessed(ctx, batch[0].ID))
	require.NoError(t, repo.Release(ctx, batch[1].ID))

	again, err := repo.GetAndMarkAsProcessing(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, batch[1].ID, again[0].ID)
	assert.Equal(t, "c1", again[0].AggregateID)
}

func TestOutboxEventRepo_DuplicateEventID(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxEventRepo(openTestDB(t))
	c := newCategory("c1", "Home", "home", time.Now().UTC())

	event, err := usecase.NewCategoryChangeEvent(usecase.CategoryCreated, c, "CreateCategory", nil, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.Create(ctx, event)
	require.NoError(t, err)

	event.ID = 0
	_, err = repo.Create(ctx, event)
	assert.ErrorIs(t, err, e.ErrConflict)
}
