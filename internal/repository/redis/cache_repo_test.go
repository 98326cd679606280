package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/cfg"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
	"github.com/DRSN-tech/taxonomy-backend/pkg/clients"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Интеграционные тесты: пропускаются, если Redis недоступен.
func newTestCache(t *testing.T) *CacheRepo {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := clients.NewRedisClient(&cfg.RedisCfg{
		Addr:        addr,
		DialTimeout: time.Second,
		Timeout:     time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("skipping: redis not available: %v", err)
	}

	return NewCacheRepo(client, time.Minute, logger.NewNop())
}

func testCategory() *domain.Category {
	c := domain.NewCategory(uuid.NewString(), "Home", "home", "", "", "owner", time.Now().UTC().Truncate(time.Millisecond))
	c.Version = 3
	c.Nodes = []*tree.Node{{ID: "n1", Name: "A", Slug: "a", Children: []*tree.Node{}}}
	return c
}

func TestCacheRepo_CategoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	c := testCategory()

	miss, err := cache.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	gen, err := cache.CategoryGeneration(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, cache.SetCategory(ctx, c, gen))

	got, err := cache.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.Name, got.Name)
	assert.EqualValues(t, 3, got.Version)
	require.Len(t, got.Nodes, 1)

	require.NoError(t, cache.Invalidate(ctx, c.ID))
	got, err = cache.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheRepo_ListInvalidatedWithAnyCategory(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	c := testCategory()

	gen, err := cache.ListGeneration(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.SetCategories(ctx, []*domain.Category{c}, gen))

	list, err := cache.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, cache.Invalidate(ctx))
	list, err = cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)

	require.NoError(t, cache.Invalidate(ctx, c.ID))
}

func TestCacheRepo_FillAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	c := testCategory()

	gen, err := cache.CategoryGeneration(ctx, c.ID)
	require.NoError(t, err)
	listGen, err := cache.ListGeneration(ctx)
	require.NoError(t, err)

	// изменение категории между чтением поколения и записью в кэш
	require.NoError(t, cache.Invalidate(ctx, c.ID))

	require.NoError(t, cache.SetCategory(ctx, c, gen))
	require.NoError(t, cache.SetCategories(ctx, []*domain.Category{c}, listGen))

	got, err := cache.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := cache.GetCategories(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)

	next, err := cache.CategoryGeneration(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	require.NoError(t, cache.SetCategory(ctx, c, next))
	got, err = cache.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, cache.Invalidate(ctx, c.ID))
}
