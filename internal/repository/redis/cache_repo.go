package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/document"
	"github.com/DRSN-tech/taxonomy-backend/pkg/clients"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	categoriesListKey = "categories:all"
	generationSuffix  = ":gen"
	// поколение должно жить дольше любого заполнения, начатого до инвалидации
	generationTTL = 24 * time.Hour
)

// setIfGenerationScript записывает ARGV[2] в KEYS[2], только если поколение в KEYS[1]
// всё ещё равно ARGV[1]. Отсутствующее поколение считается нулевым.
var setIfGenerationScript = r.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ttl)
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// CacheRepo кэширует документы категорий и список всех категорий.
type CacheRepo struct {
	client *clients.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, ttl time.Duration, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetCategory возвращает категорию из кэша или (nil, nil) при промахе.
func (c *CacheRepo) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	key := c.categoryKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil // cache miss
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var doc document.Category
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, nil
	}

	if doc.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, doc.ID)
		c.drop(key)
		return nil, nil
	}

	return doc.ToDomain(), nil
}

// CategoryGeneration возвращает текущее поколение записи категории.
func (c *CacheRepo) CategoryGeneration(ctx context.Context, id string) (int64, error) {
	return c.generation(ctx, c.categoryKey(id))
}

// SetCategory кэширует категорию, если её поколение не изменилось с момента чтения generation.
func (c *CacheRepo) SetCategory(ctx context.Context, category *domain.Category, generation int64) error {
	data, err := json.Marshal(document.FromDomain(category))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.setIfGeneration(ctx, c.categoryKey(category.ID), data, generation)
}

// GetCategories возвращает закэшированный список или nil при промахе.
func (c *CacheRepo) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	data, err := c.client.Client.Get(ctx, categoriesListKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var docs []*document.Category
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(categoriesListKey)
		return nil, nil
	}

	categories := make([]*domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.ToDomain())
	}

	return categories, nil
}

func (c *CacheRepo) ListGeneration(ctx context.Context) (int64, error) {
	return c.generation(ctx, categoriesListKey)
}

// SetCategories кэширует только список: у отдельных категорий свои поколения,
// и записывать их из списка без проверки нельзя.
func (c *CacheRepo) SetCategories(ctx context.Context, categories []*domain.Category, generation int64) error {
	docs := make([]*document.Category, 0, len(categories))
	for _, category := range categories {
		docs = append(docs, document.FromDomain(category))
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.setIfGeneration(ctx, categoriesListKey, data, generation)
}

// Invalidate удаляет категории и список категорий и увеличивает их поколения в одной транзакции.
func (c *CacheRepo) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, categoriesListKey)
	for _, id := range ids {
		keys = append(keys, c.categoryKey(id))
	}

	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, key+generationSuffix)
			pipe.Expire(ctx, key+generationSuffix, generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Client.Get(ctx, key+generationSuffix).Int64()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return 0, nil
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return gen, nil
}

func (c *CacheRepo) setIfGeneration(ctx context.Context, key string, data []byte, generation int64) error {
	stored, err := setIfGenerationScript.Run(ctx, c.client.Client,
		[]string{key + generationSuffix, key},
		strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if stored == 0 {
		c.logger.Debugf("Skip caching %s: invalidated since generation %d", key, generation)
	}

	return nil
}

func (c *CacheRepo) drop(key string) {
	if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// categoryKey возвращает Redis-ключ для одной категории
func (c *CacheRepo) categoryKey(id string) string {
	return fmt.Sprintf("category:%s", id)
}
