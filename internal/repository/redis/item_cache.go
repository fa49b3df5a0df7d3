package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redigo "github.com/gomodule/redigo/redis"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
	cache "itemMarket/internal/infra/redis"
	"itemMarket/internal/repository/redis/dto"
)

const itemCacheKey = "item:cache:all"

type ItemCache struct {
	cache cache.Client
}

func NewItemCache(cache cache.Client) *ItemCache {
	return &ItemCache{
		cache: cache,
	}
}

func (c *ItemCache) GetAll(ctx context.Context) ([]models.Item, error) {
	const op = "ItemCache.GetAll"

	data, err := c.cache.Get(ctx, itemCacheKey)
	if err != nil {
		if errors.Is(err, redigo.ErrNil) {
			return nil, repositoryErrors.ErrItemCacheNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var redisViews []dto.ItemRedisView
	if err = json.Unmarshal(data, &redisViews); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.Item, 0, len(redisViews))
	for _, redisView := range redisViews {
		item, err := redisView.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (c *ItemCache) SetAll(ctx context.Context, items []models.Item, ttl time.Duration) error {
	const op = "ItemCache.SetAll"

	redisViews := make([]dto.ItemRedisView, 0, len(items))
	for _, item := range items {
		redisViews = append(redisViews, dto.FromDomain(item))
	}

	data, err := json.Marshal(redisViews)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = c.cache.SetWithTTL(ctx, itemCacheKey, data, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Invalidate drops the cached listing after a new item is created.
func (c *ItemCache) Invalidate(ctx context.Context) error {
	const op = "ItemCache.Invalidate"

	if err := c.cache.Del(ctx, itemCacheKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
