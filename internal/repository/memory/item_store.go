package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
)

type ItemStore struct {
	items map[uuid.UUID]models.Item
	mu    sync.RWMutex
}

func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[uuid.UUID]models.Item),
	}
}

func (itemStore *ItemStore) SaveItem(ctx context.Context, item models.Item) error {
	const op = "repository.ItemStore.SaveItem"

	itemStore.mu.Lock()
	defer itemStore.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, exists := itemStore.items[item.ID]; exists {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrItemAlreadyExists)
	}

	itemStore.items[item.ID] = item

	return nil
}

func (itemStore *ItemStore) GetItem(ctx context.Context, id uuid.UUID) (models.Item, error) {
	const op = "repository.ItemStore.GetItem"

	itemStore.mu.RLock()
	defer itemStore.mu.RUnlock()

	select {
	case <-ctx.Done():
		return models.Item{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	item, exists := itemStore.items[id]
	if !exists {
		return models.Item{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrItemNotFound)
	}

	return item, nil
}

func (itemStore *ItemStore) ListItems(ctx context.Context) ([]models.Item, error) {
	const op = "repository.ItemStore.ListItems"

	itemStore.mu.RLock()
	defer itemStore.mu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	out := make([]models.Item, 0, len(itemStore.items))
	for _, item := range itemStore.items {
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
