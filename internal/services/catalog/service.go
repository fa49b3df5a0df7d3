package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
	serviceErrors "itemMarket/internal/errors/service"
	zapLogger "itemMarket/internal/logger/zap"
)

type Service struct {
	items ItemStore
	users UserStore

	// itemCache is optional; nil disables caching of item listings.
	itemCache ItemCache
	cacheTTL  time.Duration
}

type ItemStore interface {
	SaveItem(ctx context.Context, item models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
}

type UserStore interface {
	SaveUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type ItemCache interface {
	GetAll(ctx context.Context) ([]models.Item, error)
	SetAll(ctx context.Context, items []models.Item, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

func NewService(items ItemStore, users UserStore, itemCache ItemCache, cacheTTL time.Duration) *Service {
	return &Service{
		items:     items,
		users:     users,
		itemCache: itemCache,
		cacheTTL:  cacheTTL,
	}
}

func (s *Service) CreateItem(ctx context.Context, name, description string) (models.Item, error) {
	const op = "Service.CreateItem"

	if name == "" {
		return models.Item{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidItem)
	}

	item := models.Item{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.items.SaveItem(ctx, item); err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.itemCache != nil {
		if err := s.itemCache.Invalidate(ctx); err != nil {
			zapLogger.Warn(ctx, "failed to invalidate item cache", zap.Error(err))
		}
	}

	return item, nil
}

func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	const op = "Service.ListItems"

	if s.itemCache != nil {
		items, err := s.itemCache.GetAll(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, repositoryErrors.ErrItemCacheNotFound) {
			zapLogger.Warn(ctx, "item cache read failed", zap.Error(err))
		}
	}

	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.itemCache != nil {
		if err := s.itemCache.SetAll(ctx, items, s.cacheTTL); err != nil {
			zapLogger.Warn(ctx, "item cache write failed", zap.Error(err))
		}
	}

	return items, nil
}

func (s *Service) CreateUser(ctx context.Context, name string) (models.User, error) {
	const op = "Service.CreateUser"

	if name == "" {
		return models.User{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrInvalidUser)
	}

	user := models.User{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "Service.ListUsers"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *Service) ItemExists(ctx context.Context, id uuid.UUID) error {
	const op = "Service.ItemExists"

	if _, err := s.items.GetItem(ctx, id); err != nil {
		if errors.Is(err, repositoryErrors.ErrItemNotFound) {
			return serviceErrors.ErrItemNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) UserExists(ctx context.Context, id uuid.UUID) error {
	const op = "Service.UserExists"

	if _, err := s.users.GetUser(ctx, id); err != nil {
		if errors.Is(err, repositoryErrors.ErrUserNotFound) {
			return serviceErrors.ErrUserNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
