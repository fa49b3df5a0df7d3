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

type UserStore struct {
	users map[uuid.UUID]models.User
	mu    sync.RWMutex
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]models.User),
	}
}

func (userStore *UserStore) SaveUser(ctx context.Context, user models.User) error {
	const op = "repository.UserStore.SaveUser"

	userStore.mu.Lock()
	defer userStore.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, exists := userStore.users[user.ID]; exists {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrUserAlreadyExists)
	}

	userStore.users[user.ID] = user

	return nil
}

func (userStore *UserStore) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	const op = "repository.UserStore.GetUser"

	userStore.mu.RLock()
	defer userStore.mu.RUnlock()

	select {
	case <-ctx.Done():
		return models.User{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	user, exists := userStore.users[id]
	if !exists {
		return models.User{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrUserNotFound)
	}

	return user, nil
}

func (userStore *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "repository.UserStore.ListUsers"

	userStore.mu.RLock()
	defer userStore.mu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	out := make([]models.User, 0, len(userStore.users))
	for _, user := range userStore.users {
		out = append(out, user)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
