package catalog

import (
	"context"
	"testing"
	"time"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
	serviceErrors "itemMarket/internal/errors/service"
	"itemMarket/internal/repository/memory"
	"itemMarket/internal/services/mocks"
)

const cacheTTL = 30 * time.Second

func newTestService(cache ItemCache) *Service {
	return NewService(memory.NewItemStore(), memory.NewUserStore(), cache, cacheTTL)
}

func TestCreateItem(t *testing.T) {
	fakeValue.Seed(time.Now().UnixNano())

	t.Run("успешное создание товара", func(t *testing.T) {
		service := newTestService(nil)

		name := fakeValue.ProductName()
		item, err := service.CreateItem(context.Background(), name, fakeValue.Sentence(5))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, name, item.Name)
		assert.False(t, item.CreatedAt.IsZero())

		assert.NoError(t, service.ItemExists(context.Background(), item.ID))
	})

	t.Run("ошибка - пустое имя", func(t *testing.T) {
		service := newTestService(nil)

		_, err := service.CreateItem(context.Background(), "", "")
		assert.ErrorIs(t, err, serviceErrors.ErrInvalidItem)
	})

	t.Run("создание сбрасывает кеш", func(t *testing.T) {
		cache := new(mocks.MockItemCache)
		cache.On("Invalidate", mock.Anything).Return(nil)

		service := newTestService(cache)

		_, err := service.CreateItem(context.Background(), fakeValue.ProductName(), "")
		require.NoError(t, err)

		cache.AssertCalled(t, "Invalidate", mock.Anything)
	})
}

func TestListItems_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("промах кеша заполняет его из хранилища", func(t *testing.T) {
		cache := new(mocks.MockItemCache)
		cache.On("Invalidate", mock.Anything).Return(nil)
		cache.On("GetAll", mock.Anything).Return(nil, repositoryErrors.ErrItemCacheNotFound)
		cache.On("SetAll", mock.Anything, mock.Anything, cacheTTL).Return(nil)

		service := newTestService(cache)

		created, err := service.CreateItem(ctx, fakeValue.ProductName(), "")
		require.NoError(t, err)

		items, err := service.ListItems(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, created.ID, items[0].ID)

		cache.AssertExpectations(t)
	})

	t.Run("попадание в кеш не трогает хранилище", func(t *testing.T) {
		cached := []models.Item{{ID: uuid.New(), Name: fakeValue.ProductName()}}

		cache := new(mocks.MockItemCache)
		cache.On("GetAll", mock.Anything).Return(cached, nil)

		service := newTestService(cache)

		items, err := service.ListItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, items)
	})
}

func TestCreateUser(t *testing.T) {
	fakeValue.Seed(time.Now().UnixNano())

	t.Run("успешное создание пользователя", func(t *testing.T) {
		service := newTestService(nil)

		name := fakeValue.Name()
		user, err := service.CreateUser(context.Background(), name)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, name, user.Name)
		assert.NoError(t, service.UserExists(context.Background(), user.ID))
	})

	t.Run("ошибка - пустое имя", func(t *testing.T) {
		service := newTestService(nil)

		_, err := service.CreateUser(context.Background(), "")
		assert.ErrorIs(t, err, serviceErrors.ErrInvalidUser)
	})
}

func TestExists_NotFound(t *testing.T) {
	service := newTestService(nil)

	assert.ErrorIs(t, service.ItemExists(context.Background(), uuid.New()), serviceErrors.ErrItemNotFound)
	assert.ErrorIs(t, service.UserExists(context.Background(), uuid.New()), serviceErrors.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	service := newTestService(nil)
	ctx := context.Background()

	first, err := service.CreateUser(ctx, fakeValue.Name())
	require.NoError(t, err)
	second, err := service.CreateUser(ctx, fakeValue.Name())
	require.NoError(t, err)

	users, err := service.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.ElementsMatch(t,
		[]uuid.UUID{first.ID, second.ID},
		[]uuid.UUID{users[0].ID, users[1].ID},
	)
}
