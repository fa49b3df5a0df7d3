package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"itemMarket/internal/domain/models"
	"itemMarket/internal/engine"
	serviceErrors "itemMarket/internal/errors/service"
	"itemMarket/internal/metrics"
	"itemMarket/internal/repository/memory"
	"itemMarket/internal/services/mocks"
)

func randomPrice() *decimal.Decimal {
	p := decimal.NewFromFloat(fakeValue.Float64Range(1, 1000)).Round(2)
	return &p
}

func newTestService(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) *Service {
	return NewService(
		engine.New(),
		memory.NewLedger(),
		catalog,
		nil,
		metrics.NewExchangeMetrics(prometheus.NewRegistry()),
		limiter,
		limiter,
		5*time.Second,
	)
}

func allowAll(limiter *mocks.MockRateLimiter) {
	limiter.On("Allow", mock.Anything, mock.Anything).Return(true, nil)
}

func TestSubmitOrder(t *testing.T) {
	fakeValue.Seed(time.Now().UnixNano())

	itemID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name        string
		side        models.Side
		kind        models.Kind
		price       *decimal.Decimal
		setupMocks  func(*mocks.MockCatalog, *mocks.MockRateLimiter)
		expectedErr error
		checkResult func(t *testing.T, result OrderResult)
	}{
		{
			name:  "успешное размещение лимитного ордера",
			side:  models.SideBuy,
			kind:  models.KindLimit,
			price: randomPrice(),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(nil)
				catalog.On("UserExists", mock.Anything, userID).Return(nil)
			},
			checkResult: func(t *testing.T, result OrderResult) {
				assert.Equal(t, models.OrderStatusResting, result.Order.Status)
				assert.Nil(t, result.Trade)
				assert.NotEqual(t, uuid.Nil, result.Order.ID)
			},
		},
		{
			name: "успешное размещение маркет ордера без цены",
			side: models.SideSell,
			kind: models.KindMarket,
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(nil)
				catalog.On("UserExists", mock.Anything, userID).Return(nil)
			},
			checkResult: func(t *testing.T, result OrderResult) {
				assert.Equal(t, models.OrderStatusResting, result.Order.Status)
				assert.Nil(t, result.Order.Price)
			},
		},
		{
			name: "ошибка - лимитный ордер без цены",
			side: models.SideBuy,
			kind: models.KindLimit,
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(nil)
				catalog.On("UserExists", mock.Anything, userID).Return(nil)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
		{
			name:  "ошибка - маркет ордер с ценой",
			side:  models.SideBuy,
			kind:  models.KindMarket,
			price: randomPrice(),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(nil)
				catalog.On("UserExists", mock.Anything, userID).Return(nil)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
		{
			name:  "ошибка - неположительная цена",
			side:  models.SideBuy,
			kind:  models.KindLimit,
			price: mustDecimal("-1"),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
			},
			expectedErr: serviceErrors.ErrInvalidOrder,
		},
		{
			name:  "ошибка - товар не найден",
			side:  models.SideBuy,
			kind:  models.KindLimit,
			price: randomPrice(),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(serviceErrors.ErrItemNotFound)
			},
			expectedErr: serviceErrors.ErrItemNotFound,
		},
		{
			name:  "ошибка - пользователь не найден",
			side:  models.SideBuy,
			kind:  models.KindLimit,
			price: randomPrice(),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				allowAll(limiter)
				catalog.On("ItemExists", mock.Anything, itemID).Return(nil)
				catalog.On("UserExists", mock.Anything, userID).Return(serviceErrors.ErrUserNotFound)
			},
			expectedErr: serviceErrors.ErrUserNotFound,
		},
		{
			name:  "ошибка - превышен лимит запросов",
			side:  models.SideBuy,
			kind:  models.KindLimit,
			price: randomPrice(),
			setupMocks: func(catalog *mocks.MockCatalog, limiter *mocks.MockRateLimiter) {
				limiter.On("Allow", mock.Anything, userID).Return(false, nil)
			},
			expectedErr: serviceErrors.ErrRateLimitExceeded,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mockCatalog := new(mocks.MockCatalog)
			mockLimiter := new(mocks.MockRateLimiter)
			test.setupMocks(mockCatalog, mockLimiter)

			service := newTestService(mockCatalog, mockLimiter)

			result, err := service.SubmitOrder(context.Background(), itemID, userID, test.side, test.kind, test.price)

			if test.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.expectedErr)
			} else {
				require.NoError(t, err)
				if test.checkResult != nil {
					test.checkResult(t, result)
				}
			}

			mockCatalog.AssertExpectations(t)
			mockLimiter.AssertExpectations(t)
		})
	}
}

func mustDecimal(value string) *decimal.Decimal {
	p := decimal.RequireFromString(value)
	return &p
}

func TestSubmitOrder_MatchWritesLedgerAndEvents(t *testing.T) {
	itemID := uuid.New()
	seller, buyer := uuid.New(), uuid.New()

	mockCatalog := new(mocks.MockCatalog)
	mockCatalog.On("ItemExists", mock.Anything, itemID).Return(nil)
	mockCatalog.On("UserExists", mock.Anything, mock.Anything).Return(nil)

	mockLimiter := new(mocks.MockRateLimiter)
	allowAll(mockLimiter)

	mockSink := new(mocks.MockEventSink)
	mockSink.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ledger := memory.NewLedger()
	service := NewService(
		engine.New(),
		ledger,
		mockCatalog,
		mockSink,
		metrics.NewExchangeMetrics(prometheus.NewRegistry()),
		mockLimiter,
		mockLimiter,
		5*time.Second,
	)

	ctx := context.Background()

	_, err := service.SubmitOrder(ctx, itemID, seller, models.SideSell, models.KindLimit, mustDecimal("10.00"))
	require.NoError(t, err)

	result, err := service.SubmitOrder(ctx, itemID, buyer, models.SideBuy, models.KindMarket, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Trade)
	assert.Equal(t, buyer, result.Trade.BuyerID)
	assert.Equal(t, seller, result.Trade.SellerID)
	assert.Equal(t, "10", result.Trade.Price.String())

	trades, err := service.ListTrades(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, result.Trade.ID, trades[0].ID)

	// order_submitted for the resting sell, then order_submitted and
	// trade_executed for the match.
	mockSink.AssertNumberOfCalls(t, "Send", 3)
}

func TestSubmitOrder_LedgerFailureLeavesBookIntact(t *testing.T) {
	itemID := uuid.New()
	userID := uuid.New()

	mockCatalog := new(mocks.MockCatalog)
	mockCatalog.On("ItemExists", mock.Anything, itemID).Return(nil)
	mockCatalog.On("UserExists", mock.Anything, userID).Return(nil)

	mockLimiter := new(mocks.MockRateLimiter)
	allowAll(mockLimiter)

	mockLedger := new(mocks.MockLedger)
	mockLedger.On("RecordSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("ledger unavailable"))

	service := NewService(
		engine.New(),
		mockLedger,
		mockCatalog,
		nil,
		metrics.NewExchangeMetrics(prometheus.NewRegistry()),
		mockLimiter,
		mockLimiter,
		5*time.Second,
	)

	ctx := context.Background()

	_, err := service.SubmitOrder(ctx, itemID, userID, models.SideBuy, models.KindLimit, mustDecimal("10.00"))
	require.Error(t, err)

	orders, err := service.ListOrders(ctx, itemID, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCancelOrder(t *testing.T) {
	itemID := uuid.New()
	userID := uuid.New()

	mockCatalog := new(mocks.MockCatalog)
	mockCatalog.On("ItemExists", mock.Anything, itemID).Return(nil)
	mockCatalog.On("UserExists", mock.Anything, userID).Return(nil)

	mockLimiter := new(mocks.MockRateLimiter)
	allowAll(mockLimiter)

	service := newTestService(mockCatalog, mockLimiter)
	ctx := context.Background()

	result, err := service.SubmitOrder(ctx, itemID, userID, models.SideBuy, models.KindLimit, mustDecimal("10.00"))
	require.NoError(t, err)

	t.Run("чужой пользователь получает not found", func(t *testing.T) {
		_, err := service.CancelOrder(ctx, result.Order.ID, uuid.New())
		assert.ErrorIs(t, err, serviceErrors.ErrOrderNotFound)
	})

	t.Run("успешная отмена владельцем", func(t *testing.T) {
		cancelled, err := service.CancelOrder(ctx, result.Order.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

		orders, err := service.ListOrders(ctx, itemID, uuid.Nil)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("повторная отмена возвращает not found", func(t *testing.T) {
		_, err := service.CancelOrder(ctx, result.Order.ID, userID)
		assert.ErrorIs(t, err, serviceErrors.ErrOrderNotFound)
	})
}

func TestListOrders_UnknownItem(t *testing.T) {
	mockCatalog := new(mocks.MockCatalog)
	mockCatalog.On("ItemExists", mock.Anything, mock.Anything).Return(serviceErrors.ErrItemNotFound)

	service := newTestService(mockCatalog, new(mocks.MockRateLimiter))

	_, err := service.ListOrders(context.Background(), uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, serviceErrors.ErrItemNotFound)
}
