package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"itemMarket/internal/domain/models"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordSubmission(ctx context.Context, taker models.Order, maker *models.Order, trade *models.Trade) error {
	args := m.Called(ctx, taker, maker, trade)
	return args.Error(0)
}

func (m *MockLedger) RecordCancel(ctx context.Context, order models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockLedger) ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error) {
	args := m.Called(ctx, itemID)
	if trades := args.Get(0); trades != nil {
		return trades.([]models.Trade), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ItemExists(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalog) UserExists(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockEventSink struct {
	mock.Mock
}

func (m *MockEventSink) Send(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockItemCache struct {
	mock.Mock
}

func (m *MockItemCache) GetAll(ctx context.Context) ([]models.Item, error) {
	args := m.Called(ctx)
	if items := args.Get(0); items != nil {
		return items.([]models.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockItemCache) SetAll(ctx context.Context, items []models.Item, ttl time.Duration) error {
	args := m.Called(ctx, items, ttl)
	return args.Error(0)
}

func (m *MockItemCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
