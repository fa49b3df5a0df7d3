//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"itemMarket/internal/domain/models"
	repositoryErrors "itemMarket/internal/errors/repository"
	"itemMarket/internal/infra/db/migrator"
	"itemMarket/migrations"
)

const (
	dbUser     = "test_user"
	dbPassword = "test_password"
	dbName     = "market_test_db"

	longTimeout    = 2 * time.Minute
	startupTimeout = 30 * time.Second
)

func setupLedger(test *testing.T) (context.Context, *Ledger, *pgxpool.Pool) {
	test.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), longTimeout)
	test.Cleanup(cancel)

	container, err := pgContainer.Run(ctx,
		"postgres:17.0-alpine3.20",
		pgContainer.WithDatabase(dbName),
		pgContainer.WithUsername(dbUser),
		pgContainer.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		test.Fatalf("failed to start postgres container: %v", err)
	}
	test.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			test.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connection, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		test.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connection)
	if err != nil {
		test.Fatalf("failed to create pgxpool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		test.Fatalf("failed to ping postgres: %v", err)
	}
	test.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	test.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := migrator.NewMigrator(sqlDB, migrations.Migrations).Up(ctx); err != nil {
		test.Fatalf("failed to run migrations: %v", err)
	}

	return ctx, NewLedger(pool), pool
}

func restingOrder(itemID uuid.UUID, seq uint64, price string) models.Order {
	order := models.Order{
		ID:        uuid.New(),
		Seq:       seq,
		ItemID:    itemID,
		UserID:    uuid.New(),
		Side:      models.SideSell,
		Kind:      models.KindLimit,
		Status:    models.OrderStatusResting,
		CreatedAt: time.Now().UTC(),
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		order.Price = &p
	}
	return order
}

func TestLedger_RecordSubmission_Resting(t *testing.T) {
	ctx, ledger, _ := setupLedger(t)

	itemID := uuid.New()
	order := restingOrder(itemID, 1, "10.50")

	require.NoError(t, ledger.RecordSubmission(ctx, order, nil, nil))

	stored, err := ledger.ListOrders(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, order.ID, stored[0].ID)
	assert.Equal(t, models.OrderStatusResting, stored[0].Status)
	require.NotNil(t, stored[0].Price)
	assert.True(t, order.Price.Equal(*stored[0].Price))

	err = ledger.RecordSubmission(ctx, order, nil, nil)
	assert.ErrorIs(t, err, repositoryErrors.ErrOrderAlreadyExists)
}

func TestLedger_RecordSubmission_Trade(t *testing.T) {
	ctx, ledger, pool := setupLedger(t)

	itemID := uuid.New()
	maker := restingOrder(itemID, 1, "10.00")
	require.NoError(t, ledger.RecordSubmission(ctx, maker, nil, nil))

	taker := models.Order{
		ID:        uuid.New(),
		Seq:       2,
		ItemID:    itemID,
		UserID:    uuid.New(),
		Side:      models.SideBuy,
		Kind:      models.KindMarket,
		Status:    models.OrderStatusMatched,
		CreatedAt: time.Now().UTC(),
	}
	matchedMaker := maker
	matchedMaker.Status = models.OrderStatusMatched

	trade := models.Trade{
		ID:         uuid.New(),
		BuyerID:    taker.UserID,
		SellerID:   maker.UserID,
		ItemID:     itemID,
		Price:      *maker.Price,
		ExecutedAt: time.Now().UTC(),
	}

	require.NoError(t, ledger.RecordSubmission(ctx, taker, &matchedMaker, &trade))

	orders, err := ledger.ListOrders(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, models.OrderStatusMatched, order.Status)
	}

	trades, err := ledger.ListTrades(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, trade.ID, trades[0].ID)
	assert.True(t, trade.Price.Equal(trades[0].Price))

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLedger_RecordSubmission_TradeRollsBackOnConflict(t *testing.T) {
	ctx, ledger, pool := setupLedger(t)

	itemID := uuid.New()
	maker := restingOrder(itemID, 1, "10.00")
	require.NoError(t, ledger.RecordSubmission(ctx, maker, nil, nil))

	// Reusing the maker id as the taker id forces a duplicate-key failure
	// inside the transaction; the maker update and the trade must not land.
	taker := maker
	taker.Seq = 2
	taker.Status = models.OrderStatusMatched

	matchedMaker := maker
	matchedMaker.Status = models.OrderStatusMatched

	trade := models.Trade{
		ID:         uuid.New(),
		BuyerID:    uuid.New(),
		SellerID:   maker.UserID,
		ItemID:     itemID,
		Price:      *maker.Price,
		ExecutedAt: time.Now().UTC(),
	}

	err := ledger.RecordSubmission(ctx, taker, &matchedMaker, &trade)
	assert.ErrorIs(t, err, repositoryErrors.ErrOrderAlreadyExists)

	orders, listErr := ledger.ListOrders(ctx, itemID)
	require.NoError(t, listErr)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusResting, orders[0].Status)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestLedger_RecordCancel(t *testing.T) {
	ctx, ledger, _ := setupLedger(t)

	itemID := uuid.New()
	order := restingOrder(itemID, 1, "10.00")
	require.NoError(t, ledger.RecordSubmission(ctx, order, nil, nil))

	cancelled := order
	cancelled.Status = models.OrderStatusCancelled
	require.NoError(t, ledger.RecordCancel(ctx, cancelled))

	orders, err := ledger.ListOrders(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusCancelled, orders[0].Status)

	unknown := restingOrder(itemID, 2, "10.00")
	unknown.Status = models.OrderStatusCancelled
	err = ledger.RecordCancel(ctx, unknown)
	assert.ErrorIs(t, err, repositoryErrors.ErrOrderNotFound)
}

func TestLedger_ListTrades_FiltersByItem(t *testing.T) {
	ctx, ledger, _ := setupLedger(t)

	itemA, itemB := uuid.New(), uuid.New()
	for _, itemID := range []uuid.UUID{itemA, itemB} {
		maker := restingOrder(itemID, 1, "10.00")
		require.NoError(t, ledger.RecordSubmission(ctx, maker, nil, nil))

		taker := restingOrder(itemID, 2, "10.00")
		taker.Side = models.SideBuy
		taker.Status = models.OrderStatusMatched

		matchedMaker := maker
		matchedMaker.Status = models.OrderStatusMatched

		trade := models.Trade{
			ID:         uuid.New(),
			BuyerID:    taker.UserID,
			SellerID:   maker.UserID,
			ItemID:     itemID,
			Price:      *maker.Price,
			ExecutedAt: time.Now().UTC(),
		}
		require.NoError(t, ledger.RecordSubmission(ctx, taker, &matchedMaker, &trade))
	}

	filtered, err := ledger.ListTrades(ctx, itemA)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, itemA, filtered[0].ItemID)

	all, err := ledger.ListTrades(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
