package market

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	api "itemMarket/internal/api/http"
	"itemMarket/internal/config"
	"itemMarket/internal/infra/closer"
	postgres "itemMarket/internal/infra/db"
	"itemMarket/internal/infra/kafka"
	zapLogger "itemMarket/internal/logger/zap"
	"itemMarket/internal/services/exchange"
	"itemMarket/migrations"
)

type App struct {
	diContainer *DiContainer

	server *api.Server
	dbPool *pgxpool.Pool
	events exchange.EventSink
	config config.MarketConfig
}

func New(ctx context.Context, cfg config.MarketConfig) (*App, error) {
	app := &App{
		config: cfg,
	}

	if err := app.setupDeps(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Start(ctx context.Context) error {
	zapLogger.Info(ctx, fmt.Sprintf("Starting market HTTP server on %s", a.config.Address))

	return a.server.Start()
}

func (a *App) setupDeps(ctx context.Context) error {
	setups := []func(ctx context.Context) error{
		a.setupLogger,
		a.setupCloser,
		a.setupDB,
		a.setupEventSink,
		a.setupDI,
		a.setupHTTPServer,
	}

	for _, init := range setups {
		if err := init(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) setupLogger(_ context.Context) error {
	return zapLogger.Init(
		a.config.LogLevel,
		a.config.LogFormat == "json",
	)
}

func (a *App) setupCloser(_ context.Context) error {
	closer.SetLogger(zapLogger.Logger())

	closer.AddNamed("zap logger sync", func(ctx context.Context) error {
		_ = zapLogger.Sync()
		return nil
	})

	return nil
}

func (a *App) setupDB(ctx context.Context) error {
	if a.config.DBURI == "" {
		zapLogger.Info(ctx, "no database configured, ledger runs in memory")
		return nil
	}

	pool, err := postgres.SetupDB(ctx, a.config.DBURI, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("postgres.SetupDB: %w", err)
	}

	a.dbPool = pool

	closer.AddNamed("Postgres pool", func(ctx context.Context) error {
		a.dbPool.Close()
		return nil
	})

	return nil
}

func (a *App) setupEventSink(ctx context.Context) error {
	if !a.config.Kafka.Enabled() {
		zapLogger.Info(ctx, "no kafka brokers configured, events disabled")
		return nil
	}

	producer := kafka.NewProducer(a.config.Kafka.Brokers, a.config.Kafka.Topic)
	a.events = producer

	closer.AddNamed("Kafka producer", func(ctx context.Context) error {
		return producer.Close()
	})

	return nil
}

func (a *App) setupDI(_ context.Context) error {
	a.diContainer = NewDIContainer(a.dbPool, a.events, a.config)

	if a.config.Redis.Enabled() {
		closer.AddNamed("Redis pool", func(ctx context.Context) error {
			return a.diContainer.RedisPool().Close()
		})
	}

	return nil
}

func (a *App) setupHTTPServer(ctx context.Context) error {
	a.server = api.NewServer(
		a.config.Address,
		a.diContainer.ExchangeService(),
		a.diContainer.CatalogService(),
		a.diContainer.Registry(),
		a.config.CORSOrigins,
	)

	closer.AddNamed("HTTP server", func(ctx context.Context) error {
		return a.server.Stop()
	})

	return nil
}

type nopRateLimiter struct{}

func (nopRateLimiter) Allow(context.Context, uuid.UUID) (bool, error) {
	return true, nil
}
