package market

import (
	"context"
	"sync"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"itemMarket/internal/config"
	"itemMarket/internal/engine"
	cache "itemMarket/internal/infra/redis"
	zapLogger "itemMarket/internal/logger/zap"
	"itemMarket/internal/metrics"
	memoryRepo "itemMarket/internal/repository/memory"
	postgresRepo "itemMarket/internal/repository/postgres"
	redisRepo "itemMarket/internal/repository/redis"
	"itemMarket/internal/services/catalog"
	"itemMarket/internal/services/exchange"
)

// DiContainer builds the object graph lazily. dbPool may be nil, which keeps
// the ledger in memory; redis and kafka are optional the same way.
type DiContainer struct {
	dbPool *pgxpool.Pool
	events exchange.EventSink
	cfg    config.MarketConfig

	matchingEngine *engine.Engine
	engineOnce     sync.Once

	ledger     exchange.Ledger
	ledgerOnce sync.Once

	registry     *prometheus.Registry
	registryOnce sync.Once

	exchangeMetrics *metrics.ExchangeMetrics
	metricsOnce     sync.Once

	redisPool     *redigo.Pool
	redisPoolOnce sync.Once

	redisClient     cache.Client
	redisClientOnce sync.Once

	itemCache     catalog.ItemCache
	itemCacheOnce sync.Once

	submitRateLimiter     exchange.RateLimiter
	submitRateLimiterOnce sync.Once

	cancelRateLimiter     exchange.RateLimiter
	cancelRateLimiterOnce sync.Once

	catalogService     *catalog.Service
	catalogServiceOnce sync.Once

	exchangeService     *exchange.Service
	exchangeServiceOnce sync.Once
}

func NewDIContainer(dbPool *pgxpool.Pool, events exchange.EventSink, cfg config.MarketConfig) *DiContainer {
	return &DiContainer{
		dbPool: dbPool,
		events: events,
		cfg:    cfg,
	}
}

func (d *DiContainer) Engine() *engine.Engine {
	d.engineOnce.Do(func() {
		d.matchingEngine = engine.New()
	})

	return d.matchingEngine
}

func (d *DiContainer) Ledger() exchange.Ledger {
	d.ledgerOnce.Do(func() {
		if d.dbPool != nil {
			d.ledger = postgresRepo.NewLedger(d.dbPool)
			return
		}

		d.ledger = memoryRepo.NewLedger()
	})

	return d.ledger
}

func (d *DiContainer) Registry() *prometheus.Registry {
	d.registryOnce.Do(func() {
		d.registry = prometheus.NewRegistry()
	})

	return d.registry
}

func (d *DiContainer) Metrics() *metrics.ExchangeMetrics {
	d.metricsOnce.Do(func() {
		d.exchangeMetrics = metrics.NewExchangeMetrics(d.Registry())
	})

	return d.exchangeMetrics
}

func (d *DiContainer) RedisPool() *redigo.Pool {
	d.redisPoolOnce.Do(func() {
		d.redisPool = &redigo.Pool{
			MaxIdle:     d.cfg.Redis.MaxIdle,
			IdleTimeout: d.cfg.Redis.IdleTimeout,
			DialContext: func(ctx context.Context) (redigo.Conn, error) {
				return redigo.DialContext(ctx, "tcp", d.cfg.Redis.Address())
			},
		}
	})

	return d.redisPool
}

func (d *DiContainer) RedisClient() cache.Client {
	d.redisClientOnce.Do(func() {
		d.redisClient = cache.NewClient(
			d.RedisPool(),
			zapLogger.Logger(),
			d.cfg.Redis.ConnectionTimeout,
		)
	})

	return d.redisClient
}

func (d *DiContainer) ItemCache() catalog.ItemCache {
	d.itemCacheOnce.Do(func() {
		if !d.cfg.Redis.Enabled() {
			return
		}

		d.itemCache = redisRepo.NewItemCache(d.RedisClient())
	})

	return d.itemCache
}

func (d *DiContainer) SubmitRateLimiter() exchange.RateLimiter {
	d.submitRateLimiterOnce.Do(func() {
		if !d.cfg.Redis.Enabled() {
			d.submitRateLimiter = nopRateLimiter{}
			return
		}

		d.submitRateLimiter = redisRepo.NewRateLimiter(
			d.RedisClient(),
			d.cfg.RateLimiter.SubmitOrder,
			d.cfg.RateLimiter.Window,
			"rate:order:submit:",
			d.cfg.CircuitBreaker,
		)
	})

	return d.submitRateLimiter
}

func (d *DiContainer) CancelRateLimiter() exchange.RateLimiter {
	d.cancelRateLimiterOnce.Do(func() {
		if !d.cfg.Redis.Enabled() {
			d.cancelRateLimiter = nopRateLimiter{}
			return
		}

		d.cancelRateLimiter = redisRepo.NewRateLimiter(
			d.RedisClient(),
			d.cfg.RateLimiter.CancelOrder,
			d.cfg.RateLimiter.Window,
			"rate:order:cancel:",
			d.cfg.CircuitBreaker,
		)
	})

	return d.cancelRateLimiter
}

func (d *DiContainer) CatalogService() *catalog.Service {
	d.catalogServiceOnce.Do(func() {
		d.catalogService = catalog.NewService(
			memoryRepo.NewItemStore(),
			memoryRepo.NewUserStore(),
			d.ItemCache(),
			d.cfg.Redis.ItemCacheTTL,
		)
	})

	return d.catalogService
}

func (d *DiContainer) ExchangeService() *exchange.Service {
	d.exchangeServiceOnce.Do(func() {
		d.exchangeService = exchange.NewService(
			d.Engine(),
			d.Ledger(),
			d.CatalogService(),
			d.events,
			d.Metrics(),
			d.SubmitRateLimiter(),
			d.CancelRateLimiter(),
			d.cfg.SubmitTimeout,
		)
	})

	return d.exchangeService
}
