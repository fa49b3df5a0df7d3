package redis

import (
	"context"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

type client struct {
	pool              *redigo.Pool
	logger            Logger
	connectionTimeout time.Duration
}

type Logger interface {
	Info(ctx context.Context, message string, fields ...zap.Field)
	Error(ctx context.Context, message string, fields ...zap.Field)
}

type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expirationTime time.Duration) error
	Ping(ctx context.Context) error
}

type redisFn func(ctx context.Context, conn redigo.Conn) error

func NewClient(pool *redigo.Pool, logger Logger, connectionTimeout time.Duration) *client {
	return &client{
		pool:              pool,
		logger:            logger,
		connectionTimeout: connectionTimeout,
	}
}

func (c *client) withConn(ctx context.Context, fn redisFn) error {
	connection, err := c.getConn(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if cErr := connection.Close(); cErr != nil {
			c.logger.Error(ctx, "failed to close client connection",
				zap.Error(cErr),
			)
		}
	}()

	return fn(ctx, connection)
}

func (c *client) getConn(ctx context.Context) (redigo.Conn, error) {
	connCtx, cancel := context.WithTimeout(ctx, c.connectionTimeout)
	defer cancel()

	connection, err := c.pool.GetContext(connCtx)
	if err != nil {
		c.logger.Error(ctx, "failed to get client connection",
			zap.Error(err),
		)
		return nil, err
	}

	return connection, nil
}

func (c *client) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		value, err := redigo.Bytes(conn.Do("GET", key))
		if err != nil {
			return err
		}

		result = value
		return nil
	})

	return result, err
}

func (c *client) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		_, err := conn.Do("SET", key, value, "EX", int(ttl.Seconds()))
		return err
	})
}

func (c *client) Del(ctx context.Context, key string) error {
	return c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		_, err := conn.Do("DEL", key)
		return err
	})
}

func (c *client) Incr(ctx context.Context, key string) (int64, error) {
	var count int64
	err := c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		value, err := redigo.Int64(conn.Do("INCR", key))
		if err != nil {
			return err
		}

		count = value
		return nil
	})

	return count, err
}

func (c *client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		_, err := conn.Do("EXPIRE", key, int(expiration.Seconds()))
		return err
	})
}

func (c *client) Ping(ctx context.Context) error {
	return c.withConn(ctx, func(ctx context.Context, conn redigo.Conn) error {
		_, err := conn.Do("PING")
		return err
	})
}
