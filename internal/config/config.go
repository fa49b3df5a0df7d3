package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Market MarketConfig
}

type MarketConfig struct {
	Address   string `env:"MARKET_ADDRESS" env-default:":8080"`
	LogLevel  string `env:"MARKET_LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"MARKET_LOG_FORMAT" env-default:"console"`

	// DBURI empty means the ledger runs in memory.
	DBURI         string        `env:"MARKET_DB_URI"`
	SubmitTimeout time.Duration `env:"MARKET_SUBMIT_TIMEOUT" env-default:"5s"`

	CORSOrigins []string `env:"MARKET_CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost"`

	Redis          RedisConfig
	RateLimiter    RateLimiterConfig
	Kafka          KafkaConfig
	CircuitBreaker CircuitBreakerConfig
}

type RedisConfig struct {
	Host              string        `env:"MARKET_REDIS_HOST"`
	Port              string        `env:"MARKET_REDIS_PORT" env-default:"6379"`
	MaxIdle           int           `env:"MARKET_REDIS_MAX_IDLE" env-default:"10"`
	IdleTimeout       time.Duration `env:"MARKET_REDIS_IDLE_TIMEOUT" env-default:"240s"`
	ConnectionTimeout time.Duration `env:"MARKET_REDIS_CONN_TIMEOUT" env-default:"2s"`
	ItemCacheTTL      time.Duration `env:"MARKET_ITEM_CACHE_TTL" env-default:"30s"`
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Address() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type RateLimiterConfig struct {
	SubmitOrder int64         `env:"MARKET_RATE_SUBMIT" env-default:"10"`
	CancelOrder int64         `env:"MARKET_RATE_CANCEL" env-default:"10"`
	Window      time.Duration `env:"MARKET_RATE_WINDOW" env-default:"1s"`
}

type KafkaConfig struct {
	Brokers []string `env:"MARKET_KAFKA_BROKERS"`
	Topic   string   `env:"MARKET_KAFKA_TOPIC" env-default:"market.events"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type CircuitBreakerConfig struct {
	MaxRequests uint32        `env:"CB_MAX_REQUESTS" env-default:"3"`
	Interval    time.Duration `env:"CB_INTERVAL"     env-default:"10s"`
	Timeout     time.Duration `env:"CB_TIMEOUT"      env-default:"5s"`
	MaxFailures uint32        `env:"CB_MAX_FAILURES" env-default:"5"`
}

// Load reads configuration from path when the file exists, falling back to
// process environment variables otherwise.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("config.Load: %w", err)
			}
			return config, nil
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return config, nil
}
