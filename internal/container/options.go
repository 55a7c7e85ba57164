package container

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Rate limit backends.
const (
	RateLimitRedis  = "redis"
	RateLimitMemory = "memory"
)

// EnvPrefix prefixes every consumer environment variable.
const EnvPrefix = "HASHPREFIX"

var (
	// ErrInvalidOption is returned for an unknown backend name.
	ErrInvalidOption = errors.New("invalid option")

	// ErrPostgresDisabled is returned when Postgres is requested without a DSN.
	ErrPostgresDisabled = errors.New("postgres dsn not configured")
)

// Options configures the API server.
type Options struct {
	Port              int    `default:"8888"           help:"Port to listen on"                                   short:"p"`
	RedisAddr         string `default:"localhost:6379" help:"Redis server address"                                short:"r"`
	PostgresDSN       string `default:""               help:"PostgreSQL DSN, enables the postgres health check"`
	LogFormat         string `default:"json"           help:"Log format: json or console"`
	CacheBackend      string `default:"redis"          help:"Result cache: redis, memory or none"`
	CacheTTLSeconds   int    `default:"3600"           help:"Result cache TTL in seconds"`
	DefaultBits       int    `default:"256"            help:"Prefix size used when a request omits bits"          short:"b"`
	RateLimit         int    `default:"600"            help:"Requests per client per window, 0 disables limiting"`
	RateWindowSeconds int    `default:"60"             help:"Rate limit window in seconds"`
	RateLimitBackend  string `default:"redis"          help:"Rate limit store: redis or memory"`
	ConsumerGroup     string `default:"audit"          help:"Redis stream consumer group"`
	TrustProxy        bool   `default:"false"          help:"Take the client IP from X-Forwarded-For and X-Real-IP"`
}

func (o *Options) rateWindow() time.Duration {
	return time.Duration(o.RateWindowSeconds) * time.Second
}

// ConsumerConfig configures the event consumer from the environment.
type ConsumerConfig struct {
	RedisAddr     string `default:"localhost:6379" envconfig:"REDIS_ADDR"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	LogFormat     string `default:"json"           envconfig:"LOG_FORMAT"`
	ConsumerGroup string `default:"audit"          envconfig:"CONSUMER_GROUP"`
}

// LoadConsumerConfig reads HASHPREFIX_* variables.
func LoadConsumerConfig() (*ConsumerConfig, error) {
	var cfg ConsumerConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Options maps the consumer configuration onto the shared component options.
func (c *ConsumerConfig) Options() *Options {
	return &Options{
		RedisAddr:     c.RedisAddr,
		PostgresDSN:   c.PostgresDSN,
		LogFormat:     c.LogFormat,
		ConsumerGroup: c.ConsumerGroup,
	}
}
