// Package container wires the service's components with samber/do.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-hashprefix/internal/analytics"
	analyticsstore "github.com/serroba/url-hashprefix/internal/analytics/store"
	"github.com/serroba/url-hashprefix/internal/handlers"
	"github.com/serroba/url-hashprefix/internal/health"
	"github.com/serroba/url-hashprefix/internal/lookup"
	"github.com/serroba/url-hashprefix/internal/messaging"
	"github.com/serroba/url-hashprefix/internal/metrics"
	"github.com/serroba/url-hashprefix/internal/middleware"
	"github.com/serroba/url-hashprefix/internal/ratelimit"
	"github.com/serroba/url-hashprefix/internal/store"
	"go.uber.org/zap"
)

const requestIDLength = 21

// Redis owns the shared Redis client.
type Redis struct {
	*redis.Client
}

// Shutdown closes the client.
func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres owns the connection pool.
type Postgres struct {
	*pgxpool.Pool
}

// Shutdown closes the pool.
func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// LoggerPackage provides the application logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisPackage provides the Redis client shared by cache, rate limiting and events.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the connection pool. It fails when no DSN is configured.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.PostgresDSN == "" {
			return nil, ErrPostgresDisabled
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// MetricsPackage provides the Prometheus registry.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// LookupPackage provides the lookup service: pipeline, optional cache, metrics.
func LookupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (lookup.Cache, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.CacheBackend {
		case CacheRedis:
			client := do.MustInvoke[*Redis](i)
			logger := do.MustInvoke[*zap.Logger](i)

			return store.NewRedisCache(client.Client, time.Duration(opts.CacheTTLSeconds)*time.Second, logger), nil
		case CacheMemory:
			return store.NewMemoryCache(), nil
		case CacheNone:
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: cache backend %q", ErrInvalidOption, opts.CacheBackend)
		}
	})

	do.Provide(injector, func(i *do.Injector) (lookup.Service, error) {
		cache := do.MustInvoke[lookup.Cache](i)
		recorder := do.MustInvoke[*metrics.Metrics](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var service lookup.Service = lookup.NewPipeline()
		if cache != nil {
			service = lookup.NewCachedService(service, cache, recorder, logger)
		}

		return lookup.NewInstrumentedService(service, recorder), nil
	})
}

// PublisherGroupPackage provides the Redis stream publisher and typed publish functions.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client:     client.Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.PrefixesComputedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.PrefixesComputedEvent](
			group.Publisher(), analytics.TopicPrefixesComputed,
		), nil
	})
}

// RateLimitPackage provides the request limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.RateLimitMemoryStore, error) {
		opts := do.MustInvoke[*Options](i)

		s := store.NewRateLimitMemoryStore()
		s.StartSweeper(time.Minute, opts.rateWindow())

		return s, nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RateLimit <= 0 {
			return ratelimit.Unlimited{}, nil
		}

		var s ratelimit.Store

		switch opts.RateLimitBackend {
		case RateLimitRedis:
			s = store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).Client)
		case RateLimitMemory:
			s = do.MustInvoke[*store.RateLimitMemoryStore](i)
		default:
			return nil, fmt.Errorf("%w: rate limit backend %q", ErrInvalidOption, opts.RateLimitBackend)
		}

		return ratelimit.NewSlidingWindowLimiter(s, int64(opts.RateLimit), opts.rateWindow()), nil
	})
}

// HTTPPackage provides the router and the Huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", do.MustInvoke[*metrics.Metrics](i).Handler())

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		generateID, err := nanoid.Standard(requestIDLength)
		if err != nil {
			return nil, fmt.Errorf("create request id generator: %w", err)
		}

		api := humachi.New(router, huma.DefaultConfig("URL Hash Prefix", "1.0.0"))
		clientIP := middleware.ClientIPFor(opts.TrustProxy)
		api.UseMiddleware(middleware.RequestMeta(api, generateID, clientIP))
		api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[ratelimit.Limiter](i), clientIP, logger))

		handlers.RegisterRoutes(api, handlers.NewLookupHandler(
			do.MustInvoke[lookup.Service](i),
			opts.DefaultBits,
			do.MustInvoke[messaging.Publish[analytics.PrefixesComputedEvent]](i),
			logger,
		))

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts, logger)))

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options, logger *zap.Logger) map[string]health.Checker {
	checkers := map[string]health.Checker{
		"redis": health.NewRedisChecker(do.MustInvoke[*Redis](i).Client),
	}

	if opts.PostgresDSN == "" {
		return checkers
	}

	pg, err := do.Invoke[*Postgres](i)
	if err != nil {
		logger.Warn("postgres health check disabled", zap.Error(err))

		return checkers
	}

	checkers["postgres"] = health.NewPostgresChecker(pg.Pool)

	return checkers
}

// AuditStorePackage provides where consumed events are persisted: Postgres when
// a DSN is configured, the logging no-op store otherwise.
func AuditStorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.PostgresDSN == "" {
			logger.Info("no postgres dsn, audit events are only logged")

			return analyticsstore.NewNoop(logger), nil
		}

		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		audit := store.NewPostgresAuditStore(pg.Pool)
		if err := audit.Migrate(ctx); err != nil {
			return nil, err
		}

		return audit, nil
	})
}

// ConsumerGroupPackage provides the consumer group persisting lookup events.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)
		audit := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client.Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: opts.ConsumerGroup,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumer(subscriber, audit, logger))

		return group, nil
	})
}
