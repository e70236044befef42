package di

import (
	"fmt"
	"time"

	"MarketCoach/internal/domain/repository"
	domsvc "MarketCoach/internal/domain/service"
	"MarketCoach/internal/handler/api"
	internalrepo "MarketCoach/internal/repository"
	"MarketCoach/internal/service/ratelimit"
	"MarketCoach/internal/service/twelvedata"
	"MarketCoach/internal/services/regime"
	"MarketCoach/internal/services/session"
	"MarketCoach/internal/services/universe"
	"MarketCoach/internal/usecase"
	"MarketCoach/pkg/cache"
	"MarketCoach/pkg/config"
	xhttp "MarketCoach/pkg/http"
	pkgkafka "MarketCoach/pkg/kafka"
	applogger "MarketCoach/pkg/logger"
	"MarketCoach/pkg/metrics"
	"MarketCoach/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the application logger. With Kafka enabled and a log
// topic set, errors are aggregated and shipped to that topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producer,
			KeyFields:      []string{"component", "endpoint", "symbol"},
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideCache selects the cache backend from config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return provideRedis(cfg)
	case "layered":
		rc, err := provideRedis(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MaxSize),
			cache.WithLayeredL1TTL(cfg.Cache.L1TTL),
		), nil
	default:
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
			cache.WithMemoryCleanup(cfg.Cache.Cleanup),
		), nil
	}
}

func provideRedis(cfg *config.Config) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Cache.KeyPrefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideClock creates the market clock.
func ProvideClock(cfg *config.Config) (*session.Clock, error) {
	return session.NewClock(cfg.Market.TimeZone, cfg.Market.LocalTimeZone)
}

// ProvideUniverse loads the tracked symbols.
func ProvideUniverse(cfg *config.Config) *universe.Universe {
	return universe.FromConfig(cfg)
}

// ProvideLimiter creates the token buckets shared by the API throttle and the
// upstream credit budget.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(nil)
}

// ProvideMarketData creates the Twelve Data client.
func ProvideMarketData(cfg *config.Config, limiter *ratelimit.Limiter, m repository.Metrics) *twelvedata.Client {
	return twelvedata.New(cfg.TwelveData, limiter, m)
}

// ProvidePublisher creates the Kafka publisher. It returns a nil interface
// when Kafka is disabled so usecases skip publishing.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic, cfg.Kafka.RegimeTopic)
}

// ProvideClassifier picks the deployment's regime classifier.
func ProvideClassifier(cfg *config.Config, u *universe.Universe) (domsvc.RegimeClassifier, error) {
	return regime.New(cfg.Regime.Classifier, u)
}

func ProvideSnapshotGateway(
	cfg *config.Config,
	client *twelvedata.Client,
	c cache.Service,
	clock *session.Clock,
	u *universe.Universe,
	pub repository.Publisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SnapshotGateway {
	return usecase.NewSnapshotGateway(client, c, clock, u, pub, m, l.With(applogger.String("component", "gateway")), usecase.GatewayConfig{
		Configured:     client.Configured(),
		MaxConcurrency: cfg.Snapshot.MaxConcurrency,
		SymbolTimeout:  cfg.TwelveData.Timeout,
	})
}

func ProvideCoach(c cache.Service, clock *session.Clock, l *applogger.Logger) *usecase.CoachUseCase {
	return usecase.NewCoachUseCase(c, clock, l.With(applogger.String("component", "coach")))
}

func ProvideRegimeUseCase(
	gw *usecase.SnapshotGateway,
	classifier domsvc.RegimeClassifier,
	coach *usecase.CoachUseCase,
	pub repository.Publisher,
	l *applogger.Logger,
) *usecase.RegimeUseCase {
	return usecase.NewRegimeUseCase(gw, classifier, coach, pub, l.With(applogger.String("component", "regime")))
}

func ProvideBaselines(client *twelvedata.Client, c cache.Service, l *applogger.Logger) *usecase.BaselineUseCase {
	return usecase.NewBaselineUseCase(client, c, l, client.Configured())
}

func ProvideFundamentals(
	client *twelvedata.Client,
	c cache.Service,
	clock *session.Clock,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FundamentalsUseCase {
	return usecase.NewFundamentalsUseCase(client, c, clock, m, l, client.Configured())
}

func ProvideEvents(c cache.Service, l *applogger.Logger) *usecase.EventsUseCase {
	return usecase.NewEventsUseCase(c, l)
}

// ProvideDashboardHandler assembles the HTTP handler.
func ProvideDashboardHandler(
	cfg *config.Config,
	l *applogger.Logger,
	gw *usecase.SnapshotGateway,
	reg *usecase.RegimeUseCase,
	baselines *usecase.BaselineUseCase,
	fund *usecase.FundamentalsUseCase,
	coach *usecase.CoachUseCase,
	events *usecase.EventsUseCase,
	limiter *ratelimit.Limiter,
) *api.DashboardEchoHandler {
	return api.NewDashboardEchoHandler(l, api.UseCases{
		Snapshot:     gw,
		Regime:       reg,
		Baselines:    baselines,
		Fundamentals: fund,
		Coach:        coach,
		Events:       events,
	}, limiter, cfg.RateLimit, cfg.Stream)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.DashboardEchoHandler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	c cache.Service,
	pub repository.Publisher,
	classifier domsvc.RegimeClassifier,
	client *twelvedata.Client,
) *server.App {
	if !client.Configured() {
		l.Warn("TWELVE_DATA_API_KEY is not set; market endpoints will return ERR_CONFIG")
	}
	l.Info("regime classifier selected", applogger.String("classifier", classifier.Name()))
	return server.New(cfg, l, srv, c, pub)
}
