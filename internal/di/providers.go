package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"TazeAI/internal/domain/models"
	"TazeAI/internal/domain/repository"
	domsvc "TazeAI/internal/domain/service"
	"TazeAI/internal/handler/api"
	internalrepo "TazeAI/internal/repository"
	icache "TazeAI/internal/service/cache"
	"TazeAI/internal/service/ratelimit"
	"TazeAI/internal/service/tradebox"
	"TazeAI/internal/services/analytics"
	"TazeAI/internal/services/backtest"
	"TazeAI/internal/services/model"
	"TazeAI/internal/usecase"
	pkgch "TazeAI/pkg/clickhouse"
	"TazeAI/pkg/config"
	xhttp "TazeAI/pkg/http"
	pkgkafka "TazeAI/pkg/kafka"
	applogger "TazeAI/pkg/logger"
	"TazeAI/pkg/metrics"
	"TazeAI/pkg/server"
)

// ProvideLogger builds the zerolog-backed logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output, Service: "tazeai"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideClickHouseClient creates a ClickHouse client and its schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx, pkgch.ClientConfig{
		Host:         cfg.ClickHouse.Host,
		Port:         cfg.ClickHouse.Port,
		Database:     cfg.ClickHouse.Database,
		User:         cfg.ClickHouse.User,
		Password:     cfg.ClickHouse.Password,
		UseHTTP:      cfg.ClickHouse.UseHTTP,
		DialTimeout:  cfg.ClickHouse.DialTimeout,
		ReadTimeout:  cfg.ClickHouse.ReadTimeout,
		MaxExecTime:  cfg.ClickHouse.MaxExecutionTime,
		AsyncInsert:  cfg.ClickHouse.AsyncInsert,
		WaitForAsync: cfg.ClickHouse.WaitForAsync,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideFeatureStore selects the file or ClickHouse backend.
func ProvideFeatureStore(cfg *config.Config, l *applogger.Logger) (repository.FeatureStore, func(), error) {
	switch cfg.Store.Backend {
	case "clickhouse":
		ch, cleanup, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := internalrepo.NewCHFeatureStore(ch)
		store.SetLogger(l)
		l.Info("feature store ready", applogger.String("backend", "clickhouse"), applogger.String("database", cfg.ClickHouse.Database))
		return store, cleanup, nil
	default:
		store, err := internalrepo.NewFileFeatureStore(cfg.Store.DataRoot, l)
		if err != nil {
			return nil, nil, fmt.Errorf("file feature store: %w", err)
		}
		l.Info("feature store ready", applogger.String("backend", "file"), applogger.String("root", cfg.Store.DataRoot))
		return store, func() {}, nil
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
// Error logs are shipped through it when log.collect_topic is set.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		RequiredAcks:  cfg.Kafka.RequiredAcks,
		Compression:   cfg.Kafka.Compression,
		MaxAttempts:   cfg.Kafka.Producer.MaxAttempts,
		WriteTimeout:  cfg.Kafka.Producer.WriteTimeout,
		ReadTimeout:   cfg.Kafka.Producer.ReadTimeout,
		BatchSize:     cfg.Kafka.Producer.BatchSize,
		BatchBytes:    cfg.Kafka.Producer.BatchBytes,
		Linger:        cfg.Kafka.Producer.Linger,
		Async:         cfg.Kafka.Producer.Async,
		KeyedOrdering: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Log.CollectTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Log.CollectInterval,
			Topic:        cfg.Log.CollectTopic,
			Publisher:    producer,
		})
	}
	return producer, func() {
		l.RemoveCollector()
		_ = producer.Close()
	}, nil
}

// ProvideSignalPublisher publishes analyzer output to Kafka when enabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NopSignalPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// Distinct symbol sets kept in memory.
const signalCacheEntries = 1024

// Requests per second across the four endpoints of one bundle fetch.
const providerRequestsPerSecond = rate.Limit(8)

// ProvideSignalCache is an in-process TTL cache, fronted by Redis when enabled.
func ProvideSignalCache(cfg *config.Config, l *applogger.Logger) (repository.SignalCache, func(), error) {
	local := icache.NewTTLCache(time.Now, signalCacheEntries)
	if !cfg.Redis.Enabled {
		return icache.NewSignalCache(local, l), func() {}, nil
	}
	rc, err := icache.NewRedisCache(icache.RedisConfig{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return icache.NewSignalCache(icache.NewFallbackCache(rc, local, l), l), func() { _ = rc.Close() }, nil
}

// ProvidePredictor loads the remote or local model. A missing model is not
// an error: the predictor is nil and consumers run degraded.
func ProvidePredictor(cfg *config.Config, l *applogger.Logger) (domsvc.Predictor, error) {
	var (
		p   domsvc.Predictor
		err error
	)
	if cfg.Model.RemoteURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.Timeout)
		defer cancel()
		p, err = analytics.NewHTTPPredictor(ctx, analytics.NewHTTPServiceBase(cfg.Model.RemoteURL, cfg.Model.Timeout))
	} else {
		p, err = model.Load(cfg.Model.ArtifactPath)
	}
	if errors.Is(err, models.ErrModelNotLoaded) {
		l.Warn("model not loaded, running degraded", applogger.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}
	l.Info("model loaded",
		applogger.Int("features", len(p.FeatureNames())),
		applogger.Int("horizon_days", p.HorizonDays()),
	)
	return p, nil
}

// ProvideMarketDataProvider builds the Tradebox client.
func ProvideMarketDataProvider(cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.MarketDataProvider {
	c := tradebox.New(tradebox.Config{
		BaseURL:  cfg.Provider.BaseURL,
		User:     cfg.Provider.User,
		Password: cfg.Provider.Password,
		Timeout:  cfg.Provider.Timeout,
	}, l)
	return c.With(tradebox.WithMetrics(m), tradebox.WithLimiter(rate.NewLimiter(providerRequestsPerSecond, 4)))
}

func ProvideIngestUseCase(
	provider repository.MarketDataProvider,
	store repository.FeatureStore,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.IngestUseCase {
	return usecase.NewIngestUseCase(provider, store, m, l, usecase.IngestOptions{
		RangeDays:   cfg.Ingest.RangeDays,
		Concurrency: cfg.Ingest.Concurrency,
		SymbolDelay: cfg.Ingest.SymbolDelay,
	})
}

func ProvideTrainUseCase(store repository.FeatureStore, l *applogger.Logger) *usecase.TrainUseCase {
	return usecase.NewTrainUseCase(store, l)
}

// ProvideProfiles converts the configured trading profiles.
func ProvideProfiles(cfg *config.Config) ([]backtest.Profile, error) {
	return backtest.ProfilesFromConfig(cfg.Backtest.Profiles)
}

func ProvideBacktestUseCase(
	store repository.FeatureStore,
	predictor domsvc.Predictor,
	profiles []backtest.Profile,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.BacktestUseCase {
	return usecase.NewBacktestUseCase(store, predictor, profiles, backtest.Options{
		InitialCapital: cfg.Backtest.InitialCapital,
		LookbackDays:   cfg.Backtest.LookbackDays,
	}, cfg.Backtest.Workers, m, l)
}

func ProvideMarketAnalyzer(
	store repository.FeatureStore,
	predictor domsvc.Predictor,
	sc repository.SignalCache,
	pub repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.MarketAnalyzer {
	return usecase.NewMarketAnalyzer(store, predictor, l,
		usecase.WithSignalCache(sc, cfg.Analyzer.CacheTTL),
		usecase.WithPublisher(pub),
		usecase.WithAnalyzerMetrics(m),
	)
}

func ProvideScheduler(ingest *usecase.IngestUseCase, analyzer *usecase.MarketAnalyzer, l *applogger.Logger, cfg *config.Config) *usecase.Scheduler {
	return usecase.NewScheduler(ingest, analyzer, cfg.Ingest.Tickers, l)
}

// ProvideRateLimiter converts rate tokens per refill period into a per-client bucket.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	rl := cfg.Server.RateLimit
	if !rl.Enabled || rl.Rate <= 0 {
		return nil
	}
	refill := rl.Refill
	if refill <= 0 {
		refill = time.Second
	}
	return ratelimit.New(float64(rl.Rate)/refill.Seconds(), rl.Burst, 10*time.Minute)
}

func ProvideHTTPHandler(
	l *applogger.Logger,
	analyzer *usecase.MarketAnalyzer,
	bt *usecase.BacktestUseCase,
	rl *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewSignalsEchoHandler(l, analyzer, bt, rl)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, s *usecase.Scheduler) *server.App {
	return server.New(cfg, l, h, s)
}
