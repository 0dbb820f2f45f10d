// Package bootstrap builds the split service and its optional infrastructure
// (scaffold cache, artifact storage, run history, split events, metrics) from
// a loaded Config.  Integrations are connected only when enabled.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/scaffold-split/internal/application/split"
	"github.com/turtacn/scaffold-split/internal/chem/murcko"
	"github.com/turtacn/scaffold-split/internal/config"
	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	pgconn "github.com/turtacn/scaffold-split/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/scaffold-split/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/scaffold-split/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/scaffold-split/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/prometheus"
	minioclient "github.com/turtacn/scaffold-split/internal/infrastructure/storage/minio"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// HealthChecker reports the health of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// Infrastructure holds the clients opened for one process.
type Infrastructure struct {
	Service   *split.Service
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.SplitMetrics

	pg        *pgconn.Connection
	redis     *redisclient.Client
	cache     *redisclient.CachedExtractor
	minio     *minioclient.ArtifactStore
	publisher *kafkainfra.SplitEventPublisher

	logger logging.Logger
}

// New connects every enabled integration and assembles the split service.
// Artifacts go to MinIO when it is enabled and to cfg.Dataset.OutputDir
// otherwise.  On error every client opened so far is closed.
func New(cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		infra.Collector = collector
		infra.Metrics = prometheus.NewSplitMetrics(collector)
	}

	var extractor scaffold.Extractor = murcko.NewExtractor()

	if cfg.Redis.Enabled {
		cli, err := redisclient.NewClient(&redisclient.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.redis = cli
		opts := []redisclient.CacheOption{
			redisclient.WithPrefix(cfg.Redis.KeyPrefix),
			redisclient.WithTTL(cfg.Redis.DefaultTTL),
		}
		if infra.Metrics != nil {
			opts = append(opts, redisclient.WithCacheObserver(infra.Metrics))
		}
		infra.cache = redisclient.NewCachedExtractor(cli, extractor, logger, opts...)
		extractor = infra.cache
	}

	indexerOpts := []scaffold.IndexerOption{
		scaffold.WithWorkers(cfg.Extractor.Workers),
		scaffold.WithProgressEvery(cfg.Extractor.ProgressEvery),
		scaffold.WithLogger(logger.Named("indexer")),
	}
	if infra.Metrics != nil {
		indexerOpts = append(indexerOpts, scaffold.WithObserver(infra.Metrics))
	}
	indexer := scaffold.NewIndexer(extractor, indexerOpts...)

	svcOpts := []split.Option{split.WithLogger(logger.Named("split"))}
	if infra.Metrics != nil {
		svcOpts = append(svcOpts, split.WithRecorder(infra.Metrics))
	}

	if cfg.MinIO.Enabled {
		store, err := minioclient.NewArtifactStore(&minioclient.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
			Prefix:          cfg.MinIO.Prefix,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.minio = store
		svcOpts = append(svcOpts, split.WithArtifactStore(store))
	} else {
		svcOpts = append(svcOpts, split.WithArtifactStore(split.NewLocalStore(cfg.Dataset.OutputDir)))
	}

	if cfg.Database.Enabled {
		conn, err := pgconn.NewConnection(pgconn.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.DBName,
			Username:        cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		infra.pg = conn
		if cfg.Database.AutoMigrate {
			if err := conn.RunMigrations(); err != nil {
				infra.Close()
				return nil, fmt.Errorf("postgres migrations: %w", err)
			}
		}
		svcOpts = append(svcOpts, split.WithRunRepository(pgrepo.NewPostgresRunRepo(conn, logger)))
	}

	if cfg.Kafka.Enabled {
		producer, err := kafkainfra.NewProducer(kafkainfra.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			BatchSize:    cfg.Kafka.BatchSize,
			WriteTimeout: cfg.Kafka.WriteTimeout,
			RequiredAcks: cfg.Kafka.RequiredAcks,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.publisher = kafkainfra.NewSplitEventPublisher(producer, cfg.Kafka.Topic)
		svcOpts = append(svcOpts, split.WithEventPublisher(infra.publisher))
	}

	infra.Service = split.NewService(indexer, svcOpts...)
	logger.Info("split service initialized",
		logging.Bool("metrics", infra.Metrics != nil),
		logging.Bool("redis", infra.redis != nil),
		logging.Bool("minio", infra.minio != nil),
		logging.Bool("postgres", infra.pg != nil),
		logging.Bool("kafka", infra.publisher != nil))
	return infra, nil
}

// PurgeScaffoldCache deletes every cached scaffold key and returns how many
// were removed.
func (i *Infrastructure) PurgeScaffoldCache(ctx context.Context) (int64, error) {
	if i.cache == nil {
		return 0, errors.New(errors.ErrCodeServiceUnavailable, "scaffold cache is not enabled")
	}
	n, err := i.cache.Purge(ctx)
	if err != nil {
		return n, err
	}
	i.logger.Info("scaffold cache purged", logging.Int64("deleted", n))
	return n, nil
}

// HealthCheckers returns one checker per connected dependency.
func (i *Infrastructure) HealthCheckers() []HealthChecker {
	var out []HealthChecker
	if i.pg != nil {
		out = append(out, &postgresHealthAdapter{conn: i.pg})
	}
	if i.redis != nil {
		out = append(out, &redisHealthAdapter{client: i.redis})
	}
	return out
}

// Close releases every open client.  It is safe to call more than once.
func (i *Infrastructure) Close() {
	if i.publisher != nil {
		if err := i.publisher.Close(); err != nil {
			i.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if i.pg != nil {
		if err := i.pg.Close(); err != nil {
			i.logger.Warn("postgres close failed", logging.Err(err))
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			i.logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if i.minio != nil {
		if err := i.minio.Close(); err != nil {
			i.logger.Warn("minio close failed", logging.Err(err))
		}
	}
}

type postgresHealthAdapter struct {
	conn *pgconn.Connection
}

func (a *postgresHealthAdapter) Name() string { return "postgres" }

func (a *postgresHealthAdapter) Check(ctx context.Context) error {
	return a.conn.HealthCheck(ctx)
}

type redisHealthAdapter struct {
	client *redisclient.Client
}

func (a *redisHealthAdapter) Name() string { return "redis" }

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

//Personal.AI order the ending
