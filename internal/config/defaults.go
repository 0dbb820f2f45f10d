package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultTrainSize = 0.8
	DefaultTestSize  = 0.2

	DefaultSmilesColumn = "smiles"
	DefaultIDColumn     = "Compound ID"
	DefaultLabelColumn  = "measured log solubility in mols per litre"
	DefaultOutputDir    = "."

	DefaultExtractorWorkers = 1
	DefaultProgressEvery    = 1000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 5 * time.Minute
	DefaultServerMaxBodySize     = 64 << 20
	DefaultServerShutdownTimeout = 15 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTTL       = 7 * 24 * time.Hour
	DefaultRedisKeyPrefix = "scafsplit:scaffold:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "scaffold-splits"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "scaffold.split.completed"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "scafsplit"
	DefaultDBMaxConns = 10

	DefaultMetricsNamespace = "scafsplit"
	DefaultMetricsPath      = "/metrics"
)

// NewDefaultConfig returns a Config populated entirely with defaults.  It
// passes Validate.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// that have already been set (non-zero values) are left unchanged so that
// explicit configuration always wins.  Boolean switches are never touched.
//
// A zero split size is indistinguishable from "unset", so the split pair is
// defaulted only when both sizes are zero.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Split ─────────────────────────────────────────────────────────────────
	if cfg.Split.TrainSize == 0 && cfg.Split.TestSize == 0 {
		cfg.Split.TrainSize = DefaultTrainSize
		cfg.Split.TestSize = DefaultTestSize
	}

	// ── Dataset ───────────────────────────────────────────────────────────────
	if cfg.Dataset.SmilesColumn == "" {
		cfg.Dataset.SmilesColumn = DefaultSmilesColumn
	}
	if cfg.Dataset.IDColumn == "" {
		cfg.Dataset.IDColumn = DefaultIDColumn
	}
	if cfg.Dataset.LabelColumn == "" {
		cfg.Dataset.LabelColumn = DefaultLabelColumn
	}
	if cfg.Dataset.OutputDir == "" {
		cfg.Dataset.OutputDir = DefaultOutputDir
	}

	// ── Extractor ─────────────────────────────────────────────────────────────
	if cfg.Extractor.Workers == 0 {
		cfg.Extractor.Workers = DefaultExtractorWorkers
	}
	if cfg.Extractor.ProgressEvery == 0 {
		cfg.Extractor.ProgressEvery = DefaultProgressEvery
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = -1
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

//Personal.AI order the ending
