// Package minio stores split artifacts in an S3-compatible bucket.
package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

var (
	ErrClientClosed   = errors.New(errors.ErrCodeInternal, "minio client is closed")
	ErrInvalidRequest = errors.New(errors.ErrCodeBadRequest, "invalid artifact request")
)

// MinIOAPI is the subset of *minio.Client the artifact store uses.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// ArtifactStore uploads split outputs under bucket/prefix/<runID>/<name>.
type ArtifactStore struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewArtifactStore connects to cfg.Endpoint and makes sure the bucket exists.
func NewArtifactStore(cfg *MinIOConfig, log logging.Logger) (*ArtifactStore, error) {
	applyDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	s, err := newArtifactStore(client, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("MinIO artifact store connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return s, nil
}

func newArtifactStore(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) (*ArtifactStore, error) {
	applyDefaults(cfg)
	s := &ArtifactStore{client: api, config: cfg, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "scafsplit-artifacts"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "splits"
	}
}

// EnsureBucket creates the configured bucket when it does not exist.
func (s *ArtifactStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket").
			WithDetailf("bucket=%s", s.config.Bucket)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{Region: s.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").
			WithDetailf("bucket=%s", s.config.Bucket)
	}
	s.logger.Info("Created bucket", logging.String("bucket", s.config.Bucket))
	return nil
}

// ObjectKey returns the key an artifact is stored under.
func (s *ArtifactStore) ObjectKey(runID, name string) string {
	return path.Join(s.config.Prefix, runID, name)
}

// Put uploads data and returns its s3:// location.
func (s *ArtifactStore) Put(ctx context.Context, runID, name string, data []byte) (string, error) {
	if runID == "" || name == "" {
		return "", ErrInvalidRequest
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return "", ErrClientClosed
	}

	key := s.ObjectKey(runID, name)
	opts := minio.PutObjectOptions{
		ContentType:  contentType(name),
		UserMetadata: map[string]string{"run-id": runID},
	}
	info, err := s.client.PutObject(ctx, s.config.Bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "artifact upload failed").
			WithDetailf("key=%s", key)
	}
	s.logger.Debug("Uploaded artifact",
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag))
	return "s3://" + s.config.Bucket + "/" + key, nil
}

func (s *ArtifactStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	default:
		return "text/tab-separated-values"
	}
}

//Personal.AI order the ending
