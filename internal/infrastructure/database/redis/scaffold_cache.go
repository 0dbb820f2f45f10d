package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

// CacheObserver is notified of every cache lookup.
type CacheObserver interface {
	ObserveCacheLookup(hit bool)
}

// cachedScaffold is the msgpack payload stored per molecule.  Wrapping the key
// keeps the empty scaffold distinguishable from a missing entry.
type cachedScaffold struct {
	Key string `msgpack:"k"`
}

// CachedExtractor decorates a scaffold.Extractor with a Redis lookaside
// cache keyed by the SHA-1 of the input string.  Extraction errors are never
// cached, and Redis failures fall through to the wrapped extractor.
type CachedExtractor struct {
	client   *Client
	next     scaffold.Extractor
	logger   logging.Logger
	observer CacheObserver
	prefix   string
	ttl      time.Duration
	group    singleflight.Group
}

type CacheOption func(*CachedExtractor)

func WithPrefix(prefix string) CacheOption {
	return func(c *CachedExtractor) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedExtractor) { c.ttl = ttl }
}

func WithCacheObserver(o CacheObserver) CacheOption {
	return func(c *CachedExtractor) { c.observer = o }
}

// NewCachedExtractor wraps next.  Entries expire after seven days unless
// WithTTL says otherwise; a zero TTL keeps them forever.
func NewCachedExtractor(client *Client, next scaffold.Extractor, log logging.Logger, opts ...CacheOption) *CachedExtractor {
	c := &CachedExtractor{
		client: client,
		next:   next,
		logger: log,
		prefix: "scafsplit:scaffold:",
		ttl:    7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedExtractor) cacheKey(mol string) string {
	sum := sha1.Sum([]byte(mol))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Scaffold implements scaffold.Extractor.
func (c *CachedExtractor) Scaffold(ctx context.Context, mol string) (scaffold.Key, error) {
	key := c.cacheKey(mol)

	if k, ok := c.lookup(ctx, key); ok {
		c.observe(true)
		return k, nil
	}
	c.observe(false)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		k, err := c.next.Scaffold(ctx, mol)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, k)
		return k, nil
	})
	if err != nil {
		return "", err
	}
	return v.(scaffold.Key), nil
}

func (c *CachedExtractor) lookup(ctx context.Context, key string) (scaffold.Key, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Warn("scaffold cache read failed", logging.String("key", key), logging.Err(err))
		return "", false
	}
	var entry cachedScaffold
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("scaffold cache entry corrupt", logging.String("key", key), logging.Err(err))
		return "", false
	}
	return scaffold.Key(entry.Key), true
}

func (c *CachedExtractor) store(ctx context.Context, key string, k scaffold.Key) {
	data, err := msgpack.Marshal(cachedScaffold{Key: string(k)})
	if err != nil {
		c.logger.Warn("scaffold cache encode failed", logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("scaffold cache write failed", logging.String("key", key), logging.Err(err))
	}
}

func (c *CachedExtractor) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCacheLookup(hit)
	}
}

// Purge deletes every entry under the cache prefix and returns the count.
func (c *CachedExtractor) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan scaffold cache")
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to purge scaffold cache")
			}
			deleted += int64(len(keys))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

//Personal.AI order the ending
