package redis

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/turtacn/scaffold-split/internal/domain/scaffold"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
)

type countingObserver struct {
	mu           sync.Mutex
	hits, misses int
}

func (o *countingObserver) ObserveCacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

type CachedExtractorTestSuite struct {
	suite.Suite
	client   *Client
	calls    int64
	observer *countingObserver
	cache    *CachedExtractor
}

func (s *CachedExtractorTestSuite) SetupTest() {
	s.client, _ = newTestClient(s.T())
	s.calls = 0
	s.observer = &countingObserver{}
	next := scaffold.ExtractorFunc(func(_ context.Context, mol string) (scaffold.Key, error) {
		atomic.AddInt64(&s.calls, 1)
		if mol == "bad" {
			return "", stderrors.New("unparsable")
		}
		if mol == "CC" {
			return "", nil
		}
		return scaffold.Key("key:" + mol), nil
	})
	s.cache = NewCachedExtractor(s.client, next, logging.NewNopLogger(),
		WithPrefix("test:"), WithTTL(time.Hour), WithCacheObserver(s.observer))
}

func (s *CachedExtractorTestSuite) TestMissThenHit() {
	ctx := context.Background()

	k, err := s.cache.Scaffold(ctx, "c1ccccc1")
	s.Require().NoError(err)
	s.Equal(scaffold.Key("key:c1ccccc1"), k)

	k, err = s.cache.Scaffold(ctx, "c1ccccc1")
	s.Require().NoError(err)
	s.Equal(scaffold.Key("key:c1ccccc1"), k)

	s.Equal(int64(1), atomic.LoadInt64(&s.calls))
	s.Equal(1, s.observer.hits)
	s.Equal(1, s.observer.misses)
}

func (s *CachedExtractorTestSuite) TestEmptyScaffoldIsCached() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		k, err := s.cache.Scaffold(ctx, "CC")
		s.Require().NoError(err)
		s.Equal(scaffold.Key(""), k)
	}
	s.Equal(int64(1), atomic.LoadInt64(&s.calls))
}

func (s *CachedExtractorTestSuite) TestErrorsAreNotCached() {
	ctx := context.Background()
	_, err := s.cache.Scaffold(ctx, "bad")
	s.Error(err)
	_, err = s.cache.Scaffold(ctx, "bad")
	s.Error(err)
	s.Equal(int64(2), atomic.LoadInt64(&s.calls))
}

func (s *CachedExtractorTestSuite) TestStoredPayload() {
	ctx := context.Background()
	_, err := s.cache.Scaffold(ctx, "C1CC1")
	s.Require().NoError(err)

	data, err := s.client.Get(ctx, s.cache.cacheKey("C1CC1")).Bytes()
	s.Require().NoError(err)
	var entry cachedScaffold
	s.Require().NoError(msgpack.Unmarshal(data, &entry))
	s.Equal("key:C1CC1", entry.Key)

	ttl := s.client.GetUnderlyingClient().TTL(ctx, s.cache.cacheKey("C1CC1")).Val()
	s.InDelta(float64(time.Hour), float64(ttl), float64(time.Second))
}

func (s *CachedExtractorTestSuite) TestCorruptEntryFallsThrough() {
	ctx := context.Background()
	s.Require().NoError(s.client.Set(ctx, s.cache.cacheKey("C1CC1"), "\xc1", 0).Err())

	k, err := s.cache.Scaffold(ctx, "C1CC1")
	s.Require().NoError(err)
	s.Equal(scaffold.Key("key:C1CC1"), k)
	s.Equal(int64(1), atomic.LoadInt64(&s.calls))
}

func (s *CachedExtractorTestSuite) TestPurge() {
	ctx := context.Background()
	for _, m := range []string{"a", "b", "c"} {
		_, err := s.cache.Scaffold(ctx, m)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.client.Set(ctx, "other:x", "1", 0).Err())

	n, err := s.cache.Purge(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	exists := s.client.GetUnderlyingClient().Exists(ctx, "other:x").Val()
	s.Equal(int64(1), exists)
}

func TestCachedExtractorSuite(t *testing.T) {
	suite.Run(t, new(CachedExtractorTestSuite))
}

func TestCachedExtractor_RedisDown(t *testing.T) {
	client, mr := newTestClient(t)
	mr.Close()

	var calls int64
	next := scaffold.ExtractorFunc(func(_ context.Context, mol string) (scaffold.Key, error) {
		atomic.AddInt64(&calls, 1)
		return scaffold.Key(mol), nil
	})
	c := NewCachedExtractor(client, next, logging.NewNopLogger())

	k, err := c.Scaffold(context.Background(), "c1ccccc1")
	require.NoError(t, err)
	assert.Equal(t, scaffold.Key("c1ccccc1"), k)
	assert.Equal(t, int64(1), calls)
}

func TestCachedExtractor_WithIndexer(t *testing.T) {
	client, _ := newTestClient(t)
	next := scaffold.ExtractorFunc(func(_ context.Context, mol string) (scaffold.Key, error) {
		return scaffold.Key(mol[:1]), nil
	})
	ix := scaffold.NewIndexer(NewCachedExtractor(client, next, logging.NewNopLogger()), scaffold.WithWorkers(3))

	idx, err := ix.ByPosition(context.Background(), []string{"ab", "ac", "bd", "ae", "bf"})
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())
	g, ok := idx.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 3}, g.Members)
}

//Personal.AI order the ending
