package redis

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/casefolio/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientFromUniversal(db, logging.NewNopLogger())
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type quote struct {
	Success     bool   `json:"success"`
	MedianPrice string `json:"median_price"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := quote{Success: true, MedianPrice: "$1.50"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var dest quote
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest quote
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_NullCacheMarker() {
	s.mock.ExpectGet("test:key1").SetVal(nullMarker)

	var dest quote
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "key1", &dest))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:key1").SetErr(assert.AnError)

	var dest quote
	err := s.cache.Get(context.Background(), "key1", &dest)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_NoJitter() {
	raw, _ := json.Marshal(quote{Success: true})
	s.mock.ExpectSet("test:key1", raw, time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "key1", quote{Success: true}, time.Minute))
}

func (s *CacheTestSuite) TestDelete_Success() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "k1", "k2"))
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists_True() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	s.NoError(err)
	s.True(exists)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func newMiniCache(t *testing.T) Cache {
	t.Helper()
	client, _ := newTestClient(t)
	return NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"))
}

func TestGetOrSet_LoadsOnceThenHits(t *testing.T) {
	cache := newMiniCache(t)
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`{"success":true,"median_price":"$2.00"}`), nil
	}

	var first json.RawMessage
	require.NoError(t, cache.GetOrSet(ctx, "Clutch Case", &first, time.Hour, loader))
	assert.JSONEq(t, `{"success":true,"median_price":"$2.00"}`, string(first))

	var second json.RawMessage
	require.NoError(t, cache.GetOrSet(ctx, "Clutch Case", &second, time.Hour, loader))
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	cache := newMiniCache(t)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return quote{Success: true}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var q quote
			assert.NoError(t, cache.GetOrSet(ctx, "k", &q, time.Hour, loader))
			assert.True(t, q.Success)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestGetOrSet_LoaderErrorNotCached(t *testing.T) {
	cache := newMiniCache(t)
	ctx := context.Background()

	var q quote
	err := cache.GetOrSet(ctx, "k", &q, time.Hour, func(context.Context) (interface{}, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetOrSet_NilResultIsMiss(t *testing.T) {
	cache := newMiniCache(t)

	var q quote
	err := cache.GetOrSet(context.Background(), "k", &q, time.Hour, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Equal(t, ErrCacheMiss, err)
}

//Personal.AI order the ending
