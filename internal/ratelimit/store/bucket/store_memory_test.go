package bucket

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	now   time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.store = NewInMemoryBucketStore()
	s.now = time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) fill(key string, n int) {
	for range n {
		result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.Require().True(result.Allowed)
	}
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "agent:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("requests up to the limit allowed", func() {
		s.fill("agent:limit", testLimit-1)
		result, err := s.store.Allow(s.ctx, "agent:limit", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over the limit denied with retry hint", func() {
		s.fill("agent:over", testLimit)
		s.now = s.now.Add(20 * time.Second)
		result, err := s.store.Allow(s.ctx, "agent:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(40, result.RetryAfter)
	})

	s.Run("window slides past old requests", func() {
		s.fill("agent:slide", testLimit)
		s.now = s.now.Add(testWindow + time.Second)
		result, err := s.store.Allow(s.ctx, "agent:slide", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})
}

func (s *InMemoryBucketStoreSuite) TestAllowN() {
	s.Run("cost of 5 consumes 5 slots", func() {
		result, err := s.store.AllowN(s.ctx, "agent:five", 5, testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(5, result.Remaining)
	})

	s.Run("denied cost records nothing", func() {
		_, err := s.store.AllowN(s.ctx, "agent:deny", 7, testLimit, testWindow)
		s.Require().NoError(err)

		result, err := s.store.AllowN(s.ctx, "agent:deny", 4, testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)

		count, err := s.store.GetCurrentCount(s.ctx, "agent:deny")
		s.Require().NoError(err)
		s.Equal(7, count)
	})
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	s.fill("agent:reset", testLimit)
	s.Require().NoError(s.store.Reset(s.ctx, "agent:reset"))

	count, err := s.store.GetCurrentCount(s.ctx, "agent:reset")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *InMemoryBucketStoreSuite) TestKeysAreIndependent() {
	s.fill("agent:a", testLimit)
	result, err := s.store.Allow(s.ctx, "agent:b", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryBucketStoreSuite) TestConcurrent() {
	const limit = 100
	var wg sync.WaitGroup
	var allowed, failed atomic.Int32

	for range 200 {
		wg.Go(func() {
			result, err := s.store.Allow(s.ctx, "agent:concurrent", limit, testWindow)
			if err != nil {
				failed.Add(1)
				return
			}
			if result.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	s.Zero(failed.Load())
	s.Equal(int32(limit), allowed.Load())
}
