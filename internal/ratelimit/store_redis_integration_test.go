//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/ratelimit"
	"immersionfacile/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = ratelimit.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestDeniesOverLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "1.2.3.4:/admin/login", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "1.2.3.4:/admin/login", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.WithinDuration(time.Now().Add(time.Minute), res.ResetAt, 5*time.Second)
}

func (s *RedisStoreSuite) TestWindowExpires() {
	ctx := context.Background()
	window := 200 * time.Millisecond
	_, err := s.store.Allow(ctx, "k", 1, window)
	s.Require().NoError(err)

	res, err := s.store.Allow(ctx, "k", 1, window)
	s.Require().NoError(err)
	s.False(res.Allowed)

	time.Sleep(window + 50*time.Millisecond)
	res, err = s.store.Allow(ctx, "k", 1, window)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
