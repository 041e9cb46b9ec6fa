//go:build integration

package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"merx/internal/criteria"
	"merx/internal/storefront/cart"
	"merx/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cart.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cart.NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) TearDownSuite() {
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(context.Background())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	stored := &criteria.Cart{
		SessionKey: "sess-1",
		Lines: []criteria.CartLine{
			{ProductID: "p1", Quantity: 2, UnitPrice: 9.5},
			{ProductID: "p2", Quantity: 1, UnitPrice: 30},
		},
	}
	s.Require().NoError(s.store.Put(ctx, stored))

	got, err := s.store.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(stored.Lines, got.Lines)
}

func (s *RedisStoreSuite) TestMissingCartIsNil() {
	got, err := s.store.Get(context.Background(), "sess-none")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisStoreSuite) TestEmptySessionKeyIsNil() {
	got, err := s.store.Get(context.Background(), "")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, &criteria.Cart{
		SessionKey: "sess-1",
		Lines:      []criteria.CartLine{{ProductID: "p1", Quantity: 1}},
	}))
	s.Require().NoError(s.store.Delete(ctx, "sess-1"))

	got, err := s.store.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.Nil(got)
}
