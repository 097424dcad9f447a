package pool_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Griffin1989106/rpipe/pool"
	"github.com/Griffin1989106/rpipe/testbed"
)

type PoolSuite struct {
	suite.Suite
	srv testbed.Server
}

func (s *PoolSuite) SetupTest() {
	s.srv = testbed.Server{}
	s.Require().NoError(s.srv.Start())
}

func (s *PoolSuite) TearDownTest() {
	s.Require().NoError(s.srv.Stop())
}

func (s *PoolSuite) TestLeaseCreatesUpToCapacity() {
	p := pool.New(pool.WithPoolCapacity(2), pool.WithIOTimeout(time.Second))
	ctx := context.Background()

	c1, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	c2, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	s.NotSame(c1, c2)

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Lease(ctx2, s.srv.Addr())
	s.Error(err, "third lease should block and then fail: pool is at capacity")

	p.Release(s.srv.Addr(), c1)
	p.Release(s.srv.Addr(), c2)
}

func (s *PoolSuite) TestReleaseReusesIdleCore() {
	p := pool.New(pool.WithPoolCapacity(1), pool.WithIOTimeout(time.Second))
	ctx := context.Background()

	c1, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	p.Release(s.srv.Addr(), c1)

	c2, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	s.Same(c1, c2, "the idle core should be reused rather than a new one dialed")
}

func (s *PoolSuite) TestReleaseClosesNonLeasableCore() {
	p := pool.New(pool.WithPoolCapacity(1), pool.WithIOTimeout(time.Second))
	ctx := context.Background()

	c1, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	s.Require().NoError(c1.Close()) // simulate a broken connection

	p.Release(s.srv.Addr(), c1)

	c2, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	s.NotSame(c1, c2, "a closed core must never be handed back out")
}

func (s *PoolSuite) TestEvictIdleClosesStaleConnections() {
	p := pool.New(pool.WithPoolCapacity(1), pool.WithIOTimeout(time.Second))
	ctx := context.Background()

	c1, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	p.Release(s.srv.Addr(), c1)

	evicted := p.EvictIdle(0)
	s.Equal(1, evicted)
	s.True(c1.Closed())
}

func (s *PoolSuite) TestDrainClosesIdleAndRejectsFurtherLease() {
	p := pool.New(pool.WithPoolCapacity(1), pool.WithIOTimeout(time.Second))
	ctx := context.Background()

	c1, err := p.Lease(ctx, s.srv.Addr())
	s.Require().NoError(err)
	p.Release(s.srv.Addr(), c1)

	p.Drain()
	s.True(c1.Closed())

	_, err = p.Lease(ctx, s.srv.Addr())
	s.Error(err)
}

func TestPool(t *testing.T) {
	suite.Run(t, new(PoolSuite))
}
