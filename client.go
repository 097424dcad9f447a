// Package rpipe is a synchronous Redis client: a Connection Core state
// machine (rconn) layered under a typed Operation Surface (ops), leased
// from a bounded per-endpoint Pool (pool) and a Subscription Machine
// (subscribe) for pub/sub. The root package wires these into one Client
// so callers do not have to juggle leasing and releasing Cores by hand
// for the common case of "run one command against one endpoint".
//
// Structure mirrors the teacher's layering (redis.Sender under
// redisconn/rediscluster, wrapped by redis.Sync for synchronous use) but
// collapses it to this module's single synchronous Core per spec §9: the
// root package corresponds to the teacher's redis.Sync wrapper, pool to
// the teacher's connection-pool-shaped examples (redisconn has none;
// grounded on efritz-deepjoy instead), ops to the teacher's per-command
// helpers in redis/serialize.go and client_test.go's command building.
package rpipe

import (
	"context"

	"github.com/Griffin1989106/rpipe/ops"
	"github.com/Griffin1989106/rpipe/pool"
	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/subscribe"
)

// Client is the package's main entry point: one Pool against one
// default endpoint, handing out *ops.Ops backed by a leased Core for
// each unit of work.
type Client struct {
	pool *pool.Pool
	addr string
}

// New builds a Client that leases Cores for addr from a Pool configured
// by configs, per spec §4.6.
func New(addr string, configs ...pool.ConfigFunc) *Client {
	return &Client{
		pool: pool.New(configs...),
		addr: addr,
	}
}

// Do leases a Core, runs fn with a typed Operation Surface over it, and
// releases the Core back to the Pool when fn returns — whether or not it
// errored, per spec §4.6's release-always contract. The leased Core
// starts in Normal mode; fn may freely call ops.Core().OpenPipeline/
// Multi/Watch for pipelined or transactional work, since Release only
// requires the Core be back in Normal mode by the time fn returns for it
// to be reused (a Core left pipelining or mid-transaction is closed
// rather than pooled, per the Pool's Leasable check).
func (c *Client) Do(ctx context.Context, fn func(o *ops.Ops) error) error {
	core, err := c.pool.Lease(ctx, c.addr)
	if err != nil {
		return err
	}
	defer c.pool.Release(c.addr, core)
	return fn(ops.New(core))
}

// Subscribe dials a dedicated Core (outside the Pool — a subscribed Core
// can never return to Normal mode, per spec §3, so it must not be
// leased/released through the bounded pool) and starts a Subscription
// Machine delivering messages to listener until Close, per spec §4.5.
func (c *Client) Subscribe(listener subscribe.Listener) (*subscribe.Subscription, error) {
	core, err := rconn.Dial(c.addr, c.pool.ConnOptions())
	if err != nil {
		return nil, err
	}
	sub, err := subscribe.New(core, listener)
	if err != nil {
		_ = core.Close()
		return nil, err
	}
	return sub, nil
}

// Close drains the underlying Pool, closing every idle Core and
// rejecting further leases, per spec §4.6.
func (c *Client) Close() {
	c.pool.Drain()
}
