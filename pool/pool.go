// Package pool implements the bounded, per-endpoint Connection Core pool
// of spec §4.6. Its lease/release/evict vocabulary and functional-options
// configuration are grounded on efritz-deepjoy's pool.go and client.go:
// the channel-backed capacity ticket is kept from deepjoy's pool
// (connections chan Conn / nilConnections chan Conn), generalized from a
// single fixed-size pool of one endpoint to a map of per-endpoint pools
// each with their own LIFO idle stack, per-lease health check, and idle
// eviction sweep, since the teacher's own redisconn/rediscluster have no
// Pool of this shape (rediscluster shards by hash slot, not by bounded
// lease/release).
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/bradhe/stopwatch"
	"github.com/efritz/glock"
	"github.com/efritz/overcurrent"

	"github.com/Griffin1989106/rpipe/logging"
	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/rediserror"
)

// BreakerFunc bridges an overcurrent circuit breaker's Call method into
// the shape the Pool invokes dial through, mirroring deepjoy's
// BreakerFunc/noopBreakerFunc pair.
type BreakerFunc func(overcurrent.BreakerFunc) error

func noopBreakerFunc(f overcurrent.BreakerFunc) error {
	return f(context.Background())
}

type config struct {
	connOptions   rconn.Options
	capacity      int
	borrowTimeout time.Duration // 0 means wait forever
	idleTimeout   time.Duration // set by WithIdleTimeout; not read by EvictIdle or RunEvictSweep
	healthCheck   bool
	breakerFunc   BreakerFunc
	clock         glock.Clock
	logger        logging.Logger
}

// ConfigFunc configures a Pool at construction time.
type ConfigFunc func(*config)

func WithUsername(u string) ConfigFunc  { return func(c *config) { c.connOptions.Username = u } }
func WithPassword(p string) ConfigFunc  { return func(c *config) { c.connOptions.Password = p } }
func WithDatabase(db int) ConfigFunc    { return func(c *config) { c.connOptions.Database = db } }
func WithDialTimeout(d time.Duration) ConfigFunc {
	return func(c *config) { c.connOptions.DialTimeout = d }
}
func WithIOTimeout(d time.Duration) ConfigFunc {
	return func(c *config) { c.connOptions.IOTimeout = d }
}
func WithMaxReplySize(n int64) ConfigFunc {
	return func(c *config) { c.connOptions.MaxReplySize = n }
}

// WithPoolCapacity bounds the number of live Cores per endpoint (default 10).
func WithPoolCapacity(n int) ConfigFunc { return func(c *config) { c.capacity = n } }

// WithBorrowTimeout bounds how long Lease waits for a free slot when the
// pool is at capacity (default: wait forever).
func WithBorrowTimeout(d time.Duration) ConfigFunc {
	return func(c *config) { c.borrowTimeout = d }
}

// WithIdleTimeout records an idle threshold in the Pool's configuration
// (default 0). Nothing reads it: EvictIdle and RunEvictSweep take their
// threshold as an argument, so this option does not change eviction.
func WithIdleTimeout(d time.Duration) ConfigFunc { return func(c *config) { c.idleTimeout = d } }

// WithHealthCheck enables a PING check on every lease of an idle Core
// (default: disabled), per spec §4.6.
func WithHealthCheck(enabled bool) ConfigFunc { return func(c *config) { c.healthCheck = enabled } }

// WithBreaker wraps every dial in the given circuit breaker, mirroring
// deepjoy's WithBreaker.
func WithBreaker(breaker overcurrent.CircuitBreaker) ConfigFunc {
	return func(c *config) { c.breakerFunc = breaker.Call }
}

// WithBreakerRegistry wraps every dial in a named breaker from registry,
// mirroring deepjoy's WithBreakerRegistry.
func WithBreakerRegistry(registry overcurrent.Registry, name string) ConfigFunc {
	return func(c *config) {
		c.breakerFunc = func(f overcurrent.BreakerFunc) error {
			return registry.Call(name, f, nil)
		}
	}
}

// WithClock overrides the time source, for deterministic tests with
// glock.NewMockClock().
func WithClock(clock glock.Clock) ConfigFunc { return func(c *config) { c.clock = clock } }

// WithLogger overrides the event logger (default: logging.NewDefaultLogger()).
func WithLogger(logger logging.Logger) ConfigFunc { return func(c *config) { c.logger = logger } }

// Pool is a bounded map from endpoint to a LIFO stack of idle Cores,
// guarded by a single mutex at the top level (per-endpoint state then has
// its own finer-grained mutex), per spec §4.6 and §5's "Shared resource
// policy".
type Pool struct {
	mu        sync.Mutex
	cfg       config
	endpoints map[string]*endpointPool
	draining  bool
}

// ConnOptions returns the dial options configured for this Pool, for
// callers that need to open a Core outside the Pool with matching
// credentials (e.g. a dedicated subscribing connection, per spec §4.5).
func (p *Pool) ConnOptions() rconn.Options { return p.cfg.connOptions }

// New builds a Pool. No connections are dialed until the first Lease.
func New(configs ...ConfigFunc) *Pool {
	cfg := config{
		capacity:    10,
		breakerFunc: noopBreakerFunc,
		clock:       glock.NewRealClock(),
		logger:      logging.NewDefaultLogger(),
	}
	for _, f := range configs {
		f(&cfg)
	}
	return &Pool{cfg: cfg, endpoints: make(map[string]*endpointPool)}
}

type idleEntry struct {
	core      *rconn.Core
	idleSince time.Time
}

// endpointPool is the LIFO idle stack plus capacity ticket bookkeeping
// for one endpoint.
type endpointPool struct {
	mu      sync.Mutex
	idle    []idleEntry
	tickets chan struct{}
}

func newEndpointPool(capacity int) *endpointPool {
	ep := &endpointPool{tickets: make(chan struct{}, capacity)}
	for i := 0; i < capacity; i++ {
		ep.tickets <- struct{}{}
	}
	return ep
}

func (p *Pool) endpointFor(addr string) (*endpointPool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draining {
		return nil, rediserror.New(rediserror.KindPoolExhausted, "pool is draining")
	}
	ep, ok := p.endpoints[addr]
	if !ok {
		ep = newEndpointPool(p.cfg.capacity)
		p.endpoints[addr] = ep
	}
	return ep, nil
}

// Lease returns a healthy Core for addr: an idle one from the stack
// (health-checked if configured) or a freshly dialed one if capacity
// allows, per spec §4.6. It blocks up to the configured borrow timeout
// (or ctx's deadline, whichever is sooner) if the endpoint is at
// capacity, failing with KindPoolExhausted.
func (p *Pool) Lease(ctx context.Context, addr string) (core *rconn.Core, err error) {
	start := stopwatch.Start()
	defer func() {
		elapsed := start.Stop().Milliseconds()
		if err != nil {
			p.cfg.logger.Report(logging.PoolBorrowFailed, addr, elapsed, err)
		} else {
			p.cfg.logger.Report(logging.PoolLeased, addr, elapsed)
		}
	}()

	ep, err := p.endpointFor(addr)
	if err != nil {
		return nil, err
	}

	for {
		ep.mu.Lock()
		if n := len(ep.idle); n > 0 {
			entry := ep.idle[n-1]
			ep.idle = ep.idle[:n-1]
			ep.mu.Unlock()
			if !p.cfg.healthCheck {
				return entry.core, nil
			}
			if err := entry.core.Ping(); err == nil {
				return entry.core, nil
			}
			_ = entry.core.Close()
			ep.tickets <- struct{}{}
			continue
		}
		ep.mu.Unlock()
		break
	}

	select {
	case <-ep.tickets:
	default:
		if err := p.waitForTicket(ctx, ep); err != nil {
			return nil, err
		}
	}

	core, dialErr := p.dial(addr)
	if dialErr != nil {
		ep.tickets <- struct{}{}
		return nil, dialErr
	}
	return core, nil
}

func (p *Pool) waitForTicket(ctx context.Context, ep *endpointPool) error {
	var timeoutCh <-chan time.Time
	if p.cfg.borrowTimeout > 0 {
		timeoutCh = p.cfg.clock.After(p.cfg.borrowTimeout)
	}
	select {
	case <-ep.tickets:
		return nil
	case <-timeoutCh:
		return rediserror.New(rediserror.KindPoolExhausted, "borrow timeout elapsed")
	case <-ctx.Done():
		return rediserror.Wrap(rediserror.KindPoolExhausted, ctx.Err(), "borrow cancelled")
	}
}

func (p *Pool) dial(addr string) (*rconn.Core, error) {
	p.cfg.logger.Report(logging.Connecting, addr)
	var core *rconn.Core
	err := p.cfg.breakerFunc(func(context.Context) error {
		c, derr := rconn.Dial(addr, p.cfg.connOptions)
		core = c
		return derr
	})
	if err != nil {
		p.cfg.logger.Report(logging.ConnectFailed, addr, err)
		return nil, err
	}
	p.cfg.logger.Report(logging.Connected, addr)
	return core, nil
}

// Release returns core to addr's idle stack if it is still Leasable
// (mode == Normal, not closed); otherwise the Core is closed and its
// capacity ticket is freed for a future dial, per spec §4.6.
func (p *Pool) Release(addr string, core *rconn.Core) {
	p.mu.Lock()
	ep, ok := p.endpoints[addr]
	p.mu.Unlock()
	if !ok {
		_ = core.Close()
		return
	}

	if core.Leasable() {
		ep.mu.Lock()
		ep.idle = append(ep.idle, idleEntry{core: core, idleSince: p.cfg.clock.Now()})
		ep.mu.Unlock()
		p.cfg.logger.Report(logging.PoolReleased, addr)
		return
	}

	_ = core.Close()
	ep.tickets <- struct{}{}
}

// EvictIdle closes and drops every idle Core across every endpoint that
// has been idle longer than olderThan, per spec §4.6. It returns the
// number of Cores evicted.
func (p *Pool) EvictIdle(olderThan time.Duration) int {
	p.mu.Lock()
	endpoints := make(map[string]*endpointPool, len(p.endpoints))
	for addr, ep := range p.endpoints {
		endpoints[addr] = ep
	}
	p.mu.Unlock()

	now := p.cfg.clock.Now()
	evicted := 0
	for addr, ep := range endpoints {
		ep.mu.Lock()
		kept := ep.idle[:0]
		for _, entry := range ep.idle {
			if now.Sub(entry.idleSince) > olderThan {
				_ = entry.core.Close()
				ep.tickets <- struct{}{}
				evicted++
				p.cfg.logger.Report(logging.PoolEvicted, addr, now.Sub(entry.idleSince))
			} else {
				kept = append(kept, entry)
			}
		}
		ep.idle = kept
		ep.mu.Unlock()
	}
	return evicted
}

// RunEvictSweep runs EvictIdle every interval until ctx is cancelled,
// using the Pool's configured clock so tests can drive it deterministically
// with glock.NewMockClock(). It is the caller's responsibility to start
// this as a goroutine; Drain does not stop it.
func (p *Pool) RunEvictSweep(ctx context.Context, interval, olderThan time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.cfg.clock.After(interval):
			p.EvictIdle(olderThan)
		}
	}
}

// Drain closes every idle Core across every endpoint and marks the Pool
// permanently draining: further Lease calls fail immediately, per
// spec §4.6.
func (p *Pool) Drain() {
	p.mu.Lock()
	p.draining = true
	endpoints := make(map[string]*endpointPool, len(p.endpoints))
	for addr, ep := range p.endpoints {
		endpoints[addr] = ep
	}
	p.mu.Unlock()

	for addr, ep := range endpoints {
		ep.mu.Lock()
		for _, entry := range ep.idle {
			_ = entry.core.Close()
		}
		ep.idle = nil
		ep.mu.Unlock()
		p.cfg.logger.Report(logging.PoolDrained, addr)
	}
}
