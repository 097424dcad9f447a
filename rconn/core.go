// Package rconn implements the Connection Core of spec §4.4: the state
// machine layered over one transport.Transport that mediates normal
// request/reply, pipelined batching, and server-side transactions
// (MULTI/EXEC/DISCARD/WATCH).
//
// The HOW here is borrowed from the teacher's layering of redis.Sender
// (async submission) under redis.Sync/SyncCtx (blocking wrappers): this
// Core collapses that into one synchronous object per spec §9's explicit
// "Transport.execute blocks" model, with the pipeline buffer doing the
// job the teacher's per-shard future queue does in redisconn/conn.go.
package rconn

import (
	"sync"

	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
	"github.com/Griffin1989106/rpipe/transport"
)

// Mode is one of the five Connection-state modes from spec §3, or the
// terminal Closed state.
type Mode int

const (
	Normal Mode = iota
	Pipeline
	Transaction
	PipelineTransaction
	Subscribed
	Closed
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Pipeline:
		return "Pipeline"
	case Transaction:
		return "Transaction"
	case PipelineTransaction:
		return "Pipeline+Transaction"
	case Subscribed:
		return "Subscribed"
	case Closed:
		return "Closed"
	default:
		return "Mode(?)"
	}
}

// pendingRecord is one entry in the pipeline buffer: the command and
// whether it was sent while queued inside a transaction (its ack must be
// discarded rather than surfaced).
type pendingRecord struct {
	cmd      resp.Command
	queued   bool // true if submitted between MULTI and EXEC
	blocking bool
}

// Core is one Connection Core: single-writer, single-reader, never
// shared across goroutines simultaneously (the Pool enforces that by
// lease/return, per spec §5).
type Core struct {
	mu sync.Mutex

	t        *transport.Transport
	endpoint string
	database int

	mode    Mode
	watched bool

	pending []pendingRecord

	closed bool
}

// Options is transport.Options; its Database field is also recorded on
// the Core's state tuple per spec §3.
type Options = transport.Options

// Dial opens a new Core against addr.
func Dial(addr string, opts Options) (*Core, error) {
	t, err := transport.Dial(addr, opts)
	if err != nil {
		return nil, err
	}
	return &Core{t: t, endpoint: addr, database: opts.Database, mode: Normal}, nil
}

// Endpoint returns the address this Core is connected to.
func (c *Core) Endpoint() string { return c.endpoint }

// Mode reports the Core's current mode.
func (c *Core) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Closed reports whether this Core is permanently closed, per spec §3
// "closed? is terminal".
func (c *Core) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Leasable reports whether the Pool may hand this Core to a new
// borrower: mode == Normal, not subscribed, not closed, per spec §3's
// Pool-entry invariant.
func (c *Core) Leasable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.mode == Normal
}

// Close closes the underlying transport and marks the Core terminally
// closed. Idempotent, per spec §7 "Invariant of close".
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Core) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.mode = Closed
	c.pending = nil
	return c.t.Close()
}

// Ping issues PING and expects SimpleString "PONG"; used by the Pool's
// optional health check on lease, per spec §4.6.
func (c *Core) Ping() error {
	rep, err := c.dispatchImmediate(resp.NewCommand("PING"))
	if err != nil {
		return err
	}
	if rep.Kind != resp.KindSimpleString || rep.Str != "PONG" {
		return rediserror.New(rediserror.KindProtocol, "unexpected PING reply")
	}
	return nil
}
