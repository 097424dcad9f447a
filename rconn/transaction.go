package rconn

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Multi transitions Normal -> Transaction or Pipeline ->
// Pipeline+Transaction. MULTI inside MULTI is idempotent, never an
// error, per spec §4.4 "mirrors the source intent".
func (c *Core) Multi() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rediserror.New(rediserror.KindConnectionLost, "MULTI on closed connection")
	}
	switch c.mode {
	case Normal:
		return c.sendControlLocked(resp.NewCommand("MULTI"), Transaction)
	case Pipeline:
		return c.sendControlLocked(resp.NewCommand("MULTI"), PipelineTransaction)
	case Transaction, PipelineTransaction:
		return nil // idempotent
	default:
		return rediserror.New(rediserror.KindUnsupported, "cannot MULTI in mode "+c.mode.String())
	}
}

// sendControlLocked sends a control command (MULTI/WATCH) that always
// replies with a simple "+OK", transitioning to nextMode on success.
// When pipelining is active, the control command is enqueued like any
// other and its ack is discarded at flush time the same way a queued
// command's ack is (they share the "queued" bucket since both are
// acked before EXEC and neither produces a caller-visible result).
func (c *Core) sendControlLocked(cmd resp.Command, nextMode Mode) error {
	if c.mode == Pipeline {
		if err := c.enqueueLocked(cmd, true); err != nil {
			return err
		}
		c.mode = nextMode
		return nil
	}
	c.mu.Unlock()
	rep, err := c.dispatchImmediate(cmd)
	c.mu.Lock()
	if err != nil {
		return err
	}
	if rep.IsError() {
		return rediserror.New(rediserror.KindServerError, rep.ErrMsg)
	}
	c.mode = nextMode
	return nil
}

// Exec sends EXEC, reads the multi-bulk array of queued replies, and
// drops back to Normal (from Transaction) or Pipeline (from
// Pipeline+Transaction). A nil multi-bulk reply — the WATCH-aborted
// case — returns an empty, non-error result, per spec §4.4 and §8
// property 4.
func (c *Core) Exec() ([]resp.Reply, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, rediserror.New(rediserror.KindConnectionLost, "EXEC on closed connection")
	}
	switch c.mode {
	case Transaction:
		c.mu.Unlock()
		rep, err := c.dispatchImmediate(resp.NewCommand("EXEC"))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.mode = Normal
		c.watched = false
		c.mu.Unlock()
		return execResult(rep)
	case PipelineTransaction:
		if err := c.enqueueLocked(resp.NewCommand("EXEC"), false); err != nil {
			c.mu.Unlock()
			return nil, err
		}
		c.mode = Pipeline
		c.mu.Unlock()
		// The EXEC reply is collected positionally by ClosePipeline like
		// any other pending record; callers that pipeline a transaction
		// read the EXEC slot from ClosePipeline's outcome list themselves
		// and pass it through execResult.
		return nil, nil
	default:
		c.mu.Unlock()
		return nil, rediserror.New(rediserror.KindInvalidState, "EXEC without MULTI")
	}
}

// execResult converts EXEC's raw reply into the ordered outcome slice,
// or an empty slice with no error for the WATCH-aborted nil case.
func execResult(rep resp.Reply) ([]resp.Reply, error) {
	if rep.IsError() {
		return nil, rediserror.New(rediserror.KindServerError, rep.ErrMsg)
	}
	if rep.Kind == resp.KindMultiBulk && rep.Null {
		return []resp.Reply{}, nil
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "EXEC reply was not a multi-bulk")
	}
	return rep.Items, nil
}

// ExecResult is exported so a caller driving a pipelined transaction
// (Pipeline+Transaction, where Exec itself returns nil, nil and the
// real EXEC reply surfaces from ClosePipeline) can apply the same
// WATCH-abort/ordering rules to that reply.
func ExecResult(rep resp.Reply) ([]resp.Reply, error) { return execResult(rep) }

// Discard sends DISCARD, drops queued commands, and returns to the
// corresponding non-transaction mode. If pipelining was not externally
// requested (i.e. we were in plain Transaction, not
// Pipeline+Transaction), this also closes the pipeline — there is
// nothing left to flush since DISCARD already dropped it server-side.
func (c *Core) Discard() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return rediserror.New(rediserror.KindConnectionLost, "DISCARD on closed connection")
	}
	switch c.mode {
	case Transaction:
		c.mu.Unlock()
		rep, err := c.dispatchImmediate(resp.NewCommand("DISCARD"))
		c.mu.Lock()
		c.mode = Normal
		c.watched = false
		c.pending = nil
		c.mu.Unlock()
		if err != nil {
			return err
		}
		if rep.IsError() {
			return rediserror.New(rediserror.KindServerError, rep.ErrMsg)
		}
		return nil
	case PipelineTransaction:
		if err := c.enqueueLocked(resp.NewCommand("DISCARD"), false); err != nil {
			c.mu.Unlock()
			return err
		}
		c.mode = Pipeline
		c.mu.Unlock()
		return nil
	default:
		c.mu.Unlock()
		return rediserror.New(rediserror.KindInvalidState, "DISCARD without MULTI")
	}
}

// Watch is only valid in Normal or Pipeline; inside Transaction* it
// raises InvalidState, per spec §4.4.
func (c *Core) Watch(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rediserror.New(rediserror.KindConnectionLost, "WATCH on closed connection")
	}
	if c.mode != Normal && c.mode != Pipeline {
		return rediserror.New(rediserror.KindInvalidState, "WATCH after MULTI")
	}
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	cmd := resp.Command{Name: "WATCH", Args: args}
	err := c.sendControlLocked(cmd, c.mode)
	if err == nil {
		c.watched = true
	}
	return err
}

// Watched reports whether WATCH has been issued since the last
// Normal-mode transition.
func (c *Core) Watched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watched
}
