package rconn

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// blockingCommands may not be queued inside a transaction: they would
// block the whole pipeline/transaction on the server side, per spec
// §4.7 "forbidden in Transaction*".
var blockingCommands = map[string]bool{
	"BLPOP":      true,
	"BRPOP":      true,
	"BRPOPLPUSH": true,
	"BLMOVE":     true,
	"BZPOPMIN":   true,
	"BZPOPMAX":   true,
	"WAIT":       true,
}

func isSubscriptionControl(name string) bool {
	switch name {
	case "SUBSCRIBE", "UNSUBSCRIBE", "PSUBSCRIBE", "PUNSUBSCRIBE", "PING", "QUIT":
		return true
	}
	return false
}

// isScriptKill reports whether cmd is SCRIPT KILL, which spec §4.3's
// InvalidState row forbids inside a transaction: Redis itself rejects it
// there (killing a script would have to run synchronously against the
// same connection that is busy queueing), so it must never be enqueued.
func isScriptKill(cmd resp.Command) bool {
	if cmd.Name != "SCRIPT" || len(cmd.Args) == 0 {
		return false
	}
	sub, ok := cmd.Args[0].(string)
	return ok && sub == "KILL"
}

// Dispatch runs the command-dispatch discipline of spec §4.4:
//
//  1. In Subscribed mode, reject unless it is subscription control.
//  2. In a pipelined state, append to the pipeline buffer and return
//     deferred=true: the reply is the zero Reply and must not be
//     inspected — the real result is positional in ClosePipeline's
//     outcome list.
//  3. In Transaction (non-pipelined), send immediately; the server
//     acks with SimpleString "QUEUED", which is discarded; deferred=true
//     is returned the same way, since the real result arrives from Exec.
//  4. Otherwise, send via the transport and return the typed reply
//     with deferred=false.
func (c *Core) Dispatch(cmd resp.Command) (reply resp.Reply, deferred bool, err error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return resp.Reply{}, false, rediserror.New(rediserror.KindConnectionLost, "dispatch on closed connection")
	}

	if c.mode == Subscribed {
		c.mu.Unlock()
		if isSubscriptionControl(cmd.Name) {
			rep, err := c.dispatchImmediate(cmd)
			return rep, false, err
		}
		return resp.Reply{}, false, rediserror.New(rediserror.KindSubscribedMode, "command not allowed while subscribed").
			WithProperty(rediserror.PCommand, cmd)
	}

	inTransaction := c.mode == Transaction || c.mode == PipelineTransaction
	if inTransaction && blockingCommands[cmd.Name] {
		c.mu.Unlock()
		return resp.Reply{}, false, rediserror.New(rediserror.KindInvalidState, "blocking op inside MULTI").
			WithProperty(rediserror.PCommand, cmd)
	}
	if inTransaction && isScriptKill(cmd) {
		c.mu.Unlock()
		return resp.Reply{}, false, rediserror.New(rediserror.KindInvalidState, "SCRIPT KILL inside MULTI").
			WithProperty(rediserror.PCommand, cmd)
	}

	if c.mode == Pipeline || c.mode == PipelineTransaction {
		err := c.enqueueLocked(cmd, inTransaction)
		c.mu.Unlock()
		if err != nil {
			return resp.Reply{}, false, err
		}
		return resp.Reply{}, true, nil
	}

	if c.mode == Transaction {
		c.mu.Unlock()
		return c.dispatchQueued(cmd)
	}

	c.mu.Unlock()
	rep, err := c.dispatchImmediate(cmd)
	return rep, false, err
}

// dispatchQueued sends cmd synchronously while inside a non-pipelined
// transaction. A well-formed command gets back SimpleString "QUEUED",
// which is discarded per spec §4.4 "Transaction semantics"; a malformed
// command gets an immediate Error reply instead (Redis validates syntax
// before queueing), which is surfaced right away rather than deferred.
func (c *Core) dispatchQueued(cmd resp.Command) (resp.Reply, bool, error) {
	rep, err := c.dispatchImmediate(cmd)
	if err != nil {
		return resp.Reply{}, false, err
	}
	if rep.IsError() {
		return rep, false, rediserror.New(rediserror.KindServerError, rep.ErrMsg)
	}
	return resp.Reply{}, true, nil
}

// dispatchImmediate sends cmd and blocks for its reply outside of any
// pipeline/transaction buffering. Must be called with mu NOT held; it
// acquires it only to close the Core on a fatal (ConnectionLost or
// Protocol) error.
func (c *Core) dispatchImmediate(cmd resp.Command) (resp.Reply, error) {
	rep, err := c.t.Execute(cmd)
	if err != nil {
		if isFatal(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return resp.Reply{}, err
	}
	return rep, nil
}

// isFatal reports whether err should tear down the whole Core, per spec
// §7 "After ConnectionLost or Protocol, the Core becomes Closed". A
// Request-kind encoding error (bad argument type) never touched the
// wire and leaves the Core usable.
func isFatal(err error) bool {
	return rediserror.Is(err, rediserror.KindConnectionLost) || rediserror.Is(err, rediserror.KindProtocol)
}

// enqueueLocked appends cmd to the pipeline buffer and writes it to the
// socket immediately (true pipelining, not deferred send), per spec
// §4.4 "Pipeline flush". Expects mu held; does not unlock.
func (c *Core) enqueueLocked(cmd resp.Command, queued bool) error {
	if err := c.t.SendOnly(cmd); err != nil {
		if isFatal(err) {
			c.closeLocked()
		}
		return err
	}
	if err := c.t.Flush(); err != nil {
		c.closeLocked()
		return err
	}
	c.pending = append(c.pending, pendingRecord{cmd: cmd, queued: queued})
	return nil
}
