/*
Package rpipe is a synchronous Redis client built around an explicit
Connection Core state machine rather than an implicit single-connection
pipeliner.

Structure

- root package (this one) wires a Pool and the typed Operation Surface
into one Client, for the common "lease a Core, run some commands,
release it" workflow.

- rconn holds the Connection Core: the state machine that tracks
Normal/Pipeline/Transaction/Subscribed mode and mediates request/reply,
explicit pipelining (OpenPipeline/ClosePipeline), and server-side
transactions (Multi/Watch/Exec/Discard) over one transport.Transport.

- transport is the net.Conn wrapper: it writes commands and reads
replies through the resp package's wire codec, and applies read/write
deadlines.

- pool is the bounded, per-endpoint Core pool: Lease/Release/EvictIdle,
with an optional PING health check on lease and an idle eviction sweep.

- subscribe is the Subscription Machine: a dedicated reader goroutine
that turns a Core in Subscribed mode into channel/pattern message
delivery through a Listener callback interface.

- ops is the typed command catalog: one method per Redis command,
each a thin wrapper that builds a command, dispatches it through a
Core, and converts the reply to a Go type.

- rediserror is the shared error taxonomy (ConnectionLost, Protocol,
ServerError, PipelinePartial, SubscribedMode, InvalidState, Unsupported,
Request, PoolExhausted), used across every other package so callers can
branch on failure kind without string-matching error messages.

Usage

	client := rpipe.New("127.0.0.1:6379", pool.WithPassword("secret"))
	defer client.Close()

	err := client.Do(ctx, func(o *ops.Ops) error {
		return o.Set("key", "value")
	})

Pipelining and transactions are driven directly against the Core a
Do callback receives:

	client.Do(ctx, func(o *ops.Ops) error {
		core := o.Core()
		core.OpenPipeline()
		o.Incr("counter")
		o.Get("counter")
		outcomes, err := core.ClosePipeline()
		_ = outcomes
		return err
	})

Pub/sub uses a dedicated connection outside the Pool, since a subscribed
Core can never return to Normal mode:

	sub, err := client.Subscribe(myListener)
	defer sub.Close()
	sub.Subscribe("channel-name")

Types accepted as command arguments mirror the common convention across
the ecosystem: string, []byte, the integer family, float32/float64, and
bool (encoded as "1"/"0"). Replies decode into plain Go types through the
Operation Surface's typed methods rather than a single interface{} union.
*/
package rpipe
