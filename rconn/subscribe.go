package rconn

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
	"github.com/Griffin1989106/rpipe/transport"
)

// EnterSubscribed transitions Normal -> Subscribed, per spec §4.4
// "subscribe/pSubscribe from Normal only". Any other mode is rejected:
// already-Subscribed is Unsupported here (callers subscribe to more
// channels via SendRaw, not by re-entering the mode), any pipelined or
// transactional mode is Unsupported since Subscribed is mutually
// exclusive with every other mode per spec §3.
func (c *Core) EnterSubscribed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rediserror.New(rediserror.KindConnectionLost, "subscribe on closed connection")
	}
	if c.mode != Normal {
		return rediserror.New(rediserror.KindUnsupported, "cannot enter Subscribed mode from "+c.mode.String())
	}
	c.mode = Subscribed
	return nil
}

// SendRaw writes cmd to the wire without waiting for a reply. It is
// used only by the Subscription Machine (§4.5): SUBSCRIBE/UNSUBSCRIBE
// acknowledgements and push frames are consumed by the dedicated reader
// loop, never by the command's caller.
func (c *Core) SendRaw(cmd resp.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return rediserror.New(rediserror.KindConnectionLost, "write on closed connection")
	}
	if c.mode != Subscribed {
		return rediserror.New(rediserror.KindUnsupported, "SendRaw is only valid in Subscribed mode")
	}
	if err := c.t.SendOnly(cmd); err != nil {
		if isFatal(err) {
			c.closeLocked()
		}
		return err
	}
	return c.t.Flush()
}

// Transport exposes the underlying transport for the Subscription
// Machine's dedicated reader loop, which bypasses Dispatch entirely and
// blocks directly in Transport.ReadOne per spec §4.5.
func (c *Core) Transport() *transport.Transport {
	return c.t
}
