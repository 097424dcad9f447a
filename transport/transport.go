// Package transport owns one TCP socket plus a buffered reader/writer,
// per spec §4.2. It is the lowest layer of the Connection Core: a
// single-threaded, non-thread-safe execute/sendOnly/readOne/close
// contract, grounded on the dial/handshake discipline of the teacher's
// redisconn/conn.go (AUTH/PING/SELECT on connect) with the per-operation
// deadline handling of redis_conn/deadline_io.go.
package transport

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Options configures a Transport's dial and handshake behavior.
type Options struct {
	// Username, Password authenticate on connect: AUTH user pass when
	// Username is set, legacy AUTH pass otherwise. Both empty skips AUTH.
	Username string
	Password string
	// Database selects a non-zero database index with SELECT on connect.
	Database int
	// DialTimeout bounds the initial TCP handshake. 0 means 5s.
	DialTimeout time.Duration
	// IOTimeout bounds every subsequent read/write. 0 means 5s; negative disables it.
	IOTimeout time.Duration
	// MaxReplySize bounds decoded bulk-string/multi-bulk sizes. 0 means resp.DefaultMaxReplySize.
	MaxReplySize int64
}

func (o Options) ioTimeout() time.Duration {
	if o.IOTimeout == 0 {
		return 5 * time.Second
	}
	if o.IOTimeout < 0 {
		return 0
	}
	return o.IOTimeout
}

func (o Options) dialTimeout() time.Duration {
	if o.DialTimeout <= 0 {
		return 5 * time.Second
	}
	return o.DialTimeout
}

// Transport is one TCP connection to a Redis-protocol server. It is not
// thread-safe: concurrency is the caller's responsibility (the Pool
// hands a Transport to at most one Core at a time; the Subscription
// Machine applies its own read/write turn discipline).
type Transport struct {
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	opts   Options
	closed bool
}

// Dial opens addr, performs AUTH/PING/SELECT per opts, and returns a
// ready Transport. Mirrors redisconn/conn.go's dial(): AUTH (if
// credentials set) -> PING -> SELECT (if db != 0), each response
// checked before the next is sent.
func Dial(addr string, opts Options) (*Transport, error) {
	network := "tcp"
	if strings.HasPrefix(addr, "unix://") {
		network, addr = "unix", strings.TrimPrefix(addr, "unix://")
	} else if len(addr) > 0 && (addr[0] == '.' || addr[0] == '/') {
		network = "unix"
	}

	conn, err := net.DialTimeout(network, addr, opts.dialTimeout())
	if err != nil {
		return nil, rediserror.Wrap(rediserror.KindConnectionLost, err, "dial failed")
	}

	rw := newDeadlineIO(conn, opts.ioTimeout())
	t := &Transport{
		conn: conn,
		r:    bufio.NewReaderSize(rw, 64*1024),
		w:    bufio.NewWriterSize(rw, 64*1024),
		opts: opts,
	}

	if err := t.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

func (t *Transport) handshake() error {
	if t.opts.Password != "" {
		var rep resp.Reply
		var err error
		if t.opts.Username != "" {
			rep, err = t.Execute(resp.NewCommand("AUTH", t.opts.Username, t.opts.Password))
		} else {
			rep, err = t.Execute(resp.NewCommand("AUTH", t.opts.Password))
		}
		if err != nil {
			return err
		}
		if rep.IsError() {
			return rediserror.New(rediserror.KindConnectionLost, "AUTH failed: "+rep.ErrMsg)
		}
	}

	rep, err := t.Execute(resp.NewCommand("PING"))
	if err != nil {
		return err
	}
	if rep.IsError() || rep.Str != "PONG" {
		return rediserror.New(rediserror.KindConnectionLost, "unexpected PING response during handshake")
	}

	if t.opts.Database != 0 {
		rep, err := t.Execute(resp.NewCommand("SELECT", t.opts.Database))
		if err != nil {
			return err
		}
		if rep.IsError() || rep.Str != "OK" {
			return rediserror.New(rediserror.KindConnectionLost, "unexpected SELECT response during handshake")
		}
	}
	return nil
}

// Execute sends one command and blocks for exactly one reply, per
// spec §4.2.
func (t *Transport) Execute(cmd resp.Command) (resp.Reply, error) {
	if err := t.SendOnly(cmd); err != nil {
		return resp.Reply{}, err
	}
	if err := t.w.Flush(); err != nil {
		return resp.Reply{}, t.ioError(err)
	}
	return t.ReadOne()
}

// SendOnly writes cmd without flushing or reading a reply. Used by
// Execute and the pipeline/subscribe paths per spec §4.2; callers are
// responsible for a subsequent Flush (ReadOne does not flush the writer).
func (t *Transport) SendOnly(cmd resp.Command) error {
	if t.closed {
		return rediserror.New(rediserror.KindConnectionLost, "write on closed connection")
	}
	buf, err := resp.Encode(nil, cmd)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(buf); err != nil {
		return t.ioError(err)
	}
	return nil
}

// Flush pushes any buffered, unflushed writes from SendOnly calls to the
// socket. Pipeline submission calls this after each enqueue so that
// commands are truly pipelined (written immediately), per spec §4.4.
func (t *Transport) Flush() error {
	if err := t.w.Flush(); err != nil {
		return t.ioError(err)
	}
	return nil
}

// ReadOne reads one reply, used by pipeline flush and the subscription
// reader per spec §4.2.
func (t *Transport) ReadOne() (resp.Reply, error) {
	if t.closed {
		return resp.Reply{}, rediserror.New(rediserror.KindConnectionLost, "read on closed connection")
	}
	rep, err := resp.Decode(t.r, t.opts.MaxReplySize)
	if err != nil {
		if rediserror.Is(err, rediserror.KindConnectionLost) {
			t.closed = true
		}
		return resp.Reply{}, err
	}
	return rep, nil
}

// Close flushes best-effort and closes the socket. Idempotent.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.w.Flush()
	return t.conn.Close()
}

// Closed reports whether Close has already run, or an I/O error already
// tripped the connection closed.
func (t *Transport) Closed() bool { return t.closed }

func (t *Transport) ioError(err error) error {
	t.closed = true
	return rediserror.Wrap(rediserror.KindConnectionLost, err, "io error")
}
