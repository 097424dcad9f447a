package transport

import (
	"io"
	"net"
	"time"
)

// deadlineIO wraps a net.Conn so every Read/Write resets the socket
// deadline first, grounded on the teacher's redis_conn/deadline_io.go.
// When to <= 0 it degrades to the bare net.Conn (no deadline enforced),
// matching newDeadlineIO's behavior there.
type deadlineIO struct {
	c  net.Conn
	to time.Duration
}

func newDeadlineIO(c net.Conn, to time.Duration) io.ReadWriter {
	if to > 0 {
		return &deadlineIO{c: c, to: to}
	}
	return c
}

func (d *deadlineIO) Write(b []byte) (int, error) {
	if err := d.c.SetWriteDeadline(time.Now().Add(d.to)); err != nil {
		return 0, err
	}
	return d.c.Write(b)
}

func (d *deadlineIO) Read(b []byte) (int, error) {
	if err := d.c.SetReadDeadline(time.Now().Add(d.to)); err != nil {
		return 0, err
	}
	return d.c.Read(b)
}
