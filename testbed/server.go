// Package testbed provides a self-contained, in-process fake Redis
// server for tests. It mirrors the shape of the teacher's own
// testbed.Server (Port/Args/Start/Stop, shelling out to a real
// redis-server binary) but replaces the binary with a small in-memory
// command processor: this module has no access to an actual
// redis-server binary to exec, so the dial/handshake, pipeline,
// transaction, and pub/sub behavior under test is served by this fake
// instead.
//
// It understands enough of the protocol to drive every Core/Subscription/
// Pool test in this module: PING/AUTH/SELECT/ECHO, GET/SET/DEL/INCR/EXISTS,
// MULTI/EXEC/DISCARD/WATCH with real optimistic-concurrency semantics, and
// SUBSCRIBE/UNSUBSCRIBE/PSUBSCRIBE/PUNSUBSCRIBE/PUBLISH with cross-connection
// fan-out.
package testbed

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/Griffin1989106/rpipe/resp"
)

// Server is one fake Redis instance listening on 127.0.0.1.
type Server struct {
	Port     uint16
	Password string // if set, AUTH is required before any other command

	mu    sync.Mutex
	ln    net.Listener
	conns map[*fakeConn]struct{}
	store *dataset
	wg    sync.WaitGroup
}

func (s *Server) PortStr() string { return strconv.Itoa(int(s.Port)) }
func (s *Server) Addr() string    { return "127.0.0.1:" + s.PortStr() }

// Start begins listening. If Port is 0, an ephemeral port is chosen and
// written back into s.Port.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", "127.0.0.1:"+s.PortStr())
	if err != nil {
		return err
	}
	s.ln = ln
	s.conns = make(map[*fakeConn]struct{})
	if s.store == nil {
		s.store = newDataset()
	}
	s.Port = uint16(ln.Addr().(*net.TCPAddr).Port)

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		fc := &fakeConn{srv: s, conn: c, r: bufio.NewReader(c), w: bufio.NewWriter(c)}
		s.mu.Lock()
		s.conns[fc] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			fc.serve()
			s.mu.Lock()
			delete(s.conns, fc)
			s.mu.Unlock()
		}()
	}
}

// Stop closes the listener and every open connection, and resets the
// in-memory dataset for a clean Start/Stop cycle across tests.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.ln == nil {
		s.mu.Unlock()
		return nil
	}
	ln := s.ln
	s.ln = nil
	for fc := range s.conns {
		fc.conn.Close()
	}
	s.store = newDataset()
	s.mu.Unlock()

	err := ln.Close()
	s.wg.Wait()
	return err
}

// fakeConn is one client connection's server-side handling loop and
// pub/sub subscription state.
type fakeConn struct {
	srv  *Server
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	authed bool
	db     int

	inMulti bool
	queue   []resp.Command
	watch   map[string]int64 // key -> version snapshot at WATCH time

	writeMu  sync.Mutex // serializes command replies against pub/sub pushes
	channels map[string]bool
	patterns map[string]bool
}

func (c *fakeConn) serve() {
	defer c.conn.Close()
	c.channels = make(map[string]bool)
	c.patterns = make(map[string]bool)
	for {
		cmd, err := readCommand(c.r)
		if err != nil {
			c.srv.store.unsubscribeAll(c)
			return
		}
		c.handle(cmd)
	}
}

// readCommand decodes one client command frame. A command is wire-
// identical to a non-nil MultiBulk of BulkStrings, so resp.Decode (built
// to decode server replies) doubles as the command reader here.
func readCommand(r *bufio.Reader) (resp.Command, error) {
	rep, err := resp.Decode(r, 0)
	if err != nil {
		return resp.Command{}, err
	}
	if rep.Kind != resp.KindMultiBulk || len(rep.Items) == 0 {
		return resp.Command{}, nil
	}
	name := strings.ToUpper(string(rep.Items[0].Bytes))
	args := make([]interface{}, 0, len(rep.Items)-1)
	for _, item := range rep.Items[1:] {
		args = append(args, string(item.Bytes))
	}
	return resp.Command{Name: name, Args: args}, nil
}

func (c *fakeConn) writeReply(rep resp.Reply) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	buf := resp.EncodeReply(nil, rep)
	c.w.Write(buf)
	c.w.Flush()
}

// pushFrame is used by the dataset's PUBLISH fan-out to write directly
// to subscriber connections from a different goroutine than the one
// reading that connection's own commands.
func (c *fakeConn) pushFrame(rep resp.Reply) {
	c.writeReply(rep)
}

func (c *fakeConn) handle(cmd resp.Command) {
	if cmd.Name == "" {
		return
	}
	if c.srv.Password != "" && !c.authed && cmd.Name != "AUTH" {
		c.writeReply(resp.Error("NOAUTH Authentication required."))
		return
	}

	if c.inMulti && !controlDuringMulti(cmd.Name) {
		c.queue = append(c.queue, cmd)
		c.writeReply(resp.SimpleString("QUEUED"))
		return
	}

	switch cmd.Name {
	case "AUTH":
		args := argsToStrings(cmd.Args)
		pass := ""
		if len(args) == 1 {
			pass = args[0]
		} else if len(args) == 2 {
			pass = args[1]
		}
		if c.srv.Password == "" || pass == c.srv.Password {
			c.authed = true
			c.writeReply(resp.SimpleString("OK"))
		} else {
			c.writeReply(resp.Error("WRONGPASS invalid username-password pair"))
		}
	case "PING":
		c.writeReply(resp.SimpleString("PONG"))
	case "ECHO":
		args := argsToStrings(cmd.Args)
		if len(args) == 1 {
			c.writeReply(resp.BulkString([]byte(args[0])))
		} else {
			c.writeReply(resp.Error("ERR wrong number of arguments"))
		}
	case "SELECT":
		args := argsToStrings(cmd.Args)
		n, err := strconv.Atoi(args[0])
		if err != nil {
			c.writeReply(resp.Error("ERR value is not an integer or out of range"))
			return
		}
		c.db = n
		c.writeReply(resp.SimpleString("OK"))
	case "GET":
		args := argsToStrings(cmd.Args)
		v, ok := c.srv.store.get(args[0])
		if !ok {
			c.writeReply(resp.NilBulkString())
			return
		}
		c.writeReply(resp.BulkString(v))
	case "SET":
		args := argsToStrings(cmd.Args)
		c.srv.store.set(args[0], []byte(args[1]))
		c.writeReply(resp.SimpleString("OK"))
	case "DEL":
		args := argsToStrings(cmd.Args)
		n := c.srv.store.del(args...)
		c.writeReply(resp.Integer(int64(n)))
	case "EXISTS":
		args := argsToStrings(cmd.Args)
		n := 0
		for _, k := range args {
			if c.srv.store.exists(k) {
				n++
			}
		}
		c.writeReply(resp.Integer(int64(n)))
	case "INCR":
		args := argsToStrings(cmd.Args)
		v, err := c.srv.store.incr(args[0], 1)
		if err != nil {
			c.writeReply(resp.Error("ERR value is not an integer or out of range"))
			return
		}
		c.writeReply(resp.Integer(v))
	case "MULTI":
		c.inMulti = true
		c.queue = nil
		c.writeReply(resp.SimpleString("OK"))
	case "DISCARD":
		if !c.inMulti {
			c.writeReply(resp.Error("ERR DISCARD without MULTI"))
			return
		}
		c.inMulti = false
		c.queue = nil
		c.watch = nil
		c.writeReply(resp.SimpleString("OK"))
	case "WATCH":
		if c.watch == nil {
			c.watch = make(map[string]int64)
		}
		for _, k := range argsToStrings(cmd.Args) {
			c.watch[k] = c.srv.store.version(k)
		}
		c.writeReply(resp.SimpleString("OK"))
	case "EXEC":
		c.execMulti()
	case "SUBSCRIBE":
		for _, ch := range argsToStrings(cmd.Args) {
			c.channels[ch] = true
			c.srv.store.subscribe(ch, c)
			c.writeReply(resp.MultiBulk([]resp.Reply{
				resp.BulkString([]byte("subscribe")),
				resp.BulkString([]byte(ch)),
				resp.Integer(int64(len(c.channels) + len(c.patterns))),
			}))
		}
	case "UNSUBSCRIBE":
		names := argsToStrings(cmd.Args)
		if len(names) == 0 {
			for ch := range c.channels {
				names = append(names, ch)
			}
		}
		for _, ch := range names {
			delete(c.channels, ch)
			c.srv.store.unsubscribe(ch, c)
			c.writeReply(resp.MultiBulk([]resp.Reply{
				resp.BulkString([]byte("unsubscribe")),
				resp.BulkString([]byte(ch)),
				resp.Integer(int64(len(c.channels) + len(c.patterns))),
			}))
		}
	case "PSUBSCRIBE":
		for _, pat := range argsToStrings(cmd.Args) {
			c.patterns[pat] = true
			c.srv.store.psubscribe(pat, c)
			c.writeReply(resp.MultiBulk([]resp.Reply{
				resp.BulkString([]byte("psubscribe")),
				resp.BulkString([]byte(pat)),
				resp.Integer(int64(len(c.channels) + len(c.patterns))),
			}))
		}
	case "PUNSUBSCRIBE":
		names := argsToStrings(cmd.Args)
		if len(names) == 0 {
			for p := range c.patterns {
				names = append(names, p)
			}
		}
		for _, pat := range names {
			delete(c.patterns, pat)
			c.srv.store.punsubscribe(pat, c)
			c.writeReply(resp.MultiBulk([]resp.Reply{
				resp.BulkString([]byte("punsubscribe")),
				resp.BulkString([]byte(pat)),
				resp.Integer(int64(len(c.channels) + len(c.patterns))),
			}))
		}
	case "PUBLISH":
		args := argsToStrings(cmd.Args)
		n := c.srv.store.publish(args[0], []byte(args[1]))
		c.writeReply(resp.Integer(int64(n)))
	default:
		c.writeReply(resp.Error("ERR unknown command '" + cmd.Name + "'"))
	}
}

func controlDuringMulti(name string) bool {
	switch name {
	case "MULTI", "EXEC", "DISCARD", "WATCH", "AUTH":
		return true
	}
	return false
}

// execMulti replays the queued commands if no watched key changed since
// WATCH, mirroring the optimistic-concurrency contract spec §4.8 relies
// on: a nil multi-bulk means "aborted", never an error.
func (c *fakeConn) execMulti() {
	if !c.inMulti {
		c.writeReply(resp.Error("ERR EXEC without MULTI"))
		return
	}
	queue := c.queue
	watch := c.watch
	c.inMulti = false
	c.queue = nil
	c.watch = nil

	for k, ver := range watch {
		if c.srv.store.version(k) != ver {
			c.writeReply(resp.NilMultiBulk())
			return
		}
	}

	items := make([]resp.Reply, 0, len(queue))
	for _, qc := range queue {
		items = append(items, c.execOne(qc))
	}
	c.writeReply(resp.MultiBulk(items))
}

// execOne runs one queued command inline and returns its reply, without
// going through the client-facing write path (EXEC owns the single
// multi-bulk reply for the whole batch).
func (c *fakeConn) execOne(cmd resp.Command) resp.Reply {
	switch cmd.Name {
	case "SET":
		args := argsToStrings(cmd.Args)
		c.srv.store.set(args[0], []byte(args[1]))
		return resp.SimpleString("OK")
	case "GET":
		args := argsToStrings(cmd.Args)
		v, ok := c.srv.store.get(args[0])
		if !ok {
			return resp.NilBulkString()
		}
		return resp.BulkString(v)
	case "DEL":
		return resp.Integer(int64(c.srv.store.del(argsToStrings(cmd.Args)...)))
	case "INCR":
		args := argsToStrings(cmd.Args)
		v, err := c.srv.store.incr(args[0], 1)
		if err != nil {
			return resp.Error("ERR value is not an integer or out of range")
		}
		return resp.Integer(v)
	case "PING":
		return resp.SimpleString("PONG")
	default:
		return resp.Error("ERR unknown command '" + cmd.Name + "' in transaction")
	}
}

func argsToStrings(args []interface{}) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i], _ = a.(string)
	}
	return out
}
