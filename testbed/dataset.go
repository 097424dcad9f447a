package testbed

import (
	"path"
	"strconv"
	"sync"

	"github.com/Griffin1989106/rpipe/resp"
)

// dataset is the fake server's in-memory keyspace plus pub/sub registry,
// shared by every connection accepted by one Server.
type dataset struct {
	mu   sync.Mutex
	vals map[string][]byte
	vers map[string]int64

	subMu    sync.Mutex
	channels map[string]map[*fakeConn]bool
	patterns map[string]map[*fakeConn]bool
}

func newDataset() *dataset {
	return &dataset{
		vals:     make(map[string][]byte),
		vers:     make(map[string]int64),
		channels: make(map[string]map[*fakeConn]bool),
		patterns: make(map[string]map[*fakeConn]bool),
	}
}

func (d *dataset) get(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.vals[key]
	return v, ok
}

func (d *dataset) set(key string, val []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vals[key] = val
	d.vers[key]++
}

func (d *dataset) del(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := d.vals[k]; ok {
			delete(d.vals, k)
			d.vers[k]++
			n++
		}
	}
	return n
}

func (d *dataset) exists(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.vals[key]
	return ok
}

func (d *dataset) incr(key string, delta int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	if v, ok := d.vals[key]; ok {
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n += delta
	d.vals[key] = []byte(strconv.FormatInt(n, 10))
	d.vers[key]++
	return n, nil
}

// version returns a monotonically increasing counter bumped on every
// write to key, used to implement WATCH's optimistic-concurrency check.
func (d *dataset) version(key string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vers[key]
}

func (d *dataset) subscribe(channel string, c *fakeConn) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	if d.channels[channel] == nil {
		d.channels[channel] = make(map[*fakeConn]bool)
	}
	d.channels[channel][c] = true
}

func (d *dataset) unsubscribe(channel string, c *fakeConn) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	delete(d.channels[channel], c)
}

func (d *dataset) psubscribe(pattern string, c *fakeConn) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	if d.patterns[pattern] == nil {
		d.patterns[pattern] = make(map[*fakeConn]bool)
	}
	d.patterns[pattern][c] = true
}

func (d *dataset) punsubscribe(pattern string, c *fakeConn) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	delete(d.patterns[pattern], c)
}

// unsubscribeAll drops c from every channel/pattern registry, run when
// its connection closes (the equivalent of the reader noticing
// ConnectionLost, per spec §4.5's cancellation path).
func (d *dataset) unsubscribeAll(c *fakeConn) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for _, subs := range d.channels {
		delete(subs, c)
	}
	for _, subs := range d.patterns {
		delete(subs, c)
	}
}

// publish fans a message out to direct channel subscribers and to every
// pattern subscriber whose pattern matches, returning the total receiver
// count the way Redis's PUBLISH reply does.
func (d *dataset) publish(channel string, payload []byte) int {
	d.subMu.Lock()
	var direct []*fakeConn
	for c := range d.channels[channel] {
		direct = append(direct, c)
	}
	type patMatch struct {
		pattern string
		conn    *fakeConn
	}
	var patMatches []patMatch
	for pattern, subs := range d.patterns {
		if !matchPattern(pattern, channel) {
			continue
		}
		for c := range subs {
			patMatches = append(patMatches, patMatch{pattern, c})
		}
	}
	d.subMu.Unlock()

	for _, c := range direct {
		c.pushFrame(resp.MultiBulk([]resp.Reply{
			resp.BulkString([]byte("message")),
			resp.BulkString([]byte(channel)),
			resp.BulkString(payload),
		}))
	}
	for _, m := range patMatches {
		m.conn.pushFrame(resp.MultiBulk([]resp.Reply{
			resp.BulkString([]byte("pmessage")),
			resp.BulkString([]byte(m.pattern)),
			resp.BulkString([]byte(channel)),
			resp.BulkString(payload),
		}))
	}
	return len(direct) + len(patMatches)
}

// matchPattern implements the subset of glob syntax Redis's pattern
// subscriptions use (* and ?), via path.Match which supports both.
func matchPattern(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
