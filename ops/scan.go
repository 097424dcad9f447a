package ops

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Cursor is a SCAN-family cursor iterator, grounded on the teacher's
// resp.ScanResponse shape (a two-element MultiBulk: next cursor, then
// the batch of keys) and redis/sender.go's ScannerBase cycle: repeated
// calls to Next issue one SCAN variant per round, terminating when the
// server returns cursor "0".
type Cursor struct {
	o       *Ops
	command string    // SCAN, HSCAN, SSCAN, ZSCAN
	key     string    // empty for SCAN
	match   string    // MATCH pattern, empty to omit
	count   int64     // COUNT hint, 0 to omit
	cursor  string
	done    bool
}

// Scan iterates the keyspace via the SCAN command.
func (o *Ops) Scan(match string, count int64) *Cursor {
	return &Cursor{o: o, command: "SCAN", match: match, count: count, cursor: "0"}
}

// HScan iterates the fields of the hash at key.
func (o *Ops) HScan(key, match string, count int64) *Cursor {
	return &Cursor{o: o, command: "HSCAN", key: key, match: match, count: count, cursor: "0"}
}

// SScan iterates the members of the set at key.
func (o *Ops) SScan(key, match string, count int64) *Cursor {
	return &Cursor{o: o, command: "SSCAN", key: key, match: match, count: count, cursor: "0"}
}

// ZScan iterates the members of the sorted set at key.
func (o *Ops) ZScan(key, match string, count int64) *Cursor {
	return &Cursor{o: o, command: "ZSCAN", key: key, match: match, count: count, cursor: "0"}
}

// Done reports whether the cursor has completed a full cycle (the
// server returned cursor "0"). Next must not be called again afterward.
func (c *Cursor) Done() bool { return c.done }

// Next issues one SCAN-variant call at the cursor's current position,
// returning that batch's items and advancing the cursor. Callers loop
// until Done reports true; a batch being empty does not itself mean the
// cycle is finished, per SCAN's own "may return zero items mid-cycle"
// guarantee.
func (c *Cursor) Next() ([][]byte, error) {
	if c.done {
		return nil, nil
	}
	args := []interface{}{}
	if c.key != "" {
		args = append(args, c.key)
	}
	args = append(args, c.cursor)
	if c.match != "" {
		args = append(args, "MATCH", c.match)
	}
	if c.count > 0 {
		args = append(args, "COUNT", c.count)
	}
	rep, deferred, err := c.o.dispatch(resp.Command{Name: c.command, Args: args})
	if err != nil {
		return nil, err
	}
	if deferred {
		return nil, rediserror.New(rediserror.KindUnsupported, "SCAN cursor cannot be driven while pipelining or inside a transaction")
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk || len(rep.Items) != 2 {
		return nil, rediserror.New(rediserror.KindProtocol, "malformed SCAN reply")
	}
	nextCursor, _, err := asBulk(rep.Items[0])
	if err != nil {
		return nil, err
	}
	c.cursor = string(nextCursor)
	if c.cursor == "0" {
		c.done = true
	}
	batch, err := asBulkSlice(rep.Items[1])
	if err != nil {
		return nil, err
	}
	return batch, nil
}
