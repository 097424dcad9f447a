package ops

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// XAdd appends an entry to the stream at key, returning the assigned ID.
// id is "*" to let the server assign one, per the usual convention.
func (o *Ops) XAdd(key, id string, fields map[string]interface{}) (string, error) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, key, id)
	for f, v := range fields {
		args = append(args, f, v)
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "XADD", Args: args})
	if err != nil || deferred {
		return "", err
	}
	b, _, err := asBulk(rep)
	return string(b), err
}

// XLen returns the number of entries in the stream at key.
func (o *Ops) XLen(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("XLEN", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// XRange returns entries with ID in [start, end] (inclusive), ascending.
// Each entry is the stream ID followed by its flat field/value MultiBulk,
// matching the wire shape verbatim — callers that need a map can build
// one from item.Items[1] the same way asStringMap does for HGETALL.
func (o *Ops) XRange(key, start, end string) ([]resp.Reply, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("XRANGE", key, start, end))
	if err != nil || deferred {
		return nil, err
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	if rep.Null {
		return nil, nil
	}
	return rep.Items, nil
}

// XRevRange mirrors XRange in descending order (start/end are server-order: high first).
func (o *Ops) XRevRange(key, end, start string) ([]resp.Reply, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("XREVRANGE", key, end, start))
	if err != nil || deferred {
		return nil, err
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	if rep.Null {
		return nil, nil
	}
	return rep.Items, nil
}

// XRead reads entries newer than lastID (or "$" for only-new) from the stream at key.
func (o *Ops) XRead(key, lastID string, count int64) ([]resp.Reply, error) {
	args := []interface{}{"STREAMS", key, lastID}
	if count > 0 {
		args = append([]interface{}{"COUNT", count}, args...)
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "XREAD", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk || rep.Null {
		return nil, nil
	}
	return rep.Items, nil
}
