// Package ops is the Operation Surface of spec §4.7: a catalog of typed
// methods mirroring the server's command set, each a thin adapter that
// builds a resp.Command, dispatches it through a *rconn.Core, and
// type-converts the reply. Grounded on the teacher's redis/response.go
// reply-shape helpers (AsError/ScanResponse/TransactionResponse),
// adapted from the teacher's async Future-returning style to this
// module's synchronous Core.
package ops

import (
	"strconv"

	"github.com/Griffin1989106/rpipe/rconn"
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Ops adapts one Connection Core to the typed command surface. It holds
// no state of its own beyond the Core: every call is immediately
// dispatched, honoring whatever mode (Normal/Pipeline/Transaction) the
// Core is currently in.
type Ops struct {
	core *rconn.Core
}

// New wraps core with the typed Operation Surface.
func New(core *rconn.Core) *Ops { return &Ops{core: core} }

// Core returns the underlying Connection Core, for callers that need to
// drive OpenPipeline/ClosePipeline/Multi/Exec/Watch directly alongside
// the typed methods.
func (o *Ops) Core() *rconn.Core { return o.core }

// dispatch runs cmd and reports whether the result was deferred (the
// Core is pipelining or inside a non-pipelined transaction): deferred
// calls return Go's zero value for every typed method below, since the
// real result arrives later from ClosePipeline/Exec, per spec §4.4.
func (o *Ops) dispatch(cmd resp.Command) (resp.Reply, bool, error) {
	return o.core.Dispatch(cmd)
}

// asServerError converts a server Error reply into a KindServerError,
// carrying its message verbatim, per spec §4.3/§6. Every helper below
// calls this first: dispatchImmediate passes Error replies through with
// err == nil (the transport itself never raises on them), so without
// this check a genuine server error (WRONGTYPE, "not an integer", ...)
// would otherwise fall through to the kind-mismatch branch and be
// reported as a fabricated protocol error, discarding the real message.
func asServerError(rep resp.Reply) error {
	if rep.IsError() {
		return rediserror.New(rediserror.KindServerError, rep.ErrMsg)
	}
	return nil
}

func asInt64(rep resp.Reply) (int64, error) {
	if err := asServerError(rep); err != nil {
		return 0, err
	}
	if rep.Kind != resp.KindInteger {
		return 0, rediserror.New(rediserror.KindProtocol, "expected Integer reply")
	}
	return rep.Integer, nil
}

func asBool(rep resp.Reply) (bool, error) {
	if err := asServerError(rep); err != nil {
		return false, err
	}
	switch rep.Kind {
	case resp.KindInteger:
		return rep.Integer != 0, nil
	case resp.KindSimpleString:
		return rep.Str == "OK", nil
	default:
		return false, rediserror.New(rediserror.KindProtocol, "expected Integer or SimpleString reply")
	}
}

func asStatus(rep resp.Reply) (string, error) {
	if err := asServerError(rep); err != nil {
		return "", err
	}
	if rep.Kind != resp.KindSimpleString {
		return "", rediserror.New(rediserror.KindProtocol, "expected SimpleString reply")
	}
	return rep.Str, nil
}

// asBulk returns (nil, false, nil) for a nil bulk string, per spec §3's
// nil/empty distinction — callers that need to tell "absent" from ""
// check the ok return.
func asBulk(rep resp.Reply) ([]byte, bool, error) {
	if err := asServerError(rep); err != nil {
		return nil, false, err
	}
	if rep.Kind != resp.KindBulkString {
		return nil, false, rediserror.New(rediserror.KindProtocol, "expected BulkString reply")
	}
	if rep.Null {
		return nil, false, nil
	}
	return rep.Bytes, true, nil
}

func asFloat(rep resp.Reply) (float64, error) {
	b, ok, err := asBulk(rep)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, rediserror.New(rediserror.KindProtocol, "expected numeric BulkString reply, got nil")
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, rediserror.Wrap(rediserror.KindProtocol, err, "malformed float reply")
	}
	return f, nil
}

func asBulkSlice(rep resp.Reply) ([][]byte, error) {
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	if rep.Null {
		return nil, nil
	}
	out := make([][]byte, len(rep.Items))
	for i, item := range rep.Items {
		if item.Null {
			out[i] = nil
			continue
		}
		out[i] = item.Bytes
	}
	return out, nil
}

func asStringSlice(rep resp.Reply) ([]string, error) {
	raw, err := asBulkSlice(rep)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = string(b)
	}
	return out, nil
}

func asStringMap(rep resp.Reply) (map[string]string, error) {
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	if rep.Null || len(rep.Items)%2 != 0 {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(rep.Items)/2)
	for i := 0; i < len(rep.Items); i += 2 {
		out[string(rep.Items[i].Bytes)] = string(rep.Items[i+1].Bytes)
	}
	return out, nil
}

func strArgs(ss []string) []interface{} {
	args := make([]interface{}, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
