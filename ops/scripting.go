package ops

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// Eval executes a Lua script against the given keys and extra arguments.
// The raw Reply is returned since Lua scripts can return any RESP shape;
// callers that know the expected shape check its Kind and fields themselves.
func (o *Ops) Eval(script string, keys []string, args ...interface{}) (resp.Reply, error) {
	cmdArgs := append([]interface{}{script, int64(len(keys))}, strArgs(keys)...)
	cmdArgs = append(cmdArgs, args...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "EVAL", Args: cmdArgs})
	if deferred {
		return resp.Reply{}, err
	}
	return rep, err
}

// EvalSha executes a cached script by its SHA1 digest.
func (o *Ops) EvalSha(sha1 string, keys []string, args ...interface{}) (resp.Reply, error) {
	cmdArgs := append([]interface{}{sha1, int64(len(keys))}, strArgs(keys)...)
	cmdArgs = append(cmdArgs, args...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "EVALSHA", Args: cmdArgs})
	if deferred {
		return resp.Reply{}, err
	}
	return rep, err
}

// ScriptLoad uploads script to the server's script cache, returning its SHA1 digest.
func (o *Ops) ScriptLoad(script string) (string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SCRIPT", "LOAD", script))
	if err != nil || deferred {
		return "", err
	}
	b, _, err := asBulk(rep)
	return string(b), err
}

// ScriptExists reports, per sha1, whether it is present in the script cache.
func (o *Ops) ScriptExists(sha1s ...string) ([]bool, error) {
	args := append([]interface{}{"EXISTS"}, strArgs(sha1s)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SCRIPT", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	out := make([]bool, len(rep.Items))
	for i, item := range rep.Items {
		n, err := asInt64(item)
		if err != nil {
			return nil, err
		}
		out[i] = n != 0
	}
	return out, nil
}

// ScriptFlush empties the script cache.
func (o *Ops) ScriptFlush() error {
	_, deferred, err := o.dispatch(resp.NewCommand("SCRIPT", "FLUSH"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// ScriptKill terminates the currently running script, if any.
func (o *Ops) ScriptKill() error {
	_, deferred, err := o.dispatch(resp.NewCommand("SCRIPT", "KILL"))
	if err != nil || deferred {
		return err
	}
	return nil
}
