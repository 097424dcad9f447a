package ops

import "github.com/Griffin1989106/rpipe/resp"

// Ping issues PING through the typed surface (Core.Ping exists separately
// for Pool health checks; this variant honors pipelining/transactions).
func (o *Ops) Ping() (string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PING"))
	if err != nil || deferred {
		return "", err
	}
	return asStatus(rep)
}

// Echo returns msg verbatim from the server.
func (o *Ops) Echo(msg string) ([]byte, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ECHO", msg))
	if err != nil || deferred {
		return nil, err
	}
	b, _, err := asBulk(rep)
	return b, err
}

// Select switches the active database index for the remainder of the Core's lifetime.
func (o *Ops) Select(db int) error {
	_, deferred, err := o.dispatch(resp.NewCommand("SELECT", db))
	if err != nil || deferred {
		return err
	}
	return nil
}

// Info returns the server's INFO report, optionally scoped to one or more sections.
func (o *Ops) Info(sections ...string) (string, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "INFO", Args: strArgs(sections)})
	if err != nil || deferred {
		return "", err
	}
	b, _, err := asBulk(rep)
	return string(b), err
}

// DBSize returns the number of keys in the currently selected database.
func (o *Ops) DBSize() (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("DBSIZE"))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// FlushDB removes every key in the currently selected database.
func (o *Ops) FlushDB() error {
	_, deferred, err := o.dispatch(resp.NewCommand("FLUSHDB"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// FlushAll removes every key in every database.
func (o *Ops) FlushAll() error {
	_, deferred, err := o.dispatch(resp.NewCommand("FLUSHALL"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// Save synchronously writes an RDB snapshot to disk.
func (o *Ops) Save() error {
	_, deferred, err := o.dispatch(resp.NewCommand("SAVE"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// BGSave triggers an asynchronous RDB snapshot.
func (o *Ops) BGSave() error {
	_, deferred, err := o.dispatch(resp.NewCommand("BGSAVE"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// BGRewriteAOF triggers an asynchronous AOF rewrite.
func (o *Ops) BGRewriteAOF() error {
	_, deferred, err := o.dispatch(resp.NewCommand("BGREWRITEAOF"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// ConfigGet returns every config parameter matching pattern.
func (o *Ops) ConfigGet(pattern string) (map[string]string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("CONFIG", "GET", pattern))
	if err != nil || deferred {
		return nil, err
	}
	return asStringMap(rep)
}

// ConfigSet sets one config parameter.
func (o *Ops) ConfigSet(parameter string, value interface{}) error {
	_, deferred, err := o.dispatch(resp.NewCommand("CONFIG", "SET", parameter, value))
	if err != nil || deferred {
		return err
	}
	return nil
}

// ConfigResetStat resets the server's runtime statistics counters.
func (o *Ops) ConfigResetStat() error {
	_, deferred, err := o.dispatch(resp.NewCommand("CONFIG", "RESETSTAT"))
	if err != nil || deferred {
		return err
	}
	return nil
}

// LastSave returns the Unix timestamp of the last successful RDB save.
func (o *Ops) LastSave() (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LASTSAVE"))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Shutdown requests server shutdown. The call typically never sees a reply:
// the connection closes first, which surfaces as a ConnectionLost error.
func (o *Ops) Shutdown() error {
	_, deferred, err := o.dispatch(resp.NewCommand("SHUTDOWN"))
	if deferred {
		return nil
	}
	return err
}
