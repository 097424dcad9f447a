package ops

import "github.com/Griffin1989106/rpipe/resp"

// Del removes the given keys, returning how many existed.
func (o *Ops) Del(keys ...string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "DEL", Args: strArgs(keys)})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Exists counts how many of the given keys exist.
func (o *Ops) Exists(keys ...string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "EXISTS", Args: strArgs(keys)})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Keys returns every key matching pattern. Intended for debugging/admin use, per spec §4.7.
func (o *Ops) Keys(pattern string) ([]string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("KEYS", pattern))
	if err != nil || deferred {
		return nil, err
	}
	return asStringSlice(rep)
}

// Type reports the value type stored at key ("string", "list", "set", "zset", "hash", "stream", or "none").
func (o *Ops) Type(key string) (string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("TYPE", key))
	if err != nil || deferred {
		return "", err
	}
	return asStatus(rep)
}

// Rename renames src to dst unconditionally.
func (o *Ops) Rename(src, dst string) error {
	_, deferred, err := o.dispatch(resp.NewCommand("RENAME", src, dst))
	if err != nil || deferred {
		return err
	}
	return nil
}

// RenameNX renames src to dst only if dst does not exist.
func (o *Ops) RenameNX(src, dst string) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("RENAMENX", src, dst))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// Expire sets a TTL in seconds on key.
func (o *Ops) Expire(key string, seconds int64) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("EXPIRE", key, seconds))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// PExpire sets a TTL in milliseconds on key.
func (o *Ops) PExpire(key string, millis int64) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PEXPIRE", key, millis))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// ExpireAt sets key to expire at a Unix timestamp in seconds.
func (o *Ops) ExpireAt(key string, unixSeconds int64) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("EXPIREAT", key, unixSeconds))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// PExpireAt sets key to expire at a Unix timestamp in milliseconds.
func (o *Ops) PExpireAt(key string, unixMillis int64) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PEXPIREAT", key, unixMillis))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// TTL returns key's remaining time to live in seconds (-1 no TTL, -2 missing).
func (o *Ops) TTL(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("TTL", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// PTTL returns key's remaining time to live in milliseconds (-1 no TTL, -2 missing).
func (o *Ops) PTTL(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PTTL", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Persist removes any TTL on key.
func (o *Ops) Persist(key string) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PERSIST", key))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// RandomKey returns a random key from the keyspace, or ok=false if empty.
func (o *Ops) RandomKey() (key string, ok bool, err error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("RANDOMKEY"))
	if err != nil || deferred {
		return "", false, err
	}
	b, ok, err := asBulk(rep)
	return string(b), ok, err
}

// Move relocates key to the given database index.
func (o *Ops) Move(key string, db int) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("MOVE", key, db))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// Dump serializes the value at key for later RESTORE.
func (o *Ops) Dump(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("DUMP", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// Restore recreates key from a Dump payload with a TTL in milliseconds (0 means no TTL).
func (o *Ops) Restore(key string, ttlMillis int64, payload []byte) error {
	_, deferred, err := o.dispatch(resp.NewCommand("RESTORE", key, ttlMillis, payload))
	if err != nil || deferred {
		return err
	}
	return nil
}

// Sort runs SORT without STORE, returning the sorted element list.
func (o *Ops) Sort(key string, extraArgs ...interface{}) ([]string, error) {
	args := append([]interface{}{key}, extraArgs...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SORT", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asStringSlice(rep)
}

// SortStore runs SORT ... STORE dest, returning the number of elements stored.
func (o *Ops) SortStore(key, dest string, extraArgs ...interface{}) (int64, error) {
	args := append([]interface{}{key}, extraArgs...)
	args = append(args, "STORE", dest)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SORT", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Touch updates the last-access time of the given keys, returning how many existed (supplemental §4.7 feature).
func (o *Ops) Touch(keys ...string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "TOUCH", Args: strArgs(keys)})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Copy duplicates src's value to dst, returning whether the copy happened (supplemental §4.7 feature).
func (o *Ops) Copy(src, dst string, replace bool) (bool, error) {
	args := []interface{}{src, dst}
	if replace {
		args = append(args, "REPLACE")
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "COPY", Args: args})
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// ObjectEncoding reports the internal encoding Redis chose for key's value (supplemental §4.7 feature).
func (o *Ops) ObjectEncoding(key string) (string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("OBJECT", "ENCODING", key))
	if err != nil || deferred {
		return "", err
	}
	b, _, err := asBulk(rep)
	return string(b), err
}

// ObjectRefCount reports key's reference count (supplemental §4.7 feature).
func (o *Ops) ObjectRefCount(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("OBJECT", "REFCOUNT", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ObjectIdleTime reports how many seconds key's value has been idle (supplemental §4.7 feature).
func (o *Ops) ObjectIdleTime(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("OBJECT", "IDLETIME", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}
