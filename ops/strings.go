package ops

import "github.com/Griffin1989106/rpipe/resp"

// Get returns the value at key, and ok=false for a missing key.
func (o *Ops) Get(key string) (val []byte, ok bool, err error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("GET", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// Set unconditionally stores value at key.
func (o *Ops) Set(key string, value interface{}) error {
	_, deferred, err := o.dispatch(resp.NewCommand("SET", key, value))
	if err != nil || deferred {
		return err
	}
	return nil
}

// SetNX stores value at key only if key does not already exist.
func (o *Ops) SetNX(key string, value interface{}) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SETNX", key, value))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// SetEX stores value at key with a TTL in seconds.
func (o *Ops) SetEX(key string, seconds int64, value interface{}) error {
	_, deferred, err := o.dispatch(resp.NewCommand("SETEX", key, seconds, value))
	if err != nil || deferred {
		return err
	}
	return nil
}

// MGet returns one value (nil for a missing key) per requested key.
func (o *Ops) MGet(keys ...string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "MGET", Args: strArgs(keys)})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// MSet stores every key/value pair atomically.
func (o *Ops) MSet(kv map[string]interface{}) error {
	args := make([]interface{}, 0, len(kv)*2)
	for k, v := range kv {
		args = append(args, k, v)
	}
	_, deferred, err := o.dispatch(resp.Command{Name: "MSET", Args: args})
	if err != nil || deferred {
		return err
	}
	return nil
}

// Incr increments key by 1 and returns the new value.
func (o *Ops) Incr(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("INCR", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Decr decrements key by 1 and returns the new value.
func (o *Ops) Decr(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("DECR", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// IncrBy increments key by delta and returns the new value.
func (o *Ops) IncrBy(key string, delta int64) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("INCRBY", key, delta))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// Append appends value to the string at key, returning the new length.
func (o *Ops) Append(key string, value interface{}) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("APPEND", key, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// GetRange returns the substring of key between start and end (inclusive, 0-based).
func (o *Ops) GetRange(key string, start, end int64) ([]byte, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("GETRANGE", key, start, end))
	if err != nil || deferred {
		return nil, err
	}
	b, _, err := asBulk(rep)
	return b, err
}

// SetRange overwrites key's value starting at offset, returning the new length.
func (o *Ops) SetRange(key string, offset int64, value interface{}) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SETRANGE", key, offset, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// StrLen returns the length of the string at key (0 if it does not exist).
func (o *Ops) StrLen(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("STRLEN", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// BitCount counts set bits in key's value.
func (o *Ops) BitCount(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("BITCOUNT", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// BitOp performs a bitwise operation (AND/OR/XOR/NOT) on srcKeys, storing the result at destKey.
func (o *Ops) BitOp(op, destKey string, srcKeys ...string) (int64, error) {
	args := append([]interface{}{op, destKey}, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "BITOP", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// GetBit returns the bit value at offset within key.
func (o *Ops) GetBit(key string, offset int64) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("GETBIT", key, offset))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SetBit sets the bit at offset within key, returning the prior value.
func (o *Ops) SetBit(key string, offset int64, value int) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SETBIT", key, offset, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// GetDel atomically returns and removes the value at key (supplemental §4.7 feature).
func (o *Ops) GetDel(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("GETDEL", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// GetEx returns the value at key and applies/clears an expiry in the same round trip.
func (o *Ops) GetEx(key string, extraArgs ...interface{}) ([]byte, bool, error) {
	args := append([]interface{}{key}, extraArgs...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "GETEX", Args: args})
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}
