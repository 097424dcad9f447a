package ops

import "github.com/Griffin1989106/rpipe/resp"

// HSet stores field/value in the hash at key, returning the number of fields newly added.
func (o *Ops) HSet(key, field string, value interface{}) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HSET", key, field, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// HSetNX stores field/value only if field does not already exist in the hash at key.
func (o *Ops) HSetNX(key, field string, value interface{}) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HSETNX", key, field, value))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// HGet returns field's value in the hash at key.
func (o *Ops) HGet(key, field string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HGET", key, field))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// HMSet stores every field/value pair in the hash at key.
func (o *Ops) HMSet(key string, fv map[string]interface{}) error {
	args := make([]interface{}, 0, len(fv)*2+1)
	args = append(args, key)
	for f, v := range fv {
		args = append(args, f, v)
	}
	_, deferred, err := o.dispatch(resp.Command{Name: "HMSET", Args: args})
	if err != nil || deferred {
		return err
	}
	return nil
}

// HMGet returns one value (nil for a missing field) per requested field.
func (o *Ops) HMGet(key string, fields ...string) ([][]byte, error) {
	args := append([]interface{}{key}, strArgs(fields)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "HMGET", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// HDel removes the given fields from the hash at key, returning how many existed.
func (o *Ops) HDel(key string, fields ...string) (int64, error) {
	args := append([]interface{}{key}, strArgs(fields)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "HDEL", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// HExists reports whether field exists in the hash at key.
func (o *Ops) HExists(key, field string) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HEXISTS", key, field))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// HKeys returns every field name in the hash at key.
func (o *Ops) HKeys(key string) ([]string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HKEYS", key))
	if err != nil || deferred {
		return nil, err
	}
	return asStringSlice(rep)
}

// HVals returns every value in the hash at key.
func (o *Ops) HVals(key string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HVALS", key))
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// HGetAll returns every field/value pair in the hash at key.
func (o *Ops) HGetAll(key string) (map[string]string, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HGETALL", key))
	if err != nil || deferred {
		return nil, err
	}
	return asStringMap(rep)
}

// HLen returns the number of fields in the hash at key.
func (o *Ops) HLen(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HLEN", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// HIncrBy increments field in the hash at key by delta, returning the new value.
func (o *Ops) HIncrBy(key, field string, delta int64) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HINCRBY", key, field, delta))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// HIncrByFloat increments field in the hash at key by delta, returning the new value.
func (o *Ops) HIncrByFloat(key, field string, delta float64) (float64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("HINCRBYFLOAT", key, field, delta))
	if err != nil || deferred {
		return 0, err
	}
	return asFloat(rep)
}
