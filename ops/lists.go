package ops

import "github.com/Griffin1989106/rpipe/resp"

// LPush pushes values onto the head of the list at key, returning the new length.
func (o *Ops) LPush(key string, values ...interface{}) (int64, error) {
	args := append([]interface{}{key}, values...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "LPUSH", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// RPush pushes values onto the tail of the list at key, returning the new length.
func (o *Ops) RPush(key string, values ...interface{}) (int64, error) {
	args := append([]interface{}{key}, values...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "RPUSH", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// LPop pops one value from the head of the list at key.
func (o *Ops) LPop(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LPOP", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// RPop pops one value from the tail of the list at key.
func (o *Ops) RPop(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("RPOP", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// LRange returns elements [start, stop] (inclusive) of the list at key.
func (o *Ops) LRange(key string, start, stop int64) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LRANGE", key, start, stop))
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// LLen returns the length of the list at key.
func (o *Ops) LLen(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LLEN", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// LIndex returns the element at index in the list at key.
func (o *Ops) LIndex(key string, index int64) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LINDEX", key, index))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// LInsert inserts value before or after pivot in the list at key, returning the new length (-1 if pivot not found).
func (o *Ops) LInsert(key string, before bool, pivot, value interface{}) (int64, error) {
	where := "AFTER"
	if before {
		where = "BEFORE"
	}
	rep, deferred, err := o.dispatch(resp.NewCommand("LINSERT", key, where, pivot, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// LRem removes up to count occurrences of value from the list at key (count<0 from the tail, 0 all).
func (o *Ops) LRem(key string, count int64, value interface{}) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("LREM", key, count, value))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// LSet overwrites the element at index in the list at key.
func (o *Ops) LSet(key string, index int64, value interface{}) error {
	_, deferred, err := o.dispatch(resp.NewCommand("LSET", key, index, value))
	if err != nil || deferred {
		return err
	}
	return nil
}

// LTrim keeps only elements [start, stop] (inclusive) of the list at key.
func (o *Ops) LTrim(key string, start, stop int64) error {
	_, deferred, err := o.dispatch(resp.NewCommand("LTRIM", key, start, stop))
	if err != nil || deferred {
		return err
	}
	return nil
}

// RPopLPush atomically pops the tail of src and pushes it to the head of dst, returning the moved value.
func (o *Ops) RPopLPush(src, dst string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("RPOPLPUSH", src, dst))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// BLPop blocks up to timeoutSeconds for an element to appear on any of keys, popping from the head.
// Forbidden inside a transaction, per spec §4.7.
func (o *Ops) BLPop(timeoutSeconds int64, keys ...string) ([][]byte, error) {
	args := append(strArgs(keys), timeoutSeconds)
	rep, deferred, err := o.dispatch(resp.Command{Name: "BLPOP", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// BRPop mirrors BLPop, popping from the tail.
func (o *Ops) BRPop(timeoutSeconds int64, keys ...string) ([][]byte, error) {
	args := append(strArgs(keys), timeoutSeconds)
	rep, deferred, err := o.dispatch(resp.Command{Name: "BRPOP", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// BRPopLPush blocks up to timeoutSeconds then behaves like RPopLPush.
func (o *Ops) BRPopLPush(src, dst string, timeoutSeconds int64) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("BRPOPLPUSH", src, dst, timeoutSeconds))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}
