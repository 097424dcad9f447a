package ops

import "github.com/Griffin1989106/rpipe/resp"

// SAdd adds members to the set at key, returning how many were newly added.
func (o *Ops) SAdd(key string, members ...interface{}) (int64, error) {
	args := append([]interface{}{key}, members...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SADD", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SRem removes members from the set at key, returning how many existed.
func (o *Ops) SRem(key string, members ...interface{}) (int64, error) {
	args := append([]interface{}{key}, members...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SREM", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SMembers returns every member of the set at key.
func (o *Ops) SMembers(key string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SMEMBERS", key))
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// SIsMember reports whether member is in the set at key.
func (o *Ops) SIsMember(key string, member interface{}) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SISMEMBER", key, member))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// SCard returns the number of members in the set at key.
func (o *Ops) SCard(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SCARD", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SInter returns the intersection of the given sets.
func (o *Ops) SInter(keys ...string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "SINTER", Args: strArgs(keys)})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// SInterStore stores the intersection of srcKeys into dest, returning the result's cardinality.
func (o *Ops) SInterStore(dest string, srcKeys ...string) (int64, error) {
	args := append([]interface{}{dest}, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SINTERSTORE", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SUnion returns the union of the given sets.
func (o *Ops) SUnion(keys ...string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "SUNION", Args: strArgs(keys)})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// SUnionStore stores the union of srcKeys into dest, returning the result's cardinality.
func (o *Ops) SUnionStore(dest string, srcKeys ...string) (int64, error) {
	args := append([]interface{}{dest}, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SUNIONSTORE", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SDiff returns the set difference keys[0] - keys[1:].
func (o *Ops) SDiff(keys ...string) ([][]byte, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "SDIFF", Args: strArgs(keys)})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// SDiffStore stores the set difference into dest, returning the result's cardinality.
func (o *Ops) SDiffStore(dest string, srcKeys ...string) (int64, error) {
	args := append([]interface{}{dest}, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "SDIFFSTORE", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// SPop removes and returns a random member of the set at key.
func (o *Ops) SPop(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SPOP", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// SRandMember returns a random member of the set at key without removing it.
func (o *Ops) SRandMember(key string) ([]byte, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SRANDMEMBER", key))
	if err != nil || deferred {
		return nil, false, err
	}
	return asBulk(rep)
}

// SMove atomically moves member from src to dst, reporting whether it was present in src.
func (o *Ops) SMove(src, dst string, member interface{}) (bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("SMOVE", src, dst, member))
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}
