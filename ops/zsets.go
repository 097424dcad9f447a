package ops

import "github.com/Griffin1989106/rpipe/resp"

// ZAdd adds score/member pairs to the sorted set at key, returning how many were newly added.
func (o *Ops) ZAdd(key string, scoreMembers map[string]interface{}) (int64, error) {
	args := make([]interface{}, 0, len(scoreMembers)*2+1)
	args = append(args, key)
	for member, score := range scoreMembers {
		args = append(args, score, member)
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZADD", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZRem removes members from the sorted set at key, returning how many existed.
func (o *Ops) ZRem(key string, members ...interface{}) (int64, error) {
	args := append([]interface{}{key}, members...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZREM", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZRange returns members [start, stop] (inclusive, ascending rank order) of the sorted set at key.
func (o *Ops) ZRange(key string, start, stop int64, withScores bool) ([][]byte, error) {
	args := []interface{}{key, start, stop}
	if withScores {
		args = append(args, "WITHSCORES")
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZRANGE", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// ZRevRange mirrors ZRange in descending rank order.
func (o *Ops) ZRevRange(key string, start, stop int64, withScores bool) ([][]byte, error) {
	args := []interface{}{key, start, stop}
	if withScores {
		args = append(args, "WITHSCORES")
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZREVRANGE", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// ZRangeByScore returns members with score in [min, max], ascending.
func (o *Ops) ZRangeByScore(key, min, max string, withScores bool) ([][]byte, error) {
	args := []interface{}{key, min, max}
	if withScores {
		args = append(args, "WITHSCORES")
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZRANGEBYSCORE", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// ZRevRangeByScore mirrors ZRangeByScore in descending order (min/max arguments are server-order: high first).
func (o *Ops) ZRevRangeByScore(key, max, min string, withScores bool) ([][]byte, error) {
	args := []interface{}{key, max, min}
	if withScores {
		args = append(args, "WITHSCORES")
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZREVRANGEBYSCORE", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	return asBulkSlice(rep)
}

// ZCard returns the number of members in the sorted set at key.
func (o *Ops) ZCard(key string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZCARD", key))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZCount counts members with score in [min, max].
func (o *Ops) ZCount(key, min, max string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZCOUNT", key, min, max))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZScore returns member's score in the sorted set at key.
func (o *Ops) ZScore(key string, member interface{}) (float64, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZSCORE", key, member))
	if err != nil || deferred {
		return 0, false, err
	}
	b, ok, err := asBulk(rep)
	if err != nil || !ok {
		return 0, ok, err
	}
	f, err := parseFloatBytes(b)
	return f, true, err
}

// ZRank returns member's 0-based ascending rank in the sorted set at key.
func (o *Ops) ZRank(key string, member interface{}) (int64, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZRANK", key, member))
	if err != nil || deferred {
		return 0, false, err
	}
	if rep.Kind == resp.KindBulkString && rep.Null {
		return 0, false, nil
	}
	n, err := asInt64(rep)
	return n, true, err
}

// ZRevRank mirrors ZRank in descending order.
func (o *Ops) ZRevRank(key string, member interface{}) (int64, bool, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZREVRANK", key, member))
	if err != nil || deferred {
		return 0, false, err
	}
	if rep.Kind == resp.KindBulkString && rep.Null {
		return 0, false, nil
	}
	n, err := asInt64(rep)
	return n, true, err
}

// ZIncrBy increments member's score in the sorted set at key by delta, returning the new score.
func (o *Ops) ZIncrBy(key string, delta float64, member interface{}) (float64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZINCRBY", key, delta, member))
	if err != nil || deferred {
		return 0, err
	}
	return asFloat(rep)
}

// ZRemRangeByRank removes members ranked [start, stop], returning how many were removed.
func (o *Ops) ZRemRangeByRank(key string, start, stop int64) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZREMRANGEBYRANK", key, start, stop))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZRemRangeByScore removes members with score in [min, max], returning how many were removed.
func (o *Ops) ZRemRangeByScore(key, min, max string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("ZREMRANGEBYSCORE", key, min, max))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZInterStore stores the intersection of srcKeys into dest, returning the result's cardinality.
func (o *Ops) ZInterStore(dest string, srcKeys ...string) (int64, error) {
	args := []interface{}{dest, int64(len(srcKeys))}
	args = append(args, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZINTERSTORE", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// ZUnionStore stores the union of srcKeys into dest, returning the result's cardinality.
func (o *Ops) ZUnionStore(dest string, srcKeys ...string) (int64, error) {
	args := []interface{}{dest, int64(len(srcKeys))}
	args = append(args, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "ZUNIONSTORE", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

func parseFloatBytes(b []byte) (float64, error) {
	return asFloat(resp.BulkString(b))
}
