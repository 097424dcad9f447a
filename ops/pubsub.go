package ops

import "github.com/Griffin1989106/rpipe/resp"

// Publish sends payload to channel, returning the number of clients that received it.
// A dedicated subscribing connection uses the subscribe package instead; this
// method is for connections that only ever publish.
func (o *Ops) Publish(channel string, payload interface{}) (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PUBLISH", channel, payload))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// PubSubChannels lists active channels, optionally filtered by pattern.
func (o *Ops) PubSubChannels(pattern string) ([]string, error) {
	var cmd resp.Command
	if pattern == "" {
		cmd = resp.NewCommand("PUBSUB", "CHANNELS")
	} else {
		cmd = resp.NewCommand("PUBSUB", "CHANNELS", pattern)
	}
	rep, deferred, err := o.dispatch(cmd)
	if err != nil || deferred {
		return nil, err
	}
	return asStringSlice(rep)
}

// PubSubNumSub returns the subscriber count for each given channel.
func (o *Ops) PubSubNumSub(channels ...string) (map[string]int64, error) {
	args := append([]interface{}{"NUMSUB"}, strArgs(channels)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "PUBSUB", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk || rep.Null {
		return map[string]int64{}, nil
	}
	out := make(map[string]int64, len(rep.Items)/2)
	for i := 0; i+1 < len(rep.Items); i += 2 {
		n, err := asInt64(rep.Items[i+1])
		if err != nil {
			return nil, err
		}
		out[string(rep.Items[i].Bytes)] = n
	}
	return out, nil
}

// PubSubNumPat returns the number of active pattern subscriptions.
func (o *Ops) PubSubNumPat() (int64, error) {
	rep, deferred, err := o.dispatch(resp.NewCommand("PUBSUB", "NUMPAT"))
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}
