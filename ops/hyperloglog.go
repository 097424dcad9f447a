package ops

import "github.com/Griffin1989106/rpipe/resp"

// PFAdd adds elements to the HyperLogLog at key, reporting whether the
// approximated cardinality changed.
func (o *Ops) PFAdd(key string, elements ...interface{}) (bool, error) {
	args := append([]interface{}{key}, elements...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "PFADD", Args: args})
	if err != nil || deferred {
		return false, err
	}
	return asBool(rep)
}

// PFCount returns the approximated cardinality of the union of the given keys.
func (o *Ops) PFCount(keys ...string) (int64, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "PFCOUNT", Args: strArgs(keys)})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// PFMerge merges srcKeys' HyperLogLogs into dest.
func (o *Ops) PFMerge(dest string, srcKeys ...string) error {
	args := append([]interface{}{dest}, strArgs(srcKeys)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "PFMERGE", Args: args})
	if err != nil || deferred {
		return err
	}
	_, err = asStatus(rep)
	return err
}
