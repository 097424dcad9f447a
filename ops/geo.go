package ops

import (
	"github.com/Griffin1989106/rpipe/rediserror"
	"github.com/Griffin1989106/rpipe/resp"
)

// GeoAdd adds longitude/latitude/member triples to the geospatial index
// at key (a sorted set on the wire), returning how many were newly added.
func (o *Ops) GeoAdd(key string, entries map[string][2]float64) (int64, error) {
	args := make([]interface{}, 0, len(entries)*3+1)
	args = append(args, key)
	for member, lonLat := range entries {
		args = append(args, lonLat[0], lonLat[1], member)
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "GEOADD", Args: args})
	if err != nil || deferred {
		return 0, err
	}
	return asInt64(rep)
}

// GeoPos returns the longitude/latitude of each member, nil for members
// absent from the index.
func (o *Ops) GeoPos(key string, members ...string) ([]*[2]float64, error) {
	args := append([]interface{}{key}, strArgs(members)...)
	rep, deferred, err := o.dispatch(resp.Command{Name: "GEOPOS", Args: args})
	if err != nil || deferred {
		return nil, err
	}
	if err := asServerError(rep); err != nil {
		return nil, err
	}
	if rep.Kind != resp.KindMultiBulk {
		return nil, rediserror.New(rediserror.KindProtocol, "expected MultiBulk reply")
	}
	out := make([]*[2]float64, len(rep.Items))
	for i, item := range rep.Items {
		if item.Null || item.Kind != resp.KindMultiBulk || len(item.Items) != 2 {
			out[i] = nil
			continue
		}
		lon, err := parseFloatBytes(item.Items[0].Bytes)
		if err != nil {
			return nil, err
		}
		lat, err := parseFloatBytes(item.Items[1].Bytes)
		if err != nil {
			return nil, err
		}
		out[i] = &[2]float64{lon, lat}
	}
	return out, nil
}

// GeoDist returns the distance between two members, in unit (default "m").
func (o *Ops) GeoDist(key, member1, member2, unit string) (float64, bool, error) {
	args := []interface{}{key, member1, member2}
	if unit != "" {
		args = append(args, unit)
	}
	rep, deferred, err := o.dispatch(resp.Command{Name: "GEODIST", Args: args})
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

// GeoSearchByRadius finds members within radius (in unit) of a longitude/latitude
// center point, per GEOSEARCH's FROMLONLAT/BYRADIUS form.
func (o *Ops) GeoSearchByRadius(key string, lon, lat, radius float64, unit string) ([]string, error) {
	rep, deferred, err := o.dispatch(resp.Command{Name: "GEOSEARCH", Args: []interface{}{
		key, "FROMLONLAT", lon, lat, "BYRADIUS", radius, unit,
	}})
	if err != nil || deferred {
		return nil, err
	}
	return asStringSlice(rep)
}
