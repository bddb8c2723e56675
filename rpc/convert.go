package rpc

import (
	"fmt"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/router"
	"google.golang.org/protobuf/types/known/structpb"
)

func header(snap *router.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"router_id": int64(snap.RouterID),
		"seq":       snap.Seq,
	}
}

func EncodeTopology(snap *router.Snapshot) (*structpb.Struct, error) {
	records := make([]interface{}, len(snap.Topology))
	for i, ls := range snap.Topology {
		records[i] = map[string]interface{}{
			"origin":  int64(ls.Origin),
			"reached": int64(ls.Reached),
			"link":    int64(ls.Link),
			"cost":    int64(ls.Cost),
		}
	}

	m := header(snap)
	m["records"] = records

	return structpb.NewStruct(m)
}

func EncodeNeighbors(snap *router.Snapshot) (*structpb.Struct, error) {
	neighbors := make([]interface{}, len(snap.Neighbors))
	for i, n := range snap.Neighbors {
		neighbors[i] = map[string]interface{}{
			"link":      int64(n.Link),
			"router_id": int64(n.RouterID),
		}
	}

	m := header(snap)
	m["neighbors"] = neighbors

	return structpb.NewStruct(m)
}

func EncodeRoutingTable(snap *router.Snapshot) (*structpb.Struct, error) {
	routes := make([]interface{}, len(snap.RIB))
	for i, r := range snap.RIB {
		routes[i] = map[string]interface{}{
			"destination": int64(r.Destination),
			"next_hop":    int64(r.NextHop),
			"cost":        int64(r.Cost),
		}
	}

	m := header(snap)
	m["spf_runs"] = int64(snap.SPFRuns)
	m["routes"] = routes

	return structpb.NewStruct(m)
}

// Header is the part of every state response that identifies the snapshot it came from.
type Header struct {
	RouterID common.RouterID
	Seq      int64
}

func number(fields map[string]*structpb.Value, key string) (int64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("rpc: missing field %q", key)
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("rpc: field %q is not a number", key)
	}

	return int64(n.NumberValue), nil
}

func decodeHeader(st *structpb.Struct) (Header, error) {
	id, err := number(st.GetFields(), "router_id")
	if err != nil {
		return Header{}, err
	}

	seq, err := number(st.GetFields(), "seq")
	if err != nil {
		return Header{}, err
	}

	return Header{RouterID: common.RouterID(id), Seq: seq}, nil
}

// decodeList calls f with the fields of each struct in the list named key.
func decodeList(st *structpb.Struct, key string, f func(map[string]*structpb.Value) error) error {
	v, ok := st.GetFields()[key]
	if !ok {
		return fmt.Errorf("rpc: missing field %q", key)
	}

	list := v.GetListValue()
	if list == nil {
		return fmt.Errorf("rpc: field %q is not a list", key)
	}

	for i, item := range list.GetValues() {
		s := item.GetStructValue()
		if s == nil {
			return fmt.Errorf("rpc: %s[%d] is not a struct", key, i)
		}

		if err := f(s.GetFields()); err != nil {
			return fmt.Errorf("%s[%d]: %w", key, i, err)
		}
	}

	return nil
}

func DecodeVersion(st *structpb.Struct) (string, error) {
	v, ok := st.GetFields()["version"]
	if !ok {
		return "", fmt.Errorf("rpc: missing field %q", "version")
	}

	return v.GetStringValue(), nil
}

func DecodeTopology(st *structpb.Struct) (Header, []router.LinkState, error) {
	h, err := decodeHeader(st)
	if err != nil {
		return Header{}, nil, err
	}

	var records []router.LinkState
	err = decodeList(st, "records", func(f map[string]*structpb.Value) error {
		var n [4]int64
		for i, key := range []string{"origin", "reached", "link", "cost"} {
			if n[i], err = number(f, key); err != nil {
				return err
			}
		}

		records = append(records, router.LinkState{
			Origin:  common.RouterID(n[0]),
			Reached: common.RouterID(n[1]),
			Link:    common.LinkID(n[2]),
			Cost:    common.Cost(n[3]),
		})
		return nil
	})
	if err != nil {
		return Header{}, nil, err
	}

	return h, records, nil
}

func DecodeNeighbors(st *structpb.Struct) (Header, []router.Neighbor, error) {
	h, err := decodeHeader(st)
	if err != nil {
		return Header{}, nil, err
	}

	var neighbors []router.Neighbor
	err = decodeList(st, "neighbors", func(f map[string]*structpb.Value) error {
		link, err := number(f, "link")
		if err != nil {
			return err
		}

		id, err := number(f, "router_id")
		if err != nil {
			return err
		}

		neighbors = append(neighbors, router.Neighbor{Link: common.LinkID(link), RouterID: common.RouterID(id)})
		return nil
	})
	if err != nil {
		return Header{}, nil, err
	}

	return h, neighbors, nil
}

func DecodeRoutingTable(st *structpb.Struct) (Header, []router.Route, error) {
	h, err := decodeHeader(st)
	if err != nil {
		return Header{}, nil, err
	}

	var routes []router.Route
	err = decodeList(st, "routes", func(f map[string]*structpb.Value) error {
		var n [3]int64
		for i, key := range []string{"destination", "next_hop", "cost"} {
			if n[i], err = number(f, key); err != nil {
				return err
			}
		}

		routes = append(routes, router.Route{
			Destination: common.RouterID(n[0]),
			NextHop:     common.RouterID(n[1]),
			Cost:        common.Cost(n[2]),
		})
		return nil
	})
	if err != nil {
		return Header{}, nil, err
	}

	return h, routes, nil
}
