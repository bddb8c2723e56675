package router

import "github.com/davidbalbert/lsr/common"

// Snapshot is an immutable copy of a router's state, taken on the receive loop right
// after an event was handled. Seq increases by one for every snapshot published.
type Snapshot struct {
	Seq       int64
	RouterID  common.RouterID
	Topology  []LinkState
	Neighbors []Neighbor
	RIB       []Route
	SPFRuns   int
}

// Route returns the RIB entry for dest.
func (s *Snapshot) Route(dest common.RouterID) (Route, bool) {
	for _, r := range s.RIB {
		if r.Destination == dest {
			return r, true
		}
	}

	return Route{}, false
}
