package router

import (
	"github.com/davidbalbert/lsr/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Neighbor struct {
	Link     common.LinkID
	RouterID common.RouterID
}

// neighborTable maps each local link to the router last seen saying HELLO on it.
type neighborTable map[common.LinkID]common.RouterID

func newNeighborTable() neighborTable {
	return neighborTable(make(map[common.LinkID]common.RouterID))
}

// set records that id is on the far end of link, and reports whether that is news.
func (t neighborTable) set(link common.LinkID, id common.RouterID) bool {
	if existing, ok := t[link]; ok && existing == id {
		return false
	}

	t[link] = id
	return true
}

func (t neighborTable) get(link common.LinkID) (common.RouterID, bool) {
	id, ok := t[link]
	return id, ok
}

func (t neighborTable) sortedLinks() []common.LinkID {
	links := maps.Keys(t)
	slices.Sort(links)

	return links
}

func (t neighborTable) list() []Neighbor {
	links := t.sortedLinks()
	neighbors := make([]Neighbor, 0, len(links))

	for _, link := range links {
		neighbors = append(neighbors, Neighbor{Link: link, RouterID: t[link]})
	}

	return neighbors
}
