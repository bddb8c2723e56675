package router

import (
	"github.com/davidbalbert/lsr/common"
)

// Route is one RIB entry. NextHop is 0 when the destination is unreachable, and equal
// to Destination's own router for the local entry.
type Route struct {
	Destination common.RouterID
	NextHop     common.RouterID
	Cost        common.Cost
}

func (r Route) Reachable() bool {
	return r.Cost != common.Infinity
}

// costGraph is a dense, symmetric adjacency matrix indexed by RouterID. Index 0 is unused.
type costGraph struct {
	n    int
	cost [][]int64
}

const noEdge = int64(-1)

func newCostGraph(n int) *costGraph {
	cost := make([][]int64, n+1)
	for i := range cost {
		cost[i] = make([]int64, n+1)
		for j := range cost[i] {
			cost[i][j] = noEdge
		}
	}

	return &costGraph{n: n, cost: cost}
}

func (g *costGraph) inRange(id common.RouterID) bool {
	return id >= 1 && int(id) <= g.n
}

// connect adds an undirected edge. Parallel links keep the cheapest cost.
func (g *costGraph) connect(a, b common.RouterID, c common.Cost) {
	if a == b || !g.inRange(a) || !g.inRange(b) {
		return
	}

	existing := g.cost[a][b]
	if existing == noEdge || int64(c) < existing {
		g.cost[a][b] = int64(c)
		g.cost[b][a] = int64(c)
	}
}

func (g *costGraph) edge(a, b common.RouterID) (common.Cost, bool) {
	if !g.inRange(a) || !g.inRange(b) || g.cost[a][b] == noEdge {
		return 0, false
	}

	return common.Cost(g.cost[a][b]), true
}

// buildGraph derives router-to-router edges from the topology database. A link only
// becomes an edge once two distinct routers are known to sit on it: either because both
// have been advertised as reached by that link, or, for our own links, because the
// neighbor table tells us who is on the other end. The cost of a link is the cost of
// the first record seen for it.
func buildGraph(n int, self common.RouterID, records []LinkState, neighbors neighborTable) *costGraph {
	g := newCostGraph(n)

	var order []common.LinkID
	ends := make(map[common.LinkID][]common.RouterID)
	costs := make(map[common.LinkID]common.Cost)

	addEnd := func(link common.LinkID, id common.RouterID) {
		for _, e := range ends[link] {
			if e == id {
				return
			}
		}
		ends[link] = append(ends[link], id)
	}

	for _, ls := range records {
		if _, ok := costs[ls.Link]; !ok {
			costs[ls.Link] = ls.Cost
			order = append(order, ls.Link)
		}

		addEnd(ls.Link, ls.Reached)

		if ls.Reached == self {
			if id, ok := neighbors.get(ls.Link); ok {
				addEnd(ls.Link, id)
			}
		}
	}

	for _, link := range order {
		e := ends[link]
		for i := 0; i < len(e); i++ {
			for j := i + 1; j < len(e); j++ {
				g.connect(e[i], e[j], costs[link])
			}
		}
	}

	return g
}

// shortestPaths runs Dijkstra from self and returns one Route per router 1..n.
//
// Ties are broken deterministically: among unsettled routers at equal distance the
// lowest RouterID is settled first, and between equal-cost paths the one whose first
// hop has the lower RouterID is kept.
func (g *costGraph) shortestPaths(self common.RouterID) []Route {
	dist := make([]int64, g.n+1)
	hop := make([]common.RouterID, g.n+1)
	seen := make([]bool, g.n+1)
	done := make([]bool, g.n+1)

	if g.inRange(self) {
		seen[self] = true
		hop[self] = self
	}

	for {
		var u common.RouterID
		for v := common.RouterID(1); int(v) <= g.n; v++ {
			if done[v] || !seen[v] {
				continue
			}

			if u == 0 || dist[v] < dist[u] {
				u = v
			}
		}

		if u == 0 {
			break
		}

		done[u] = true

		for v := common.RouterID(1); int(v) <= g.n; v++ {
			c := g.cost[u][v]
			if done[v] || c == noEdge {
				continue
			}

			d := dist[u] + c
			first := hop[u]
			if u == self {
				first = v
			}

			if !seen[v] || d < dist[v] || (d == dist[v] && first < hop[v]) {
				seen[v] = true
				dist[v] = d
				hop[v] = first
			}
		}
	}

	routes := make([]Route, 0, g.n)
	for v := common.RouterID(1); int(v) <= g.n; v++ {
		r := Route{Destination: v, Cost: common.Infinity}
		if seen[v] && dist[v] < int64(common.Infinity) {
			r.Cost = common.Cost(dist[v])
			r.NextHop = hop[v]
		}

		routes = append(routes, r)
	}

	return routes
}
