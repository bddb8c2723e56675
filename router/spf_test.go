package router

import (
	"testing"

	"github.com/davidbalbert/lsr/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineGraph(t *testing.T) {
	// R1 --1-- R2 --2-- R3
	records := []LinkState{
		{Origin: 1, Reached: 1, Link: 1, Cost: 1},
		{Origin: 2, Reached: 2, Link: 1, Cost: 1},
		{Origin: 2, Reached: 2, Link: 2, Cost: 2},
		{Origin: 2, Reached: 3, Link: 2, Cost: 2},
	}

	g := buildGraph(3, 1, records, newNeighborTable())
	rib := g.shortestPaths(1)

	assert.Equal(t, []Route{
		{Destination: 1, NextHop: 1, Cost: 0},
		{Destination: 2, NextHop: 2, Cost: 1},
		{Destination: 3, NextHop: 2, Cost: 3},
	}, rib)
}

func TestEdgeNeedsBothEnds(t *testing.T) {
	records := []LinkState{
		{Origin: 1, Reached: 1, Link: 1, Cost: 4},
	}

	g := buildGraph(5, 1, records, newNeighborTable())
	_, ok := g.edge(1, 2)
	assert.False(t, ok)

	nt := newNeighborTable()
	nt.set(1, 2)

	g = buildGraph(5, 1, records, nt)
	c, ok := g.edge(1, 2)
	require.True(t, ok)
	assert.Equal(t, common.Cost(4), c)

	c, ok = g.edge(2, 1)
	require.True(t, ok)
	assert.Equal(t, common.Cost(4), c)
}

func TestFirstRecordSetsLinkCost(t *testing.T) {
	records := []LinkState{
		{Origin: 2, Reached: 2, Link: 7, Cost: 3},
		{Origin: 4, Reached: 4, Link: 7, Cost: 9},
	}

	g := buildGraph(5, 1, records, newNeighborTable())
	c, ok := g.edge(2, 4)
	require.True(t, ok)
	assert.Equal(t, common.Cost(3), c)
}

func TestParallelLinksKeepCheapest(t *testing.T) {
	records := []LinkState{
		{Origin: 1, Reached: 1, Link: 1, Cost: 10},
		{Origin: 1, Reached: 1, Link: 2, Cost: 4},
		{Origin: 2, Reached: 2, Link: 1, Cost: 10},
		{Origin: 2, Reached: 2, Link: 2, Cost: 4},
	}

	g := buildGraph(2, 1, records, newNeighborTable())
	c, ok := g.edge(1, 2)
	require.True(t, ok)
	assert.Equal(t, common.Cost(4), c)
}

func TestOutOfRangeRoutersIgnored(t *testing.T) {
	records := []LinkState{
		{Origin: 1, Reached: 1, Link: 1, Cost: 1},
		{Origin: 9, Reached: 9, Link: 1, Cost: 1},
	}

	g := buildGraph(3, 1, records, newNeighborTable())
	rib := g.shortestPaths(1)
	require.Len(t, rib, 3)
	for _, r := range rib[1:] {
		assert.False(t, r.Reachable())
	}
}

func TestEqualCostTieBreak(t *testing.T) {
	//      R2
	//   1 /  \ 1
	// R1        R4
	//   1 \  / 1
	//      R3
	g := newCostGraph(4)
	g.connect(1, 3, 1)
	g.connect(3, 4, 1)
	g.connect(1, 2, 1)
	g.connect(2, 4, 1)

	rib := g.shortestPaths(1)
	r4, ok := findRoute(rib, 4)
	require.True(t, ok)
	assert.Equal(t, common.Cost(2), r4.Cost)
	assert.Equal(t, common.RouterID(2), r4.NextHop, "lowest first hop wins a tie")
}

func TestZeroCostLink(t *testing.T) {
	g := newCostGraph(3)
	g.connect(1, 2, 0)
	g.connect(2, 3, 6)

	rib := g.shortestPaths(1)
	assert.Equal(t, Route{Destination: 2, NextHop: 2, Cost: 0}, rib[1])
	assert.Equal(t, Route{Destination: 3, NextHop: 2, Cost: 6}, rib[2])
}

func TestLongerPathCheaper(t *testing.T) {
	// Direct R1-R3 costs 10, R1-R2-R3 costs 4.
	g := newCostGraph(3)
	g.connect(1, 3, 10)
	g.connect(1, 2, 1)
	g.connect(2, 3, 3)

	rib := g.shortestPaths(1)
	assert.Equal(t, Route{Destination: 3, NextHop: 2, Cost: 4}, rib[2])
}

func TestReachabilityNotInferredFromDistance(t *testing.T) {
	// Reachability is tracked apart from distance, so no cost value reads as "unreached".
	g := newCostGraph(3)
	g.connect(1, 2, -1)
	g.connect(2, 3, 0)

	rib := g.shortestPaths(1)
	assert.Equal(t, Route{Destination: 2, NextHop: 2, Cost: -1}, rib[1])
	assert.Equal(t, Route{Destination: 3, NextHop: 2, Cost: -1}, rib[2])
}
