package main

import (
	"testing"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTable(t *testing.T) {
	table, err := routeTable([]router.Route{
		{Destination: 1, NextHop: 2, Cost: 12},
		{Destination: 2, NextHop: 2, Cost: 5},
		{Destination: 3, NextHop: 3, Cost: 0},
		{Destination: 4, NextHop: 0, Cost: common.Infinity},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Destination   Next hop   Cost",
		"-----------   --------   ----",
		"R1            R2         12",
		"R2            R2         5",
		"R3            local      0",
		"R4            none       inf",
	}, table)
}

func TestTabulateColumnMismatch(t *testing.T) {
	_, err := tabulate([]int{1}, []string{"A", "B"}, func(int) []string { return []string{"x"} })
	assert.Error(t, err)
}
