package api

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/rpc"
	"github.com/davidbalbert/lsr/sync"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func testSnapshot(seq int64, cost common.Cost) *router.Snapshot {
	return &router.Snapshot{
		Seq:      seq,
		RouterID: 1,
		Topology: []router.LinkState{
			{Origin: 1, Reached: 1, Link: 1, Cost: cost},
			{Origin: 2, Reached: 2, Link: 1, Cost: cost},
		},
		Neighbors: []router.Neighbor{{Link: 1, RouterID: 2}},
		RIB: []router.Route{
			{Destination: 1, NextHop: 1, Cost: 0},
			{Destination: 2, NextHop: 2, Cost: cost},
			{Destination: 3, NextHop: 0, Cost: common.Infinity},
		},
		SPFRuns: int(seq),
	}
}

// startServer serves s over an in-memory listener and returns a connected client.
func startServer(t *testing.T, s *Server) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serve(ctx, lis)
	}()

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return newClient(conn)
}

func TestGetState(t *testing.T) {
	snap := testSnapshot(0, 5)
	c := startServer(t, NewServer(sync.NewNotifier(snap), "", "1.2.3", nil))
	ctx := context.Background()

	v, err := c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	h, records, err := c.GetTopology(ctx)
	require.NoError(t, err)
	assert.Equal(t, rpc.Header{RouterID: 1, Seq: 0}, h)
	if diff := cmp.Diff(snap.Topology, records); diff != "" {
		t.Errorf("topology mismatch (-want +got):\n%s", diff)
	}

	_, neighbors, err := c.GetNeighbors(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Neighbors, neighbors)

	_, routes, err := c.GetRoutingTable(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(snap.RIB, routes); diff != "" {
		t.Errorf("rib mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchRoutingTable(t *testing.T) {
	n := sync.NewNotifier(testSnapshot(0, 5))
	c := startServer(t, NewServer(n, "", "dev", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []rpc.Header
	var last []router.Route

	err := c.WatchRoutingTable(ctx, func(h rpc.Header, routes []router.Route) error {
		seen = append(seen, h)
		last = routes

		if len(seen) == 1 {
			n.NotifyChange(testSnapshot(1, 9))
			return nil
		}

		cancel()
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, int64(0), seen[0].Seq)
	assert.Equal(t, int64(1), seen[1].Seq)
	assert.Equal(t, common.Cost(9), last[1].Cost)
}

func TestRunOnUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "lsr.sock")
	s := NewServer(sync.NewNotifier(testSnapshot(0, 1)), socket, "dev", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	c, err := NewClient(socket)
	require.NoError(t, err)

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	v, err := c.GetVersion(callCtx)
	require.NoError(t, err)
	assert.Equal(t, "dev", v)

	c.Close()
	cancel()
	assert.NoError(t, <-done)
}
