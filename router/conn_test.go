package router

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/packet"
	"github.com/stretchr/testify/require"
)

// fakeConn records everything sent and hands out datagrams queued with push.
type fakeConn struct {
	sent   [][]byte
	inbox  chan []byte
	onSend func(b []byte)
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbox: make(chan []byte, 64)}
}

func (c *fakeConn) Send(b []byte) error {
	c.sent = append(c.sent, b)
	if c.onSend != nil {
		c.onSend(b)
	}
	return nil
}

func (c *fakeConn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b := <-c.inbox:
		return b, nil
	}
}

func (c *fakeConn) push(p packet.Packet) {
	c.inbox <- p.Encode()
}

func (c *fakeConn) reset() {
	c.sent = nil
}

func (c *fakeConn) sentLSPDUs(t *testing.T) []*packet.LSPDU {
	t.Helper()

	var pdus []*packet.LSPDU
	for _, b := range c.sent {
		if len(b) != packet.LSPDULen {
			continue
		}

		p, err := packet.Decode(b)
		require.NoError(t, err)
		pdus = append(pdus, p.(*packet.LSPDU))
	}

	return pdus
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func links(pairs ...int32) []packet.LinkCost {
	var lcs []packet.LinkCost
	for i := 0; i+1 < len(pairs); i += 2 {
		lcs = append(lcs, packet.LinkCost{LinkID: common.LinkID(pairs[i]), Cost: common.Cost(pairs[i+1])})
	}
	return lcs
}

// newSeededRouter returns a router that has already been through bootstrap with the
// given circuits, with its send log cleared.
func newSeededRouter(t *testing.T, id common.RouterID, circuits []packet.LinkCost) (*Router, *fakeConn) {
	t.Helper()

	conn := newFakeConn()
	r, err := New(id, conn, Options{Logger: discardLogger()})
	require.NoError(t, err)

	r.seed(circuits)
	r.sayHello()
	conn.reset()

	return r, conn
}
