package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"time"

	"go4.org/netipx"
	"golang.org/x/net/ipv4"
)

// maxDatagram is larger than any PDU we expect, so oversized datagrams are seen at
// their true length and rejected by the decoder instead of being truncated.
const maxDatagram = 512

// tosInternetworkControl is the precedence OSPF marks its packets with.
const tosInternetworkControl = 0xc0

// UDP is a datagram channel between this router and the network emulator.
type UDP struct {
	conn *net.UDPConn
	nse  netip.AddrPort
	log  *slog.Logger
}

// Resolve looks up the emulator's address.
func Resolve(host string, port int) (netip.AddrPort, error) {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolving emulator %s:%d: %w", host, port, err)
	}

	ap, ok := netipx.FromStdAddr(addr.IP, addr.Port, addr.Zone)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("resolving emulator %s:%d: invalid address %v", host, port, addr)
	}

	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}

// Listen binds localPort on all IPv4 addresses and talks to the emulator at nse.
func Listen(localPort int, nse netip.AddrPort, logger *slog.Logger) (*UDP, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("binding port %d: %w", localPort, err)
	}

	if err := ipv4.NewConn(conn).SetTOS(tosInternetworkControl); err != nil {
		logger.Warn("could not set IP TOS", "err", err)
	}

	return &UDP{
		conn: conn,
		nse:  nse,
		log:  logger,
	}, nil
}

func (u *UDP) LocalAddr() netip.AddrPort {
	return u.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

func (u *UDP) Send(b []byte) error {
	_, err := u.conn.WriteToUDPAddrPort(b, u.nse)
	return err
}

// Receive blocks until a datagram from the emulator arrives or ctx is done. Datagrams
// from anywhere else are dropped.
func (u *UDP) Receive(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		// Unblock the pending read.
		u.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	buf := make([]byte, maxDatagram)

	for {
		n, from, err := u.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			if errors.Is(err, os.ErrDeadlineExceeded) {
				// A deadline set by a cancelled earlier call; clear it and keep reading.
				u.conn.SetReadDeadline(time.Time{})
				continue
			}

			return nil, err
		}

		if from.Addr().Unmap() != u.nse.Addr() || from.Port() != u.nse.Port() {
			u.log.Warn("dropping datagram from unexpected source", "from", from, "len", n)
			continue
		}

		return buf[:n], nil
	}
}

func (u *UDP) Close() error {
	return u.conn.Close()
}
