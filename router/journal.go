package router

import (
	"bufio"
	"fmt"
	"io"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/packet"
)

// Journal writes the router's protocol log: one line per PDU sent or received, and a
// dump of the topology database and RIB after every change. It is only ever used from
// the receive loop.
type Journal struct {
	self common.RouterID
	w    *bufio.Writer
	err  error
}

func NewJournal(self common.RouterID, w io.Writer) *Journal {
	if w == nil {
		w = io.Discard
	}

	return &Journal{
		self: self,
		w:    bufio.NewWriter(w),
	}
}

// Err returns the first write error seen, if any.
func (j *Journal) Err() error {
	return j.err
}

func (j *Journal) printf(format string, args ...any) {
	if j.err != nil {
		return
	}

	_, j.err = fmt.Fprintf(j.w, format, args...)
}

func (j *Journal) flush() {
	if j.err != nil {
		return
	}

	j.err = j.w.Flush()
}

func article(p packet.Packet) string {
	switch p.(type) {
	case *packet.Init, *packet.LSPDU:
		return "an"
	default:
		return "a"
	}
}

func (j *Journal) Sent(p packet.Packet) {
	j.printf("%s sends %s %s\n", j.self, article(p), p)
	j.flush()
}

func (j *Journal) Received(p packet.Packet) {
	j.printf("%s receives %s %s\n", j.self, article(p), p)
	j.flush()
}

// Topology writes the database grouped by reached router, in router order, each group
// in the order its records were learned.
func (j *Journal) Topology(n int, records []LinkState) {
	j.printf("# Topology database\n")

	for id := common.RouterID(1); int(id) <= n; id++ {
		count := 0
		for _, ls := range records {
			if ls.Reached == id {
				count++
			}
		}

		if count == 0 {
			continue
		}

		j.printf("%s -> %s nbr link %d\n", j.self, id, count)

		for _, ls := range records {
			if ls.Reached == id {
				j.printf("%s -> %s link %d cost %d\n", ls.Origin, ls.Reached, ls.Link, ls.Cost)
			}
		}
	}

	j.flush()
}

func (j *Journal) RIB(routes []Route) {
	j.printf("# RIB\n")

	for _, r := range routes {
		switch {
		case r.Destination == j.self:
			j.printf("%s -> %s -> local, 0\n", j.self, r.Destination)
		case !r.Reachable():
			j.printf("%s -> %s -> none, %s\n", j.self, r.Destination, r.Cost)
		default:
			j.printf("%s -> %s -> %s, %d\n", j.self, r.Destination, r.NextHop, r.Cost)
		}
	}

	j.flush()
}
