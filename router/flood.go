package router

import (
	"github.com/davidbalbert/lsr/packet"
)

// handleHello answers a neighbor's HELLO with our entire topology database, then
// records who is on the other end of the link.
func (r *Router) handleHello(h *packet.Hello) {
	// Bring the neighbor up to date, independent of flooding.
	for _, ls := range r.db.records {
		r.send(ls.pdu(r.id, h.LinkID))
	}

	// Only our own circuits have neighbors.
	if _, ok := r.local[h.LinkID]; !ok {
		r.log.Warn("HELLO on unknown link", "link", h.LinkID, "from", h.RouterID.String())
		return
	}

	if !r.neighbors.set(h.LinkID, h.RouterID) {
		return
	}

	r.log.Info("discovered neighbor", "link", h.LinkID, "neighbor", h.RouterID.String())

	// A new neighbor can complete an edge.
	r.recompute()
	r.changed()
}

// handleLSPDU installs a previously unknown link-state record and floods it to every
// neighbor except those on the record's own link and the link it arrived on.
func (r *Router) handleLSPDU(p *packet.LSPDU) {
	ls := linkStateFromPDU(p)

	// First seen wins. Duplicates are dropped without re-flooding.
	if r.db.contains(ls.Reached, ls.Link) {
		r.log.Debug("duplicate link state", "reached", ls.Reached.String(), "link", ls.Link)
		return
	}

	if ls.Cost < 0 {
		r.log.Warn("dropping link state with negative cost", "reached", ls.Reached.String(), "link", ls.Link, "cost", int32(ls.Cost), "from", p.Sender.String())
		return
	}

	r.db.add(ls)

	// The graph may have changed.
	r.recompute()

	// Reverse-path suppressed flood, in link order.
	for _, link := range r.neighbors.sortedLinks() {
		if link == ls.Link || link == ls.Via {
			continue
		}

		r.send(ls.pdu(r.id, link))
	}

	r.changed()
}

// recompute rebuilds the RIB from scratch.
func (r *Router) recompute() {
	g := buildGraph(r.n, r.id, r.db.records, r.neighbors)
	r.rib = g.shortestPaths(r.id)
	r.spfRuns++
}
