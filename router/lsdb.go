package router

import (
	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/packet"
)

// LinkState is one entry in the topology database: Origin advertised that Link, with
// the given Cost, attaches to Reached. Via is the interface the record arrived on and is
// not part of its identity.
type LinkState struct {
	Origin  common.RouterID
	Reached common.RouterID
	Link    common.LinkID
	Cost    common.Cost
	Via     common.LinkID
}

type lsdbKey struct {
	reached common.RouterID
	link    common.LinkID
}

func (ls *LinkState) key() lsdbKey {
	return lsdbKey{
		reached: ls.Reached,
		link:    ls.Link,
	}
}

// pdu returns ls as it should be sent out link via by router self.
func (ls *LinkState) pdu(self common.RouterID, via common.LinkID) *packet.LSPDU {
	return &packet.LSPDU{
		Sender:   self,
		RouterID: ls.Reached,
		LinkID:   ls.Link,
		Cost:     ls.Cost,
		Via:      via,
	}
}

func linkStateFromPDU(p *packet.LSPDU) LinkState {
	return LinkState{
		Origin:  p.Sender,
		Reached: p.RouterID,
		Link:    p.LinkID,
		Cost:    p.Cost,
		Via:     p.Via,
	}
}

// Rules of the lsdb:
//
// - Records are only ever appended. Nothing is removed or modified.
// - The first record seen for a (reached, link) pair wins, whatever its cost.
type lsdb struct {
	records []LinkState
	index   map[lsdbKey]int
}

func newLSDB() *lsdb {
	return &lsdb{
		index: make(map[lsdbKey]int),
	}
}

// add appends ls unless a record with the same key exists. It reports whether the
// database changed.
func (db *lsdb) add(ls LinkState) bool {
	k := ls.key()
	if _, ok := db.index[k]; ok {
		return false
	}

	db.index[k] = len(db.records)
	db.records = append(db.records, ls)

	return true
}

func (db *lsdb) contains(reached common.RouterID, link common.LinkID) bool {
	_, ok := db.index[lsdbKey{reached: reached, link: link}]
	return ok
}

func (db *lsdb) len() int {
	return len(db.records)
}

func (db *lsdb) copyRecords() []LinkState {
	records := make([]LinkState, len(db.records))
	copy(records, db.records)

	return records
}
