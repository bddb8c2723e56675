package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/packet"
	"github.com/davidbalbert/lsr/sync"
)

// DefaultRouters is the size of the simulated network when none is configured.
const DefaultRouters = 5

// MaxRouters bounds the size of the simulated network, and so the SPF matrix.
const MaxRouters = 64

// Conn is the datagram channel to the network emulator.
type Conn interface {
	Send(b []byte) error
	// Receive blocks for the next datagram. It returns ctx.Err() once ctx is done.
	Receive(ctx context.Context) ([]byte, error)
}

type FramingPolicy int

const (
	FramingIgnore FramingPolicy = iota
	FramingAbort
)

func (p FramingPolicy) String() string {
	switch p {
	case FramingIgnore:
		return "ignore"
	case FramingAbort:
		return "abort"
	default:
		return "unknown"
	}
}

type Options struct {
	// Routers is the number of routers in the network. RouterIDs run from 1 to Routers.
	Routers       int
	FramingPolicy FramingPolicy
	Logger        *slog.Logger
	Journal       *Journal
}

// Router is the whole state of one node. Everything except snapshots is owned by the
// goroutine calling Bootstrap and Run.
type Router struct {
	id      common.RouterID
	n       int
	conn    Conn
	log     *slog.Logger
	journal *Journal
	framing FramingPolicy

	circuits  []packet.LinkCost
	local     map[common.LinkID]common.Cost
	db        *lsdb
	neighbors neighborTable
	rib       []Route
	spfRuns   int

	seq       int64
	snapshots *sync.Notifier[*Snapshot]
}

func New(id common.RouterID, conn Conn, opts Options) (*Router, error) {
	n := opts.Routers
	if n == 0 {
		n = DefaultRouters
	}

	if n < 1 || n > MaxRouters {
		return nil, fmt.Errorf("router: network size out of range 1..%d: %d", MaxRouters, n)
	}

	if id < 1 || int(id) > n {
		return nil, fmt.Errorf("router: router id %d out of range 1..%d", id, n)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	journal := opts.Journal
	if journal == nil {
		journal = NewJournal(id, nil)
	}

	r := &Router{
		id:        id,
		n:         n,
		conn:      conn,
		log:       logger.With("router", id.String()),
		journal:   journal,
		framing:   opts.FramingPolicy,
		local:     make(map[common.LinkID]common.Cost),
		db:        newLSDB(),
		neighbors: newNeighborTable(),
	}

	r.rib = newCostGraph(n).shortestPaths(id)
	r.snapshots = sync.NewNotifier(r.snapshot())

	return r, nil
}

func (r *Router) ID() common.RouterID {
	return r.id
}

// Snapshots returns the notifier that carries a fresh Snapshot after every state change.
// It is safe to use from any goroutine.
func (r *Router) Snapshots() *sync.Notifier[*Snapshot] {
	return r.snapshots
}

// Bootstrap announces this router to the emulator, waits for its circuit DB, seeds the
// topology database with our own links and says HELLO on each of them. Any error is
// fatal: the router cannot do anything without knowing its links.
func (r *Router) Bootstrap(ctx context.Context) error {
	ip := &packet.Init{RouterID: r.id}
	if err := r.conn.Send(ip.Encode()); err != nil {
		return fmt.Errorf("bootstrap: sending INIT: %w", err)
	}
	r.journal.Sent(ip)
	r.log.Info("sent INIT, waiting for circuit DB")

	data, err := r.conn.Receive(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: waiting for circuit DB: %w", err)
	}

	cdb, err := packet.DecodeCircuitDB(data)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	r.journal.Received(cdb)
	r.log.Info("received circuit DB", "links", len(cdb.Links))

	r.seed(cdb.Links)
	r.sayHello()

	return nil
}

func (r *Router) seed(links []packet.LinkCost) {
	r.circuits = append([]packet.LinkCost(nil), links...)

	for _, lc := range links {
		r.local[lc.LinkID] = lc.Cost
		r.db.add(LinkState{
			Origin:  r.id,
			Reached: r.id,
			Link:    lc.LinkID,
			Cost:    lc.Cost,
			Via:     0,
		})
	}

	r.recompute()
	r.changed()
}

func (r *Router) sayHello() {
	for _, lc := range r.circuits {
		r.send(&packet.Hello{RouterID: r.id, LinkID: lc.LinkID})
	}
}

// Run is the receive loop. It returns nil once ctx is done, or an error if the
// transport fails or, under FramingAbort, a malformed datagram arrives.
func (r *Router) Run(ctx context.Context) error {
	r.log.Info("entering receive loop")

	for {
		data, err := r.conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Info("receive loop stopped", "reason", context.Cause(ctx))
				return nil
			}

			return fmt.Errorf("receive: %w", err)
		}

		if err := r.handleDatagram(data); err != nil {
			return err
		}
	}
}

func (r *Router) handleDatagram(data []byte) error {
	p, err := packet.Decode(data)
	if err != nil {
		if errors.Is(err, packet.ErrFraming) && r.framing == FramingIgnore {
			r.log.Warn("dropping malformed datagram", "err", err)
			return nil
		}

		return fmt.Errorf("decode: %w", err)
	}

	r.journal.Received(p)
	r.log.Debug("received", "packet", p.String())

	switch p := p.(type) {
	case *packet.Hello:
		r.handleHello(p)
	case *packet.LSPDU:
		r.handleLSPDU(p)
	default:
		r.log.Warn("unexpected packet in receive loop", "packet", p.String())
	}

	return nil
}

// send is fire-and-forget: transport errors are logged, never returned.
func (r *Router) send(p packet.Packet) {
	if err := r.conn.Send(p.Encode()); err != nil {
		r.log.Warn("send failed", "packet", p.String(), "err", err)
		return
	}

	r.journal.Sent(p)
	r.log.Debug("sent", "packet", p.String())
}

// changed journals the topology database and RIB, and publishes a new snapshot.
func (r *Router) changed() {
	r.journal.Topology(r.n, r.db.records)
	r.journal.RIB(r.rib)

	if err := r.journal.Err(); err != nil {
		r.log.Error("journal write failed", "err", err)
	}

	r.seq++
	r.snapshots.NotifyChange(r.snapshot())
}

func (r *Router) snapshot() *Snapshot {
	rib := make([]Route, len(r.rib))
	copy(rib, r.rib)

	return &Snapshot{
		Seq:       r.seq,
		RouterID:  r.id,
		Topology:  r.db.copyRecords(),
		Neighbors: r.neighbors.list(),
		RIB:       rib,
		SPFRuns:   r.spfRuns,
	}
}
