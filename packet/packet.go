package packet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/davidbalbert/lsr/common"
)

const (
	InitLen  = 4
	HelloLen = 8
	LSPDULen = 20

	circuitHeaderLen = 4
	linkCostLen      = 8

	// MaxLinks bounds the number of circuits a single circuit DB may describe.
	MaxLinks = 64
)

var ErrFraming = errors.New("framing error")

type Phase int

const (
	PhaseBootstrap Phase = iota
	PhaseSteady
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseSteady:
		return "steady"
	default:
		return "unknown"
	}
}

type FramingError struct {
	Phase  Phase
	Length int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("%s phase: unexpected datagram length %d", e.Phase, e.Length)
}

func (e *FramingError) Unwrap() error {
	return ErrFraming
}

// Packet is one of *Init, *Hello, *LSPDU or *CircuitDB.
type Packet interface {
	Encode() []byte
	String() string
	isPacket()
}

func putInt32(data []byte, v int32) {
	binary.LittleEndian.PutUint32(data, uint32(v))
}

func getInt32(data []byte) int32 {
	return int32(binary.LittleEndian.Uint32(data))
}

type Init struct {
	RouterID common.RouterID
}

func (p *Init) isPacket() {}

func (p *Init) String() string {
	return fmt.Sprintf("INIT: router_id %d", p.RouterID)
}

func (p *Init) Encode() []byte {
	data := make([]byte, InitLen)
	putInt32(data[0:4], int32(p.RouterID))

	return data
}

type Hello struct {
	RouterID common.RouterID
	LinkID   common.LinkID
}

func (p *Hello) isPacket() {}

func (p *Hello) String() string {
	return fmt.Sprintf("HELLO: router_id %d, link_id %d", p.RouterID, p.LinkID)
}

func (p *Hello) Encode() []byte {
	data := make([]byte, HelloLen)
	putInt32(data[0:4], int32(p.RouterID))
	putInt32(data[4:8], int32(p.LinkID))

	return data
}

func decodeHello(data []byte) *Hello {
	return &Hello{
		RouterID: common.RouterID(getInt32(data[0:4])),
		LinkID:   common.LinkID(getInt32(data[4:8])),
	}
}

// LSPDU advertises that LinkID, with the given Cost, attaches to RouterID.
// Sender and Via describe the last hop only.
type LSPDU struct {
	Sender   common.RouterID
	RouterID common.RouterID
	LinkID   common.LinkID
	Cost     common.Cost
	Via      common.LinkID
}

func (p *LSPDU) isPacket() {}

func (p *LSPDU) String() string {
	return fmt.Sprintf("LS PDU: sender %d, router_id %d, link_id %d, cost %d, via %d", p.Sender, p.RouterID, p.LinkID, p.Cost, p.Via)
}

func (p *LSPDU) Encode() []byte {
	data := make([]byte, LSPDULen)
	putInt32(data[0:4], int32(p.Sender))
	putInt32(data[4:8], int32(p.RouterID))
	putInt32(data[8:12], int32(p.LinkID))
	putInt32(data[12:16], int32(p.Cost))
	putInt32(data[16:20], int32(p.Via))

	return data
}

func decodeLSPDU(data []byte) *LSPDU {
	return &LSPDU{
		Sender:   common.RouterID(getInt32(data[0:4])),
		RouterID: common.RouterID(getInt32(data[4:8])),
		LinkID:   common.LinkID(getInt32(data[8:12])),
		Cost:     common.Cost(getInt32(data[12:16])),
		Via:      common.LinkID(getInt32(data[16:20])),
	}
}

type LinkCost struct {
	LinkID common.LinkID
	Cost   common.Cost
}

// CircuitDB is the emulator's answer to INIT: the links attached to this router.
type CircuitDB struct {
	Links []LinkCost
}

func (p *CircuitDB) isPacket() {}

func (p *CircuitDB) String() string {
	return fmt.Sprintf("circuit_DB: nbr_link %d", len(p.Links))
}

func (p *CircuitDB) Encode() []byte {
	data := make([]byte, circuitHeaderLen+linkCostLen*len(p.Links))
	putInt32(data[0:4], int32(len(p.Links)))

	for i, lc := range p.Links {
		off := circuitHeaderLen + i*linkCostLen
		putInt32(data[off:off+4], int32(lc.LinkID))
		putInt32(data[off+4:off+8], int32(lc.Cost))
	}

	return data
}

func DecodeCircuitDB(data []byte) (*CircuitDB, error) {
	if len(data) < circuitHeaderLen {
		return nil, &FramingError{Phase: PhaseBootstrap, Length: len(data)}
	}

	n := int(getInt32(data[0:4]))
	if n < 0 || n > MaxLinks {
		return nil, fmt.Errorf("circuit DB: invalid link count %d", n)
	}

	if len(data) != circuitHeaderLen+n*linkCostLen {
		return nil, &FramingError{Phase: PhaseBootstrap, Length: len(data)}
	}

	db := &CircuitDB{Links: make([]LinkCost, n)}
	for i := range db.Links {
		off := circuitHeaderLen + i*linkCostLen
		db.Links[i] = LinkCost{
			LinkID: common.LinkID(getInt32(data[off : off+4])),
			Cost:   common.Cost(getInt32(data[off+4 : off+8])),
		}

		if db.Links[i].Cost < 0 {
			return nil, fmt.Errorf("circuit DB: link %d has negative cost %d", db.Links[i].LinkID, db.Links[i].Cost)
		}
	}

	return db, nil
}

// Decode decodes a steady-state datagram. The PDU type is determined by length alone.
func Decode(data []byte) (Packet, error) {
	switch len(data) {
	case HelloLen:
		return decodeHello(data), nil
	case LSPDULen:
		return decodeLSPDU(data), nil
	default:
		return nil, &FramingError{Phase: PhaseSteady, Length: len(data)}
	}
}
