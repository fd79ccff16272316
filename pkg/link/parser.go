package link

import "sync/atomic"

// State is the frame synchronization state.
type State int

const (
	// StateAwaitingHeader searches for the sync marker.
	StateAwaitingHeader State = iota
	// StateHeaderPending waits for and validates the 5-byte header.
	StateHeaderPending
	// StatePayloadPending waits for and validates payload and trailer.
	StatePayloadPending
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "AwaitingHeader"
	case StateHeaderPending:
		return "HeaderPending"
	case StatePayloadPending:
		return "PayloadPending"
	}
	return "Unknown"
}

// ParseResult is the result of one Next call.
type ParseResult struct {
	State  State
	Packet *Packet
	// Err is a *FrameError when a candidate frame was rejected.
	Err error
}

// NeedMore indicates the buffered bytes are exhausted.
func (r ParseResult) NeedMore() bool {
	return r.Packet == nil && r.Err == nil
}

// Stats are cumulative parser counters.
type Stats struct {
	Bytes         uint64
	Frames        uint64
	Skipped       uint64
	HeaderErrors  uint64
	PayloadErrors uint64
	TypeErrors    uint64
}

type counters struct {
	bytes         atomic.Uint64
	frames        atomic.Uint64
	skipped       atomic.Uint64
	headerErrors  atomic.Uint64
	payloadErrors atomic.Uint64
	typeErrors    atomic.Uint64
}

// Parser reassembles frames from a byte stream. It is not safe for
// concurrent use except for Stats.
type Parser struct {
	buf     buffer
	state   State
	pktType PacketType
	pktLen  int
	stats   counters
}

// State gets the current synchronization state.
func (p *Parser) State() State {
	return p.state
}

// Buffered returns the number of bytes not consumed yet.
func (p *Parser) Buffered() int {
	return p.buf.Len()
}

// Stats returns a snapshot of the counters.
func (p *Parser) Stats() Stats {
	return Stats{
		Bytes:         p.stats.bytes.Load(),
		Frames:        p.stats.frames.Load(),
		Skipped:       p.stats.skipped.Load(),
		HeaderErrors:  p.stats.headerErrors.Load(),
		PayloadErrors: p.stats.payloadErrors.Load(),
		TypeErrors:    p.stats.typeErrors.Load(),
	}
}

// Reset drops buffered bytes and restarts synchronization.
// Counters are kept.
func (p *Parser) Reset() {
	p.buf.Reset()
	p.state = StateAwaitingHeader
	p.pktType, p.pktLen = TypeNonsense, 0
}

// Feed appends a chunk read from the stream.
func (p *Parser) Feed(chunk []byte) {
	p.buf.Append(chunk)
	p.stats.bytes.Add(uint64(len(chunk)))
}

// Next advances the state machine until a packet is complete, a candidate
// frame is rejected, or more bytes are needed. Call it repeatedly after
// Feed until NeedMore reports true, a chunk may hold many frames.
func (p *Parser) Next() ParseResult {
	for {
		data := p.buf.Bytes()
		switch p.state {
		case StateAwaitingHeader:
			if len(data) < 2 {
				return ParseResult{State: p.state}
			}
			p.buf.Discard(1)
			if data[0] == SyncByte1 && data[1] == SyncByte2 {
				p.state = StateHeaderPending
			} else {
				p.stats.skipped.Add(1)
			}
		case StateHeaderPending:
			if len(data) < HeaderLen {
				return ParseResult{State: p.state}
			}
			header := data[:HeaderLen]
			if !headerValid(header) {
				p.stats.headerErrors.Add(1)
				return p.resync(ErrHeaderCRC, header)
			}
			typ, err := ParsePacketType(header[TypeOffset])
			if err != nil {
				p.stats.typeErrors.Add(1)
				return p.resync(err, header)
			}
			p.pktType, p.pktLen = typ, int(header[LenOffset])
			p.state = StatePayloadPending
		case StatePayloadPending:
			frameLen := PayloadOffset + p.pktLen
			if len(data) < frameLen+frameTail {
				return ParseResult{State: p.state}
			}
			if !payloadValid(data[PayloadOffset:frameLen], data[TrailerOffset:PayloadOffset]) {
				p.stats.payloadErrors.Add(1)
				return p.resync(ErrPayloadCRC, data[:HeaderLen])
			}
			pkt := &Packet{Type: p.pktType, Data: p.buf.Take(frameLen)}
			p.state = StateAwaitingHeader
			p.pktType, p.pktLen = TypeNonsense, 0
			p.stats.frames.Add(1)
			return ParseResult{State: p.state, Packet: pkt}
		}
	}
}

// resync drops one byte and restarts searching for the sync marker.
func (p *Parser) resync(reason error, header []byte) ParseResult {
	ferr := &FrameError{Err: reason, Header: append([]byte(nil), header...)}
	p.buf.Discard(1)
	p.stats.skipped.Add(1)
	p.state = StateAwaitingHeader
	p.pktType, p.pktLen = TypeNonsense, 0
	return ParseResult{State: p.state, Err: ferr}
}
