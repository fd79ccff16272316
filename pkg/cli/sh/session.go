package sh

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robotalks/imulink/pkg/interp"
	"github.com/robotalks/imulink/pkg/link"
	"github.com/robotalks/imulink/pkg/msgs"
)

// Event is an outcome of feeding bytes into a Session.
type Event struct {
	Packet *link.Packet
	// Record is nil if the packet type has no decoder or the payload
	// size is wrong.
	Record msgs.Record
	// Err is set when a candidate frame is rejected.
	Err error
}

// Session decodes bytes offline, keeping partial frames between feeds.
type Session struct {
	parser link.Parser
	interp *interp.Interpreter
}

// NewSession creates a Session.
func NewSession() *Session {
	return &Session{interp: interp.New(nil, nil)}
}

// Feed decodes a chunk.
func (s *Session) Feed(chunk []byte) []Event {
	s.parser.Feed(chunk)
	var events []Event
	for {
		pr := s.parser.Next()
		if pr.NeedMore() {
			return events
		}
		if pr.Err != nil {
			events = append(events, Event{Err: pr.Err})
			continue
		}
		events = append(events, Event{
			Packet: pr.Packet,
			Record: s.interp.Handle(context.Background(), pr.Packet),
		})
	}
}

// Replay decodes everything from r in DefaultChunkSize chunks.
func (s *Session) Replay(r io.Reader, fn func(Event)) error {
	buf := make([]byte, link.DefaultChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, ev := range s.Feed(buf[:n]) {
				fn(ev)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Stats returns the parser counters.
func (s *Session) Stats() link.Stats {
	return s.parser.Stats()
}

// State returns the parser state and buffered bytes.
func (s *Session) State() (link.State, int) {
	return s.parser.State(), s.parser.Buffered()
}

// ParseHex parses hex bytes, separators (space, colon, comma) ignored.
func ParseHex(args ...string) ([]byte, error) {
	str := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', ',', '\t':
			return -1
		}
		return r
	}, strings.Join(args, ""))
	str = strings.TrimPrefix(strings.ToLower(str), "0x")
	data, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}
