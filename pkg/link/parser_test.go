package link

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type parseOutcome struct {
	packets []*Packet
	errs    []error
}

func parseChunks(p *Parser, chunks ...[]byte) (out parseOutcome) {
	for _, chunk := range chunks {
		p.Feed(chunk)
		for {
			pr := p.Next()
			if pr.NeedMore() {
				break
			}
			if pr.Err != nil {
				out.errs = append(out.errs, pr.Err)
			} else {
				out.packets = append(out.packets, pr.Packet)
			}
		}
	}
	return
}

func testPayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i*7 + 1)
	}
	return payload
}

func TestParserSingleFrame(t *testing.T) {
	payload := testPayload(12)
	frame := buildFrame(byte(TypeAHRS), 9, payload)

	var p Parser
	out := parseChunks(&p, frame, []byte{0})
	require.Empty(t, out.errs)
	require.Len(t, out.packets, 1)
	pkt := out.packets[0]
	require.Equal(t, TypeAHRS, pkt.Type)
	require.Equal(t, frame[1:], pkt.Data)
	require.Equal(t, payload, pkt.Payload())
	require.Equal(t, byte(9), pkt.Seq())
	require.Equal(t, 12, pkt.Len())
	require.Equal(t, StateAwaitingHeader, p.State())
	require.Equal(t, 1, p.Buffered())
}

func TestParserWaitsForByteAfterFrame(t *testing.T) {
	frame := buildFrame(byte(TypeIMU), 1, testPayload(4))

	var p Parser
	out := parseChunks(&p, frame)
	require.Empty(t, out.packets)
	require.Empty(t, out.errs)
	require.Equal(t, StatePayloadPending, p.State())

	out = parseChunks(&p, []byte{SyncByte1})
	require.Len(t, out.packets, 1)
	require.Equal(t, TypeIMU, out.packets[0].Type)
}

func TestParserIncompleteIsNotCorruption(t *testing.T) {
	frame := buildFrame(byte(TypeAHRS), 1, testPayload(8))
	testCases := []struct {
		n     int
		state State
	}{
		{1, StateAwaitingHeader},
		{2, StateHeaderPending},
		{5, StateHeaderPending},
		{6, StatePayloadPending},
		{len(frame), StatePayloadPending},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d bytes", tc.n), func(t *testing.T) {
			var p Parser
			out := parseChunks(&p, frame[:tc.n])
			require.Empty(t, out.packets)
			require.Empty(t, out.errs)
			require.Equal(t, tc.state, p.State())
		})
	}
}

func TestParserResyncChunkIndependent(t *testing.T) {
	payload := testPayload(48)
	frame := buildFrame(byte(TypeAHRS), 3, payload)
	var stream []byte
	stream = append(stream, noiseBytes(1, 37)...)
	stream = append(stream, frame...)
	stream = append(stream, noiseBytes(2, 21)...)

	for size := 1; size <= len(stream); size++ {
		var p Parser
		out := parseChunks(&p, splitChunks(stream, size)...)
		require.Lenf(t, out.packets, 1, "chunk size %d", size)
		require.Equal(t, TypeAHRS, out.packets[0].Type)
		require.Equal(t, payload, out.packets[0].Payload())
	}
}

func TestParserRandomChunking(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for n := 0; n < 500; n++ {
		payload := testPayload(rnd.Intn(64))
		frame := buildFrame(byte(TypeIMU), byte(n), payload)
		var stream []byte
		stream = append(stream, noiseBytes(n, rnd.Intn(40))...)
		stream = append(stream, frame...)
		stream = append(stream, noiseBytes(n+1, 1+rnd.Intn(40))...)

		var chunks [][]byte
		for rest := stream; len(rest) > 0; {
			size := 1 + rnd.Intn(len(rest))
			chunks, rest = append(chunks, rest[:size]), rest[size:]
		}
		var p Parser
		out := parseChunks(&p, chunks...)
		require.Lenf(t, out.packets, 1, "stream %d", n)
		require.Equal(t, frame[1:], out.packets[0].Data)
	}
}

func TestParserSplitMatchesWhole(t *testing.T) {
	frame := buildFrame(byte(TypeRaw), 5, testPayload(20))
	stream := append(append([]byte(nil), frame...), 0)

	var whole Parser
	expected := parseChunks(&whole, stream)
	require.Len(t, expected.packets, 1)

	// irregular split points
	for step := 1; step < len(stream); step++ {
		var chunks [][]byte
		for i := 0; i < len(stream); {
			n := 1 + (i*step)%5
			if i+n > len(stream) {
				n = len(stream) - i
			}
			chunks = append(chunks, stream[i:i+n])
			i += n
		}
		var p Parser
		out := parseChunks(&p, chunks...)
		require.Equal(t, expected.packets, out.packets)
	}
}

func TestParserManyFramesInOneChunk(t *testing.T) {
	var stream []byte
	for seq := byte(0); seq < 5; seq++ {
		stream = append(stream, buildFrame(byte(TypeIMU), seq, testPayload(int(seq)+1))...)
	}
	stream = append(stream, 0)

	var p Parser
	out := parseChunks(&p, stream)
	require.Empty(t, out.errs)
	require.Len(t, out.packets, 5)
	for n, pkt := range out.packets {
		require.Equal(t, byte(n), pkt.Seq())
		require.Len(t, pkt.Payload(), n+1)
	}
	require.Equal(t, uint64(5), p.Stats().Frames)
}

func TestParserHeaderBitFlip(t *testing.T) {
	frame := buildFrame(byte(TypeAHRS), 2, testPayload(10))
	// wire bytes 2..5 are type, len, seq and crc8
	for idx := 2; idx <= 5; idx++ {
		for bit := 0; bit < 8; bit++ {
			t.Run(fmt.Sprintf("byte %d bit %d", idx, bit), func(t *testing.T) {
				corrupted := append([]byte(nil), frame...)
				corrupted[idx] ^= 1 << uint(bit)

				var p Parser
				p.Feed(corrupted)
				pr := p.Next()
				require.Nil(t, pr.Packet)
				require.Error(t, pr.Err)
				require.True(t, errors.Is(pr.Err, ErrHeaderCRC))
				require.Equal(t, StateAwaitingHeader, p.State())
				// resumes right after the retained sync byte
				require.Equal(t, len(corrupted)-2, p.Buffered())

				out := parseChunks(&p, []byte{0})
				require.Empty(t, out.packets)
			})
		}
	}
}

func TestParserPayloadBitFlip(t *testing.T) {
	frame := buildFrame(byte(TypeAHRS), 2, testPayload(10))
	for idx := 1 + TrailerOffset; idx < len(frame); idx++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), frame...)
			corrupted[idx] ^= 1 << uint(bit)

			var p Parser
			out := parseChunks(&p, corrupted, []byte{0})
			require.Emptyf(t, out.packets, "byte %d bit %d", idx, bit)
			require.NotEmpty(t, out.errs)
			require.True(t, errors.Is(out.errs[0], ErrPayloadCRC))
			require.Equal(t, uint64(1), p.Stats().PayloadErrors)
		}
	}
}

func TestParserRecoversFrameAfterCorruptOne(t *testing.T) {
	bad := buildFrame(byte(TypeAHRS), 1, testPayload(10))
	bad[len(bad)-1] ^= 0x10
	good := buildFrame(byte(TypeIMU), 2, testPayload(6))
	stream := append(append(append([]byte(nil), bad...), good...), 0)

	for size := 1; size <= len(stream); size++ {
		var p Parser
		out := parseChunks(&p, splitChunks(stream, size)...)
		require.Len(t, out.packets, 1)
		require.Equal(t, TypeIMU, out.packets[0].Type)
		require.Equal(t, byte(2), out.packets[0].Seq())
	}
}

func TestParserEmbeddedMarker(t *testing.T) {
	payload := []byte{SyncByte1, SyncByte2, 0x41, 0x30, 0x01, 0x02, 0x03, 0x04}
	require.NotZero(t, HeaderChecksum(payload[1:6]), "embedded header must not validate")

	t.Run("valid outer frame", func(t *testing.T) {
		var p Parser
		out := parseChunks(&p, buildFrame(byte(TypeRaw), 1, payload), []byte{0})
		require.Len(t, out.packets, 1)
		require.Equal(t, payload, out.packets[0].Payload())
	})

	t.Run("corrupt outer frame", func(t *testing.T) {
		frame := buildFrame(byte(TypeRaw), 1, payload)
		frame[6] ^= 0xff // trailer
		var p Parser
		out := parseChunks(&p, frame, []byte{0, 0})
		require.Empty(t, out.packets)
		require.Len(t, out.errs, 2)
		require.True(t, errors.Is(out.errs[0], ErrPayloadCRC))
		require.True(t, errors.Is(out.errs[1], ErrHeaderCRC))
	})
}

func TestParserUnknownType(t *testing.T) {
	frame := buildFrame(0x43, 1, testPayload(4))
	var p Parser
	p.Feed(append(frame, 0))
	pr := p.Next()
	require.Nil(t, pr.Packet)
	var typeErr *UnknownTypeError
	require.True(t, errors.As(pr.Err, &typeErr))
	require.Equal(t, byte(0x43), typeErr.Type)
	require.Equal(t, len(frame)-1, p.Buffered())

	out := parseChunks(&p, nil)
	require.Empty(t, out.packets)
	require.Equal(t, uint64(1), p.Stats().TypeErrors)
}

func TestParserKnownTypes(t *testing.T) {
	for _, typ := range []PacketType{TypeNonsense, TypeIMU, TypeAHRS, TypeInsGps, TypeRaw} {
		var p Parser
		out := parseChunks(&p, buildFrame(byte(typ), 0, testPayload(3)), []byte{0})
		require.Len(t, out.packets, 1, typ.String())
		require.Equal(t, typ, out.packets[0].Type)
	}
}

func TestParserEmptyPayload(t *testing.T) {
	var p Parser
	out := parseChunks(&p, buildFrame(byte(TypeInsGps), 4, nil), []byte{0})
	require.Len(t, out.packets, 1)
	require.Empty(t, out.packets[0].Payload())
}

func TestParserStatsAndReset(t *testing.T) {
	var p Parser
	noise := noiseBytes(3, 10)
	frame := buildFrame(byte(TypeAHRS), 0, testPayload(2))
	parseChunks(&p, noise, frame, []byte{0})
	stats := p.Stats()
	require.Equal(t, uint64(len(noise)+len(frame)+1), stats.Bytes)
	require.Equal(t, uint64(1), stats.Frames)
	require.Equal(t, uint64(len(noise)), stats.Skipped)

	p.Feed(frame[:3])
	p.Next()
	require.Equal(t, StateHeaderPending, p.State())
	p.Reset()
	require.Equal(t, StateAwaitingHeader, p.State())
	require.Zero(t, p.Buffered())
	require.Equal(t, uint64(1), p.Stats().Frames)
}

func TestPacketType(t *testing.T) {
	typ, err := ParsePacketType(0x41)
	require.NoError(t, err)
	require.Equal(t, TypeAHRS, typ)
	require.Equal(t, "AHRS", typ.String())
	_, err = ParsePacketType(0x99)
	require.EqualError(t, err, "unknown packet type 0x99")
	require.Equal(t, "PacketType(0x99)", PacketType(0x99).String())
}
