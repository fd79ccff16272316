// Package linktest builds wire frames for tests.
package linktest

import "github.com/robotalks/imulink/pkg/link"

// Frame returns the wire bytes of a frame, both sync bytes included.
// typ is a raw byte so frames with unknown types can be produced.
func Frame(typ byte, seq byte, payload []byte) []byte {
	header := []byte{link.SyncByte2, typ, byte(len(payload)), seq}
	header = append(header, link.HeaderChecksum(header))
	crc := link.PayloadChecksum(payload)
	out := make([]byte, 0, 1+len(header)+link.TrailerLen+len(payload))
	out = append(out, link.SyncByte1)
	out = append(out, header...)
	out = append(out, byte(crc>>8), byte(crc))
	return append(out, payload...)
}

// Split cuts data into chunks of at most size bytes.
func Split(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > size {
		chunks = append(chunks, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}

// Noise returns n deterministic bytes which never contain the first
// sync byte, so they cannot start a frame.
func Noise(seed, n int) []byte {
	out := make([]byte, n)
	x := uint32(seed)*2654435761 + 1
	for i := range out {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b := byte(x)
		if b == link.SyncByte1 {
			b = 0
		}
		out[i] = b
	}
	return out
}
