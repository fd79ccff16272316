package link

// buildFrame returns the wire bytes of a frame, both sync bytes included.
// typ is a raw byte so frames with unknown types can be produced.
func buildFrame(typ byte, seq byte, payload []byte) []byte {
	header := []byte{SyncByte2, typ, byte(len(payload)), seq}
	header = append(header, HeaderChecksum(header))
	crc := PayloadChecksum(payload)
	out := make([]byte, 0, 1+len(header)+TrailerLen+len(payload))
	out = append(out, SyncByte1)
	out = append(out, header...)
	out = append(out, byte(crc>>8), byte(crc))
	return append(out, payload...)
}

func splitChunks(data []byte, size int) [][]byte {
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

// noiseBytes never contain the first sync byte.
func noiseBytes(seed, n int) []byte {
	out := make([]byte, n)
	x := uint32(seed)*2654435761 + 1
	for i := range out {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b := byte(x)
		if b == SyncByte1 {
			b = 0
		}
		out[i] = b
	}
	return out
}
