package link

// buffer accumulates stream bytes. Bytes are appended at the tail and
// consumed from the head; the consumed prefix is reclaimed lazily when
// appending so dropping one byte is O(1).
type buffer struct {
	data []byte
	head int
}

func (b *buffer) Len() int {
	return len(b.data) - b.head
}

func (b *buffer) Bytes() []byte {
	return b.data[b.head:]
}

func (b *buffer) Append(p []byte) {
	if b.head > 0 && b.head >= len(b.data)/2 {
		n := copy(b.data, b.data[b.head:])
		b.data, b.head = b.data[:n], 0
	}
	b.data = append(b.data, p...)
}

func (b *buffer) Discard(n int) {
	b.head += n
	if b.head >= len(b.data) {
		b.Reset()
	}
}

// Take removes n bytes from the head and returns them in a new slice.
func (b *buffer) Take(n int) []byte {
	out := make([]byte, n)
	copy(out, b.data[b.head:b.head+n])
	b.Discard(n)
	return out
}

func (b *buffer) Reset() {
	b.data, b.head = b.data[:0], 0
}
