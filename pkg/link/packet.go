package link

import "fmt"

// PacketType is the type declared in a frame header.
type PacketType byte

// Known packet types.
const (
	TypeNonsense PacketType = 0x00
	TypeIMU      PacketType = 0x40
	TypeAHRS     PacketType = 0x41
	TypeInsGps   PacketType = 0x42
	TypeRaw      PacketType = 0x58
)

// String implements fmt.Stringer.
func (t PacketType) String() string {
	switch t {
	case TypeNonsense:
		return "Nonsense"
	case TypeIMU:
		return "IMU"
	case TypeAHRS:
		return "AHRS"
	case TypeInsGps:
		return "InsGps"
	case TypeRaw:
		return "Raw"
	}
	return fmt.Sprintf("PacketType(0x%02x)", byte(t))
}

// ParsePacketType validates a declared type byte.
func ParsePacketType(b byte) (PacketType, error) {
	switch t := PacketType(b); t {
	case TypeNonsense, TypeIMU, TypeAHRS, TypeInsGps, TypeRaw:
		return t, nil
	}
	return TypeNonsense, &UnknownTypeError{Type: b}
}

// Frame layout constants. Offsets are relative to the second sync byte,
// which is where a Packet's Data starts.
const (
	SyncByte1 byte = 0xfd
	SyncByte2 byte = 0xfc

	HeaderLen     = 5
	TypeOffset    = 1
	LenOffset     = 2
	SeqOffset     = 3
	TrailerOffset = 5
	TrailerLen    = 2
	PayloadOffset = TrailerOffset + TrailerLen

	// frameTail is how many bytes past the end of the frame must be
	// buffered before the payload is validated.
	frameTail = 1
)

// Packet is a frame which passed both checksums.
type Packet struct {
	Type PacketType
	// Data holds the frame from the second sync byte through the end
	// of the payload.
	Data []byte
}

// Len returns the declared payload length.
func (p *Packet) Len() int {
	return int(p.Data[LenOffset])
}

// Seq returns the device's rolling packet counter.
func (p *Packet) Seq() byte {
	return p.Data[SeqOffset]
}

// Payload returns the payload bytes.
func (p *Packet) Payload() []byte {
	return p.Data[PayloadOffset:]
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	return fmt.Sprintf("%s seq=%d len=%d", p.Type, p.Seq(), p.Len())
}
