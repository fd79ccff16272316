package msgs

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/robotalks/imulink/pkg/link"
)

// SizeError indicates a payload whose length differs from the record size.
type SizeError struct {
	Type link.PacketType
	Got  int
	Want int
}

// Error implements error.
func (e *SizeError) Error() string {
	return fmt.Sprintf("%s payload size %d does not match record size %d", e.Type, e.Got, e.Want)
}

// Decoder decodes payloads of one packet type.
type Decoder struct {
	Size   int
	Decode func(payload []byte) Record
}

// DecodePayload checks the size and decodes.
func (d Decoder) DecodePayload(typ link.PacketType, payload []byte) (Record, error) {
	if len(payload) != d.Size {
		return nil, &SizeError{Type: typ, Got: len(payload), Want: d.Size}
	}
	return d.Decode(payload), nil
}

// Decoders maps packet types to decoders.
type Decoders map[link.PacketType]Decoder

// DefaultDecoders returns decoders for all records defined here.
func DefaultDecoders() Decoders {
	return Decoders{
		link.TypeAHRS: {Size: AHRSSize, Decode: func(p []byte) Record { return DecodeAHRS(p) }},
		link.TypeIMU:  {Size: IMUSize, Decode: func(p []byte) Record { return DecodeIMU(p) }},
	}
}

type fieldReader struct {
	data []byte
	off  int
}

func (r *fieldReader) f32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

func (r *fieldReader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// DecodeAHRS decodes an AHRS payload of exactly AHRSSize bytes.
func DecodeAHRS(payload []byte) *AHRS {
	r := fieldReader{data: payload[:AHRSSize]}
	return &AHRS{
		RollSpeed:    r.f32(),
		PitchSpeed:   r.f32(),
		HeadingSpeed: r.f32(),
		Roll:         r.f32(),
		Pitch:        r.f32(),
		Heading:      r.f32(),
		Q1:           r.f32(),
		Q2:           r.f32(),
		Q3:           r.f32(),
		Q4:           r.f32(),
		Timestamp:    r.u64(),
	}
}

// DecodeIMU decodes an IMU payload of exactly IMUSize bytes.
func DecodeIMU(payload []byte) *IMU {
	r := fieldReader{data: payload[:IMUSize]}
	return &IMU{
		GyroscopeX:          r.f32(),
		GyroscopeY:          r.f32(),
		GyroscopeZ:          r.f32(),
		AccelerometerX:      r.f32(),
		AccelerometerY:      r.f32(),
		AccelerometerZ:      r.f32(),
		MagnetometerX:       r.f32(),
		MagnetometerY:       r.f32(),
		MagnetometerZ:       r.f32(),
		Temperature:         r.f32(),
		Pressure:            r.f32(),
		PressureTemperature: r.f32(),
		Timestamp:           r.u64(),
	}
}
