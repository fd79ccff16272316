package link

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderCRC indicates the 5-byte header failed CRC-8 validation.
	ErrHeaderCRC = errors.New("header crc mismatch")
	// ErrPayloadCRC indicates payload and trailer failed CRC-16 validation.
	ErrPayloadCRC = errors.New("payload crc mismatch")
)

// UnknownTypeError indicates a header declaring a packet type
// outside of the known set.
type UnknownTypeError struct {
	Type byte
}

// Error implements error.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown packet type 0x%02x", e.Type)
}

// FrameError reports a rejected candidate frame. The parser has already
// skipped one byte and resumed searching when it is returned.
type FrameError struct {
	Err    error
	Header []byte
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("%v, header % 02x", e.Err, e.Header)
}

// Unwrap returns the underlying reason.
func (e *FrameError) Unwrap() error {
	return e.Err
}
