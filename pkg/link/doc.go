// Package link decodes the IMU serial link protocol.
package link

// The device streams frames over a serial port:
//
//	0xFD 0xFC | type | len | seq | crc8 | crc16 (2) | payload (len)
//
// crc8 is CRC-8/MAXIM over the 5 bytes starting at 0xFC, so the check over
// those bytes including crc8 itself yields 0. crc16 is CRC-16/XMODEM run
// over the payload followed by the two trailer bytes, also yielding 0.
//
// A Reader forwards raw chunks from the transport, a Decoder reassembles
// them into validated Packets using a Parser. Any validation failure skips
// exactly one byte and restarts the search for a sync marker, so a real
// frame starting inside a corrupted one is never lost.
//
// Producer: IMU/AHRS device firmware
// Consumer: interp.Interpreter
