package link

import (
	"github.com/sigurn/crc16"
	"github.com/sigurn/crc8"
)

var (
	headerTable  = crc8.MakeTable(crc8.CRC8_MAXIM)
	payloadTable = crc16.MakeTable(crc16.CRC16_XMODEM)
)

// HeaderChecksum computes CRC-8/MAXIM.
func HeaderChecksum(data []byte) uint8 {
	return crc8.Checksum(data, headerTable)
}

// PayloadChecksum computes CRC-16/XMODEM over all parts in order.
func PayloadChecksum(parts ...[]byte) uint16 {
	crc := crc16.Init(payloadTable)
	for _, part := range parts {
		crc = crc16.Update(crc, part, payloadTable)
	}
	return crc16.Complete(crc, payloadTable)
}

func headerValid(header []byte) bool {
	return HeaderChecksum(header) == 0
}

// payloadValid runs the checksum over the payload and then the trailer
// bytes which carry the device's checksum.
func payloadValid(payload, trailer []byte) bool {
	return PayloadChecksum(payload, trailer) == 0
}
