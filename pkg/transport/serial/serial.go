// Package serial opens the device's serial port.
package serial

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the device's factory setting.
const DefaultBaudRate = 115200

// Mode returns 8N1 at the given baud rate.
func Mode(baud int) *serial.Mode {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens a port in 8N1 mode. Reads block until data arrives.
func Open(port string, baud int) (serial.Port, error) {
	if port == "" {
		return nil, fmt.Errorf("serial port not specified")
	}
	p, err := serial.Open(port, Mode(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return p, nil
}

// Ports lists serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
