// Package link owns the serial connection to the display board.
package link

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	BaudRate    = 115200
	ReadTimeout = 100 * time.Millisecond
)

// Port is an open serial handle. Any Write error means the device is gone.
type Port interface {
	Write(p []byte) (int, error)
	Close() error
}

// Opener opens serial ports by name.
type Opener interface {
	Open(name string) (Port, error)
}

// Serial opens real ports at 115200 8N1.
type Serial struct{}

func (Serial) Open(name string) (Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return p, nil
}

// WriteLine sends payload followed by a newline in a single write.
func WriteLine(p Port, payload []byte) error {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, payload...)
	buf = append(buf, '\n')
	n, err := p.Write(buf)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(buf))
	}
	return nil
}
