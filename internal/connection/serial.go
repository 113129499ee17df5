// internal/connection/serial.go
package connection

import (
	"time"

	"github.com/goburrow/serial"
)

// SerialConfig is the line setup used by OpenSerial.
type SerialConfig struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      string // "N", "E" or "O"
	ReadTimeout time.Duration
}

// OpenSerial returns an Opener backed by a real serial port.
// ReadTimeout keeps reads short so staleness detection is never stalled.
func OpenSerial(sc SerialConfig) Opener {
	return func(path string) (Port, error) {
		p, err := serial.Open(&serial.Config{
			Address:  path,
			BaudRate: sc.BaudRate,
			DataBits: sc.DataBits,
			StopBits: sc.StopBits,
			Parity:   sc.Parity,
			Timeout:  sc.ReadTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
