// internal/connection/fakeport_test.go
package connection

import (
	"sync"

	"github.com/goburrow/serial"

	"github.com/tamzrod/probe-harvester/internal/packet"
)

// fakePort is an in-memory device. Reads with nothing queued return the
// serial timeout error, like a real port with a short read timeout.
type fakePort struct {
	mu sync.Mutex

	in      []byte
	readErr error
	panicOn bool
	// panicWhenDrained makes the device vanish once queued input is read
	panicWhenDrained bool

	written  []byte
	writeErr error
	closed   bool
}

func (f *fakePort) feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = append(f.in, b...)
}

func (f *fakePort) failNextRead(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakePort) Read(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panicOn {
		panic("fake port: device vanished")
	}
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		return 0, err
	}
	if len(f.in) == 0 {
		if f.panicWhenDrained {
			panic("fake port: device vanished")
		}
		return 0, serial.ErrTimeout
	}
	n := copy(b, f.in)
	f.in = f.in[n:]
	return n, nil
}

func (f *fakePort) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written = append(f.written, b...)
	return len(b), nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePort) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakePort) writtenBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.written))
	copy(out, f.written)
	return out
}

// frame builds one 128-byte frame tagged by serial; valid controls the checksum.
func frame(serialNo string, valid bool) []byte {
	var p packet.Packet
	p.SetCommandID(packet.RetrieveInfo)
	p.SetVersion(1)
	p.SetSerialNumber(serialNo)
	_ = p.SetSensor1(20)
	p.Seal()
	if !valid {
		p.SetChecksum(p.Checksum() ^ 0xFFFF)
	}
	return append([]byte(nil), p.Bytes()...)
}
