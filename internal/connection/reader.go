// internal/connection/reader.go
package connection

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/probe-harvester/internal/packet"
)

// reader owns the read side of the device and the resync buffer.
// It is only ever touched by the reader goroutine.
type reader struct {
	port io.Reader

	staleAfter time.Duration
	heartbeat  time.Duration
	interval   time.Duration

	buf      []byte
	scratch  []byte
	lastRead time.Time
	lastBeat time.Time

	// emit delivers one event; false means the reader was cancelled.
	emit func(Event) bool
}

func newReader(port io.Reader, cfg Config, emit func(Event) bool) *reader {
	now := time.Now()
	return &reader{
		port:       port,
		staleAfter: cfg.StaleAfter,
		heartbeat:  cfg.Heartbeat,
		interval:   cfg.LoopInterval,
		buf:        make([]byte, 0, 2*packet.Size),
		scratch:    make([]byte, cfg.ReadBufferSize),
		lastRead:   now,
		lastBeat:   now,
		emit:       emit,
	}
}

// run loops step until ctx is cancelled.
func (r *reader) run(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if !r.step(time.Now()) {
			return nil
		}

		timer.Reset(r.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// step performs one reader iteration. It returns false once emit reports
// cancellation.
func (r *reader) step(now time.Time) bool {
	// 1. stale partial frame
	if len(r.buf) > 0 && now.Sub(r.lastRead) > r.staleAfter {
		data := make([]byte, len(r.buf))
		copy(data, r.buf)
		r.buf = r.buf[:0]
		if !r.emit(Event{Kind: EventBadData, Data: data}) {
			return false
		}
	}

	// 2. read whatever is available
	n, err := r.port.Read(r.scratch)
	if n > 0 {
		r.buf = append(r.buf, r.scratch[:n]...)
		r.lastRead = now
	}
	if err != nil && !isTimeout(err) {
		if !r.emit(Event{Kind: EventReadError, Err: err}) {
			return false
		}
	}

	// 3. whole frames only; no byte-level realignment
	for len(r.buf) >= packet.Size {
		p, _ := packet.FromBytes(r.buf[:packet.Size])
		rest := copy(r.buf, r.buf[packet.Size:])
		r.buf = r.buf[:rest]

		ev := Event{Kind: EventInvalidPacket, Packet: p}
		if p.ChecksumValid() {
			ev.Kind = EventPacket
		}
		if !r.emit(ev) {
			return false
		}
	}

	// 4. liveness tick
	if r.heartbeat > 0 && now.Sub(r.lastBeat) >= r.heartbeat {
		r.lastBeat = now
		if !r.emit(Event{Kind: EventHeartbeat}) {
			return false
		}
	}

	return true
}

// pending reports the number of buffered, unframed bytes.
func (r *reader) pending() int {
	return len(r.buf)
}

// isTimeout reports read errors that only mean "nothing available yet".
func isTimeout(err error) bool {
	if errors.Is(err, serial.ErrTimeout) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.EAGAIN) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
