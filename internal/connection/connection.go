// internal/connection/connection.go
package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/probe-harvester/internal/packet"
	"github.com/tamzrod/probe-harvester/internal/supervisor"
)

var (
	// ErrNotOK is returned once the reader goroutine has stopped.
	ErrNotOK = errors.New("connection: worker has stopped")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("connection: closed")
)

// Port is an opened byte-oriented device. Reads must return within a short
// timeout when nothing is available.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens the device at path.
type Opener func(path string) (Port, error)

const (
	DefaultHeartbeat      = 1 * time.Second
	DefaultStaleAfter     = 4 * time.Second
	DefaultLoopInterval   = 250 * time.Millisecond
	DefaultReadBufferSize = 1024
	DefaultEventBuffer    = 64
)

// Config is the runtime config of one connection.
type Config struct {
	Path string
	Open Opener

	// Heartbeat <= 0 disables heartbeat events. The config layer maps a
	// negative heartbeat_ms here; heartbeat_ms 0 is defaulted before that.
	Heartbeat      time.Duration
	StaleAfter     time.Duration
	LoopInterval   time.Duration
	ReadBufferSize int
	EventBuffer    int

	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.LoopInterval <= 0 {
		c.LoopInterval = DefaultLoopInterval
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = DefaultEventBuffer
	}
}

// Connection turns a device into a stream of Events.
// Reads happen on one supervised goroutine; Send writes synchronously from
// the caller's goroutine.
type Connection struct {
	id   string
	path string
	port Port
	log  zerolog.Logger

	events chan Event
	cancel context.CancelFunc
	worker *supervisor.Handle

	writeMu sync.Mutex

	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool
	closeErr  error
}

// Open opens the device and starts the reader. It fails only if the device
// cannot be opened.
func Open(cfg Config) (*Connection, error) {
	if cfg.Path == "" {
		return nil, errors.New("connection: device path required")
	}
	if cfg.Open == nil {
		return nil, errors.New("connection: opener required")
	}
	cfg.applyDefaults()

	port, err := cfg.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("connection: open %s: %w", cfg.Path, err)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		id:     id,
		path:   cfg.Path,
		port:   port,
		log:    cfg.Logger.With().Str("conn_id", id).Str("path", cfg.Path).Logger(),
		events: make(chan Event, cfg.EventBuffer),
		cancel: cancel,
	}

	r := newReader(port, cfg, func(ev Event) bool {
		select {
		case c.events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	})

	c.worker = supervisor.Go("reader", func() error {
		c.log.Debug().Msg("reader started")
		defer c.log.Debug().Msg("reader stopped")
		return r.run(ctx)
	})

	c.log.Info().Msg("connection opened")
	return c, nil
}

func (c *Connection) ID() string   { return c.id }
func (c *Connection) Path() string { return c.path }

// OK reports false once the reader goroutine has finished, normally or not.
func (c *Connection) OK() bool {
	return c.worker.Running()
}

// WorkerStatus exposes the reader's supervisor status.
func (c *Connection) WorkerStatus() supervisor.Status {
	return c.worker.Status()
}

func (c *Connection) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

func (c *Connection) unavailable() error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := c.worker.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotOK, err)
	}
	return ErrNotOK
}

// Send writes one frame. It fails without writing if the reader has stopped.
func (c *Connection) Send(p packet.Packet) error {
	if c.isClosed() || !c.OK() {
		return c.unavailable()
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	b := p.Bytes()
	for len(b) > 0 {
		n, err := c.port.Write(b)
		if err != nil {
			return fmt.Errorf("connection: write %s: %w", c.path, err)
		}
		if n == 0 {
			return fmt.Errorf("connection: write %s: %w", c.path, io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// Wait blocks until the next event.
func (c *Connection) Wait() (Event, error) {
	return c.WaitContext(context.Background())
}

// WaitContext blocks until the next event, the reader stops, or ctx ends.
// Events queued before the reader stopped are still delivered.
func (c *Connection) WaitContext(ctx context.Context) (Event, error) {
	if c.isClosed() {
		return Event{}, ErrClosed
	}
	if ev, ok := c.poll(); ok {
		return ev, nil
	}
	if !c.OK() {
		return Event{}, c.unavailable()
	}

	select {
	case ev := <-c.events:
		return ev, nil
	case <-c.worker.Done():
		if ev, ok := c.poll(); ok {
			return ev, nil
		}
		return Event{}, c.unavailable()
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Events drains every event currently queued without blocking. It fails only
// once the reader has stopped and nothing is left to drain.
func (c *Connection) Events() ([]Event, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	var out []Event
	for {
		ev, ok := c.poll()
		if !ok {
			break
		}
		out = append(out, ev)
	}
	if len(out) == 0 && !c.OK() {
		return nil, c.unavailable()
	}
	return out, nil
}

func (c *Connection) poll() (Event, bool) {
	select {
	case ev := <-c.events:
		return ev, true
	default:
		return Event{}, false
	}
}

// Close stops the reader, joins it and closes the device. Safe to call
// more than once.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeMu.Lock()
		c.closed = true
		c.closeMu.Unlock()

		c.cancel()
		if err := c.worker.Wait(); err != nil {
			c.log.Warn().Err(err).Msg("reader finished with error")
		}
		c.closeErr = c.port.Close()
		c.log.Info().Str("worker", c.WorkerStatus().String()).Msg("connection closed")
	})
	return c.closeErr
}
