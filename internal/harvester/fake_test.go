// internal/harvester/fake_test.go
package harvester

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/probe-harvester/internal/connection"
	"github.com/tamzrod/probe-harvester/internal/packet"
	"github.com/tamzrod/probe-harvester/internal/store"
	"github.com/tamzrod/probe-harvester/internal/store/memory"
)

// ---- fake clock ----

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// ---- fake connection ----

type fakeConn struct {
	id   string
	path string

	mu      sync.Mutex
	events  []connection.Event
	waitErr error
	sendErr error
	sent    int
	closed  bool
}

func (f *fakeConn) ID() string   { return f.id }
func (f *fakeConn) Path() string { return f.path }

func (f *fakeConn) OK() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && f.waitErr == nil
}

func (f *fakeConn) push(evs ...connection.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evs...)
}

func (f *fakeConn) Send(packet.Packet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent++
	return nil
}

// WaitContext pops the next scripted event; with nothing scripted it blocks
// until ctx ends.
func (f *fakeConn) WaitContext(ctx context.Context) (connection.Event, error) {
	f.mu.Lock()
	if f.waitErr != nil {
		err := f.waitErr
		f.mu.Unlock()
		return connection.Event{}, err
	}
	if len(f.events) > 0 {
		ev := f.events[0]
		f.events = f.events[1:]
		f.mu.Unlock()
		return ev, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return connection.Event{}, ctx.Err()
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

// ---- fake dialer ----

type fakeDialer struct {
	mu    sync.Mutex
	paths []string
	conns []*fakeConn
	fail  error
}

func (d *fakeDialer) attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.paths)
}

func (d *fakeDialer) dial(path string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, path)
	if d.fail != nil {
		return nil, d.fail
	}
	c := &fakeConn{id: "dialed", path: path}
	d.conns = append(d.conns, c)
	return c, nil
}

// ---- helpers ----

const testPath = "/dev/ttyUSB0"

type rig struct {
	h     *Harvester
	conn  *fakeConn
	dial  *fakeDialer
	store *memory.Store
	clock *fakeClock
}

func newRig(t *testing.T) *rig {
	t.Helper()
	return newRigWith(t, nil)
}

// newRigWith lets wrap put the rig's memory store behind another sink.
func newRigWith(t *testing.T, wrap func(*memory.Store) store.Store) *rig {
	t.Helper()

	r := &rig{
		conn:  &fakeConn{id: "first", path: testPath},
		dial:  &fakeDialer{},
		store: memory.New(),
		clock: newClock(),
	}

	var st store.Store = r.store
	if wrap != nil {
		st = wrap(r.store)
	}

	h, err := New(Config{
		Path:           testPath,
		PollInterval:   5 * time.Second,
		Timeout:        7500 * time.Millisecond,
		ErrorThreshold: 3,
		Logger:         zerolog.Nop(),
		Now:            r.clock.Now,
	}, r.dial.dial, st, r.conn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.h = h
	return r
}

func (r *rig) step(t *testing.T) {
	t.Helper()
	if err := r.h.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func readErr(msg string) connection.Event {
	return connection.Event{Kind: connection.EventReadError, Err: errors.New(msg)}
}

func invalid() connection.Event {
	return connection.Event{Kind: connection.EventInvalidPacket}
}

func heartbeat() connection.Event {
	return connection.Event{Kind: connection.EventHeartbeat}
}

func reading(t *testing.T, s1 float64) connection.Event {
	t.Helper()
	var p packet.Packet
	p.SetCommandID(packet.RetrieveInfo)
	p.SetVersion(packet.PollVersion)
	if err := p.SetSensor1(s1); err != nil {
		t.Fatalf("SetSensor1: %v", err)
	}
	p.ClearSensor2()
	p.Seal()
	return connection.Event{Kind: connection.EventPacket, Packet: p}
}
