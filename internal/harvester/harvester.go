// internal/harvester/harvester.go
package harvester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/probe-harvester/internal/connection"
	"github.com/tamzrod/probe-harvester/internal/metrics"
	"github.com/tamzrod/probe-harvester/internal/packet"
	"github.com/tamzrod/probe-harvester/internal/store"
)

// Conn is what the harvester needs from a connection.
type Conn interface {
	ID() string
	Path() string
	OK() bool
	Send(p packet.Packet) error
	WaitContext(ctx context.Context) (connection.Event, error)
	Close() error
}

// Dialer opens one connection to path. ONE attempt per call.
type Dialer func(path string) (Conn, error)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultTimeout        = 7500 * time.Millisecond
	DefaultErrorThreshold = 3
)

// Config is the runtime config of one harvester.
type Config struct {
	Path           string
	PollInterval   time.Duration
	Timeout        time.Duration // must exceed PollInterval
	ErrorThreshold int           // rebuild once consecutive errors exceed this

	Logger zerolog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Harvester drives one probe session. All state is owned by the goroutine
// calling Step or Run.
type Harvester struct {
	cfg   Config
	dial  Dialer
	store store.Store
	log   zerolog.Logger

	conn Conn

	// zero means "no data yet"
	lastSend time.Time
	lastRecv time.Time
	// first successful send not yet answered; drives the timeout
	unanswered time.Time

	disconnected bool
	lastReason   ReasonKind
	errCount     int
}

// New creates a harvester. conn may be nil; the first Step then dials.
func New(cfg Config, dial Dialer, st store.Store, conn Conn) (*Harvester, error) {
	if cfg.Path == "" {
		return nil, errors.New("harvester: device path required")
	}
	if dial == nil {
		return nil, errors.New("harvester: dialer required")
	}
	if st == nil {
		return nil, errors.New("harvester: store required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Timeout <= cfg.PollInterval {
		return nil, fmt.Errorf("harvester: timeout %s must exceed poll interval %s", cfg.Timeout, cfg.PollInterval)
	}
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = DefaultErrorThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &Harvester{
		cfg:   cfg,
		dial:  dial,
		store: st,
		log:   cfg.Logger.With().Str("path", cfg.Path).Logger(),
		conn:  conn,

		// A session starts disconnected with nothing reported yet, so the
		// first outcome either way is persisted.
		disconnected: true,
		lastReason:   ReasonNone,
	}
	metrics.SetConnected(false)
	return h, nil
}

// Connected reports whether the last outcome was a valid packet.
func (h *Harvester) Connected() bool { return !h.disconnected }

// ConsecutiveErrors is the failure count since the last success or rebuild.
func (h *Harvester) ConsecutiveErrors() int { return h.errCount }

// LastReason is the kind last persisted in the current episode.
func (h *Harvester) LastReason() ReasonKind { return h.lastReason }

// LastSend and LastReceive are zero while unknown.
func (h *Harvester) LastSend() time.Time    { return h.lastSend }
func (h *Harvester) LastReceive() time.Time { return h.lastRecv }

// Step performs one loop iteration: dial if needed, poll if due, wait for one
// event and act on it. A returned error aborts the iteration only; the
// session state stays consistent and Step may be called again.
func (h *Harvester) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// ---- connection ----
	if h.conn == nil {
		c, err := h.dial(h.cfg.Path)
		if err != nil {
			// pause even when the report could not be stored
			ferr := h.fail(ctx, Reason{Kind: ReasonConnection, Err: err}, false)
			if perr := h.pause(ctx, h.cfg.PollInterval); perr != nil {
				return perr
			}
			return ferr
		}
		h.conn = c
		h.log.Info().Str("conn_id", c.ID()).Msg("connection opened")
	}

	// ---- poll ----
	now := h.cfg.Now()
	if h.pollDue(now) {
		err := h.conn.Send(packet.NewPoll())
		h.lastSend = now
		if err != nil {
			if errors.Is(err, connection.ErrNotOK) || errors.Is(err, connection.ErrClosed) {
				return h.workerLost(ctx, err)
			}
			// send failures classify as read errors
			if ferr := h.fail(ctx, Reason{Kind: ReasonReadError, Err: err}, true); ferr != nil {
				return ferr
			}
			if h.conn == nil {
				return nil
			}
		} else if h.unanswered.IsZero() {
			h.unanswered = now
		}
	}

	// ---- wait ----
	ev, err := h.conn.WaitContext(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return h.workerLost(ctx, err)
	}

	return h.handle(ctx, ev)
}

func (h *Harvester) pollDue(now time.Time) bool {
	return h.lastSend.IsZero() || now.Sub(h.lastSend) >= h.cfg.PollInterval
}

// timedOut reports whether the probe has been silent for longer than
// Timeout, measured from the later of the last receive and the oldest
// unanswered send.
func (h *Harvester) timedOut(now time.Time) bool {
	ref := h.lastRecv
	if h.unanswered.After(ref) {
		ref = h.unanswered
	}
	if ref.IsZero() {
		return false
	}
	return now.Sub(ref) > h.cfg.Timeout
}

func (h *Harvester) handle(ctx context.Context, ev connection.Event) error {
	metrics.RecordEvent(ev.Kind.String())

	switch ev.Kind {
	case connection.EventPacket:
		return h.received(ctx, ev.Packet)

	case connection.EventBadData:
		h.log.Warn().Int("bytes", len(ev.Data)).Msg("discarded stale partial frame")
		return nil

	case connection.EventHeartbeat:
		if h.timedOut(h.cfg.Now()) {
			return h.fail(ctx, Reason{Kind: ReasonTimeout}, true)
		}
		return nil
	}

	reason, ok := classify(ev)
	if !ok {
		return nil
	}
	return h.fail(ctx, reason, true)
}

// received persists a valid packet and closes any open failure episode.
func (h *Harvester) received(ctx context.Context, p packet.Packet) error {
	now := h.cfg.Now()

	r := store.Reading{Timestamp: now.UTC()}
	if v, ok := p.Sensor1(); ok {
		r.Sensor1 = store.Float(v)
	}
	if v, ok := p.Sensor2(); ok {
		r.Sensor2 = store.Float(v)
	}

	h.lastRecv = now
	h.unanswered = time.Time{}

	if err := h.store.InsertReading(ctx, r); err != nil {
		metrics.RecordStorageError()
		return fmt.Errorf("harvester: insert reading: %w", err)
	}
	metrics.SetSensor("sensor1", r.Sensor1)
	metrics.SetSensor("sensor2", r.Sensor2)

	h.log.Debug().Str("packet", p.String()).Msg("reading stored")

	if !h.disconnected {
		return nil
	}

	if err := h.store.InsertConnectionStatus(ctx, store.ConnectionStatus{
		IsConnect: true,
		CreatedAt: now.UTC(),
	}); err != nil {
		metrics.RecordStorageError()
		return fmt.Errorf("harvester: insert connect status: %w", err)
	}
	metrics.RecordStatus("connect", ReasonNone.String())
	metrics.SetConnected(true)

	h.disconnected = false
	h.lastReason = ReasonNone
	h.errCount = 0

	h.log.Info().Msg("probe connected")
	return nil
}

// fail runs the reporting procedure for one failure. Inside an episode only
// a change of kind is persisted. count controls whether the failure moves
// the session towards a rebuild; counting happens even when the persist
// fails, and the storage error is returned afterwards.
func (h *Harvester) fail(ctx context.Context, r Reason, count bool) error {
	wasConnected := !h.disconnected
	h.disconnected = true
	if wasConnected {
		metrics.SetConnected(false)
	}

	var perr error
	if wasConnected || r.Kind != h.lastReason {
		perr = h.report(ctx, r)
	} else {
		h.log.Debug().Str("reason", r.String()).Msg("failure suppressed (same kind)")
	}

	if count {
		h.errCount++
		if h.errCount > h.cfg.ErrorThreshold {
			h.rebuild("error threshold exceeded")
		}
	}
	return perr
}

// report persists one disconnect row. lastReason only moves once the row is
// stored, so a lost row is retried by the next failure.
func (h *Harvester) report(ctx context.Context, r Reason) error {
	info := r.String()
	if err := h.store.InsertConnectionStatus(ctx, store.ConnectionStatus{
		IsDisconnect: true,
		Info:         &info,
		Code:         uint16(r.Kind),
		CreatedAt:    h.cfg.Now().UTC(),
	}); err != nil {
		metrics.RecordStorageError()
		return fmt.Errorf("harvester: insert disconnect status: %w", err)
	}
	metrics.RecordStatus("disconnect", r.Kind.String())
	h.lastReason = r.Kind
	h.log.Warn().Str("reason", info).Msg("probe disconnected")
	return nil
}

// workerLost handles a connection whose reader has stopped. It never comes
// back, so the connection is rebuilt right away.
func (h *Harvester) workerLost(ctx context.Context, err error) error {
	ferr := h.fail(ctx, Reason{Kind: ReasonConnection, Err: err}, false)
	h.rebuild("reader stopped")
	return ferr
}

// rebuild drops the current connection. The next Step dials a fresh one to
// the same path and, with both timers unknown, polls immediately.
func (h *Harvester) rebuild(why string) {
	if h.conn != nil {
		if err := h.conn.Close(); err != nil {
			h.log.Warn().Err(err).Str("conn_id", h.conn.ID()).Msg("close failed during rebuild")
		}
		h.log.Info().Str("conn_id", h.conn.ID()).Str("why", why).Msg("connection dropped")
	}
	h.conn = nil
	h.lastSend = time.Time{}
	h.lastRecv = time.Time{}
	h.unanswered = time.Time{}
	h.errCount = 0
	metrics.RecordReconnect()
}

func (h *Harvester) pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close releases the current connection.
func (h *Harvester) Close() error {
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
