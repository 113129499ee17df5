// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"
)

// Reading is one successful probe sample. A nil sensor means the probe
// reported no reading for that channel.
type Reading struct {
	Sensor1   *float64
	Sensor2   *float64
	Timestamp time.Time
}

// ConnectionStatus records a link transition. Exactly one of IsConnect and
// IsDisconnect is set. Info carries the failure description on disconnects;
// Code is its machine-readable kind (0 on connects).
type ConnectionStatus struct {
	IsConnect    bool
	IsDisconnect bool
	Info         *string
	Code         uint16
	CreatedAt    time.Time
}

// Store is the persistence collaborator of the harvester.
type Store interface {
	InsertReading(ctx context.Context, r Reading) error
	InsertConnectionStatus(ctx context.Context, s ConnectionStatus) error
}

// Multi fans every call out to all sinks in order. Every sink is attempted;
// failures are joined.
type Multi []Store

func (m Multi) InsertReading(ctx context.Context, r Reading) error {
	var errs []error
	for _, s := range m {
		if err := s.InsertReading(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) InsertConnectionStatus(ctx context.Context, st ConnectionStatus) error {
	var errs []error
	for _, s := range m {
		if err := s.InsertConnectionStatus(ctx, st); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BestEffort wraps a secondary sink whose failures must not abort the
// caller. Errors go to OnError (when set) and are dropped.
type BestEffort struct {
	Sink    Store
	OnError func(op string, err error)
}

func (b BestEffort) InsertReading(ctx context.Context, r Reading) error {
	if err := b.Sink.InsertReading(ctx, r); err != nil {
		b.report("insert reading", err)
	}
	return nil
}

func (b BestEffort) InsertConnectionStatus(ctx context.Context, st ConnectionStatus) error {
	if err := b.Sink.InsertConnectionStatus(ctx, st); err != nil {
		b.report("insert connection status", err)
	}
	return nil
}

func (b BestEffort) report(op string, err error) {
	if b.OnError != nil {
		b.OnError(op, err)
	}
}

// Float returns a pointer to v, for optional sensor values.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s, for optional status info.
func String(s string) *string { return &s }
