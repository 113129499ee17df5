// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/probe-harvester/internal/packet"
	"github.com/tamzrod/probe-harvester/internal/status"
	"github.com/tamzrod/probe-harvester/internal/store"
)

// Mirror is a store.Store that reflects the harvester's link state and
// latest reading into a remote status block. It owns the snapshot; callers
// only feed it rows.
type Mirror struct {
	mu   sync.Mutex
	sw   *deviceStatusWriter
	snap status.Snapshot
	log  zerolog.Logger
}

var _ store.Store = (*Mirror)(nil)

func NewMirror(plan Plan, cli endpointClient, log zerolog.Logger) (*Mirror, error) {
	if cli == nil {
		return nil, errors.New("writer: endpoint client required")
	}
	return &Mirror{
		sw: newDeviceStatusWriter(plan, cli),
		snap: status.Snapshot{
			Health:     status.HealthUnknown,
			Sensor1Raw: packet.NoReading,
			Sensor2Raw: packet.NoReading,
		},
		log: log.With().Str("mirror", plan.Endpoint).Uint8("unit_id", plan.UnitID).Logger(),
	}, nil
}

// Assert writes the current snapshot as a full block (boot identity).
func (m *Mirror) Assert(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sw.needFull = true
	return m.flush()
}

func (m *Mirror) InsertConnectionStatus(_ context.Context, st store.ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case st.IsConnect:
		m.snap.Health = status.HealthConnected
		m.snap.LastErrorCode = 0
	case st.IsDisconnect:
		m.snap.Health = status.HealthDisconnected
		m.snap.LastErrorCode = st.Code
	default:
		return nil
	}
	return m.flush()
}

func (m *Mirror) InsertReading(_ context.Context, r store.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.Sensor1Raw = rawTemperature(r.Sensor1)
	m.snap.Sensor2Raw = rawTemperature(r.Sensor2)
	m.snap.ReadingAt = r.Timestamp
	return m.flush()
}

// Snapshot returns the state last handed to the writer.
func (m *Mirror) Snapshot() status.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Mirror) flush() error {
	if err := m.sw.WriteStatus(m.snap); err != nil {
		m.log.Warn().Err(err).Msg("status mirror write failed")
		return err
	}
	return nil
}

// rawTemperature maps an optional reading back to the probe's wire value.
func rawTemperature(v *float64) uint32 {
	if v == nil {
		return packet.NoReading
	}
	raw, err := packet.TemperatureToRaw(*v)
	if err != nil {
		return packet.NoReading
	}
	return raw
}
