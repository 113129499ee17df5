// internal/writer/writer_test.go
package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/probe-harvester/internal/config"
	"github.com/tamzrod/probe-harvester/internal/packet"
	"github.com/tamzrod/probe-harvester/internal/status"
	"github.com/tamzrod/probe-harvester/internal/store"
)

func newTestMirror(t *testing.T) (*Mirror, *fakeEndpointClient) {
	t.Helper()
	cli := &fakeEndpointClient{}
	m, err := NewMirror(testPlan(), cli, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	return m, cli
}

func TestMirror_AssertWritesBootBlock(t *testing.T) {
	m, cli := newTestMirror(t)

	if err := m.Assert(context.Background()); err != nil {
		t.Fatalf("Assert: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotHealthCode] != status.HealthUnknown {
		t.Fatalf("boot health: got=%d", cli.lastRegs[status.SlotHealthCode])
	}
	if cli.lastRegs[status.SlotSensor1] != 0xFFFF || cli.lastRegs[status.SlotSensor1+1] != 0xFFFF {
		t.Fatalf("boot sensor1 should be the no-reading sentinel")
	}
}

func TestMirror_StatusRows(t *testing.T) {
	m, cli := newTestMirror(t)
	ctx := context.Background()

	err := m.InsertConnectionStatus(ctx, store.ConnectionStatus{
		IsDisconnect: true,
		Info:         store.String("Timeout"),
		Code:         4,
	})
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	snap := m.Snapshot()
	if snap.Health != status.HealthDisconnected || snap.LastErrorCode != 4 {
		t.Fatalf("after disconnect: %+v", snap)
	}

	if err := m.InsertConnectionStatus(ctx, store.ConnectionStatus{IsConnect: true}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	snap = m.Snapshot()
	if snap.Health != status.HealthConnected || snap.LastErrorCode != 0 {
		t.Fatalf("after connect: %+v", snap)
	}

	// full block, then health + error code
	if len(cli.writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(cli.writes))
	}
}

func TestMirror_ReadingRow(t *testing.T) {
	m, _ := newTestMirror(t)

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := m.InsertReading(context.Background(), store.Reading{
		Sensor1:   store.Float(21.5),
		Timestamp: at,
	}); err != nil {
		t.Fatalf("InsertReading: %v", err)
	}

	snap := m.Snapshot()
	if snap.Sensor1Raw != 32150000 {
		t.Fatalf("sensor1 raw: got=%d", snap.Sensor1Raw)
	}
	if snap.Sensor2Raw != packet.NoReading {
		t.Fatalf("sensor2 raw: got=0x%X", snap.Sensor2Raw)
	}
	if !snap.ReadingAt.Equal(at) {
		t.Fatalf("reading time: %v", snap.ReadingAt)
	}
}

func TestMirror_WriteErrorReturned(t *testing.T) {
	m, cli := newTestMirror(t)
	boom := errors.New("endpoint down")
	cli.fail = boom

	err := m.InsertConnectionStatus(context.Background(), store.ConnectionStatus{IsConnect: true})
	if !errors.Is(err, boom) {
		t.Fatalf("expected endpoint error, got %v", err)
	}
}

func TestNewMirror_RequiresClient(t *testing.T) {
	if _, err := NewMirror(testPlan(), nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestBuildPlan(t *testing.T) {
	p, err := BuildPlan(config.MirrorConfig{
		Endpoint:   "10.0.0.5:502",
		UnitID:     9,
		BaseSlot:   3,
		DeviceName: "probe",
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if p.UnitID != 9 || p.BaseSlot != 3 || p.DeviceName != "probe" {
		t.Fatalf("plan: %+v", p)
	}

	if _, err := BuildPlan(config.MirrorConfig{Endpoint: "x", UnitID: 300}); err == nil {
		t.Fatalf("expected unit id error")
	}
}

func TestBuild_UnsupportedProtocol(t *testing.T) {
	_, _, err := Build(config.MirrorConfig{Endpoint: "127.0.0.1:1", Protocol: "http"}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestBuild_Ingest(t *testing.T) {
	m, closer, err := Build(config.MirrorConfig{
		Endpoint:  "127.0.0.1:1",
		Protocol:  "ingest",
		TimeoutMs: 100,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer closer()
	if m == nil {
		t.Fatalf("nil mirror")
	}
}
