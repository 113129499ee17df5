// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/probe-harvester/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	area   byte
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   error

	lastRegs     []uint16
	lastRegsAddr uint16
}

func (f *fakeEndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{area: area, unitID: unitID, addr: addr, regs: cp})
	f.lastRegs = cp
	f.lastRegsAddr = addr
	return nil
}

func testPlan() Plan {
	return Plan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   2,
		DeviceName: "PROBE-01",
	}
}

// ---- tests ----

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := newDeviceStatusWriter(plan, cli)

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthConnected}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf(
			"expected full block write (%d regs), got %d",
			status.SlotsPerDevice,
			len(cli.lastRegs),
		)
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("block address: got=%d want=%d", cli.lastRegsAddr, 2*status.SlotsPerDevice)
	}
	if cli.writes[0].area != statusAreaHoldingRegisters || cli.writes[0].unitID != 1 {
		t.Fatalf("unexpected area/unit: %+v", cli.writes[0])
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := encodeDeviceNameRegs(plan.DeviceName)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf(
				"device name slot %d mismatch: got=%d want=%d",
				slot,
				cli.lastRegs[slot],
				expectedNameRegs[i],
			)
		}
	}
	if expectedNameRegs[0] != uint16('P')<<8|uint16('R') {
		t.Fatalf("name packing: got=0x%04X", expectedNameRegs[0])
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := status.Snapshot{Health: status.HealthDisconnected, LastErrorCode: 4}

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != 3 {
		t.Fatalf("expected 2 single-slot writes after the full block, got %d writes", len(cli.writes)-1)
	}
	for _, w := range cli.writes[1:] {
		if len(w.regs) == status.SlotsPerDevice {
			t.Fatalf("device name should not be rewritten on incremental update")
		}
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newDeviceStatusWriter(testPlan(), cli)

	s := status.Snapshot{Health: status.HealthConnected, Sensor1Raw: 100}
	_ = sw.WriteStatus(s)
	_ = sw.WriteStatus(s)

	if len(cli.writes) != 1 {
		t.Fatalf("expected only the full block, got %d writes", len(cli.writes))
	}
}

func TestSensorSlotsWrittenAsPairs(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := newDeviceStatusWriter(plan, cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthConnected})

	at := time.Unix(1_700_000_000, 0)
	if err := sw.WriteStatus(status.Snapshot{
		Health:     status.HealthConnected,
		Sensor1Raw: 0x01EA91F0,
		ReadingAt:  at,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	base := plan.BaseSlot * status.SlotsPerDevice
	if len(cli.writes) != 3 {
		t.Fatalf("expected sensor1 + time writes, got %d", len(cli.writes)-1)
	}

	s1 := cli.writes[1]
	if s1.addr != base+status.SlotSensor1 || len(s1.regs) != 2 || s1.regs[0] != 0x01EA || s1.regs[1] != 0x91F0 {
		t.Fatalf("sensor1 write: %+v", s1)
	}

	tm := cli.writes[2]
	if tm.addr != base+status.SlotReadingTime || len(tm.regs) != 2 {
		t.Fatalf("time write: %+v", tm)
	}
	if uint32(tm.regs[0])<<16|uint32(tm.regs[1]) != 1_700_000_000 {
		t.Fatalf("time value: %+v", tm.regs)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newDeviceStatusWriter(testPlan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthConnected})

	cli.fail = errors.New("endpoint down")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthDisconnected, LastErrorCode: 2}); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthDisconnected, LastErrorCode: 2}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after a failure, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotHealthCode] != status.HealthDisconnected || cli.lastRegs[status.SlotLastErrorCode] != 2 {
		t.Fatalf("re-asserted block has stale values: %v", cli.lastRegs[:2])
	}
}

func TestEncodeDeviceNameRegs_SanitizesAndPads(t *testing.T) {
	regs := encodeDeviceNameRegs("A\x01")
	if regs[0] != uint16('A')<<8|uint16('?') {
		t.Fatalf("got=0x%04X", regs[0])
	}
	for i := 1; i < len(regs); i++ {
		if regs[i] != 0 {
			t.Fatalf("slot %d not zero padded", i)
		}
	}
}
