// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/probe-harvester/internal/status"
)

// deviceStatusWriter delivers snapshots into the status block.
// It remembers what the endpoint holds and only rewrites changed fields.
type deviceStatusWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

const statusAreaHoldingRegisters byte = 3

func newDeviceStatusWriter(plan Plan, cli endpointClient) *deviceStatusWriter {
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.write(baseAddr, sw.fullBlockRegs(s)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	// Slot 0: health_code
	if sw.last.Health != s.Health {
		if err := sw.write(baseAddr+status.SlotHealthCode, []uint16{s.Health}); err != nil {
			errs = append(errs, fmt.Sprintf("slot0 health write failed: %v", err))
		} else {
			sw.last.Health = s.Health
		}
	}

	// Slot 1: last_error_code
	if sw.last.LastErrorCode != s.LastErrorCode {
		if err := sw.write(baseAddr+status.SlotLastErrorCode, []uint16{s.LastErrorCode}); err != nil {
			errs = append(errs, fmt.Sprintf("slot1 last_error write failed: %v", err))
		} else {
			sw.last.LastErrorCode = s.LastErrorCode
		}
	}

	// Slots 3-4: sensor 1
	if sw.last.Sensor1Raw != s.Sensor1Raw {
		if err := sw.write(baseAddr+status.SlotSensor1, status.EncodeU32(s.Sensor1Raw)); err != nil {
			errs = append(errs, fmt.Sprintf("slot3 sensor1 write failed: %v", err))
		} else {
			sw.last.Sensor1Raw = s.Sensor1Raw
		}
	}

	// Slots 5-6: sensor 2
	if sw.last.Sensor2Raw != s.Sensor2Raw {
		if err := sw.write(baseAddr+status.SlotSensor2, status.EncodeU32(s.Sensor2Raw)); err != nil {
			errs = append(errs, fmt.Sprintf("slot5 sensor2 write failed: %v", err))
		} else {
			sw.last.Sensor2Raw = s.Sensor2Raw
		}
	}

	// Slots 7-8: reading time, compared at register resolution
	if status.ReadingSeconds(sw.last) != status.ReadingSeconds(s) {
		if err := sw.write(baseAddr+status.SlotReadingTime, status.EncodeU32(status.ReadingSeconds(s))); err != nil {
			errs = append(errs, fmt.Sprintf("slot7 reading_time write failed: %v", err))
		} else {
			sw.last.ReadingAt = s.ReadingAt
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) write(addr uint16, regs []uint16) error {
	err := sw.cli.WriteRegisters(statusAreaHoldingRegisters, sw.plan.UnitID, addr, regs)
	if err != nil {
		sw.needFull = true
	}
	return err
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each probe owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Device name always lives at the end of the block
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
