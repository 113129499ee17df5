// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block (device name slots zero).
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	putU32(regs[SlotSensor1:], s.Sensor1Raw)
	putU32(regs[SlotSensor2:], s.Sensor2Raw)
	putU32(regs[SlotReadingTime:], unixSeconds(s))

	return regs
}

// EncodeU32 splits v into two registers, high word first.
func EncodeU32(v uint32) []uint16 {
	out := make([]uint16, 2)
	putU32(out, v)
	return out
}

// ReadingSeconds is the value stored in the reading-time slots.
func ReadingSeconds(s Snapshot) uint32 {
	return unixSeconds(s)
}

func unixSeconds(s Snapshot) uint32 {
	if s.ReadingAt.IsZero() {
		return 0
	}
	sec := s.ReadingAt.Unix()
	if sec < 0 {
		return 0
	}
	if sec > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(sec)
}

func putU32(dst []uint16, v uint32) {
	dst[0] = uint16(v >> 16)
	dst[1] = uint16(v)
}
