// internal/packet/packet.go
package packet

import (
	"errors"
	"fmt"
)

// Size is the fixed frame length exchanged with the probe.
const Size = 128

// ---- FIELD GEOMETRY ----
// Offsets and widths are protocol-locked.

const (
	offCommand  = 0
	lenCommand  = 1
	offVersion  = 1
	lenVersion  = 1
	offFlags    = 2
	lenFlags    = 2
	offSerial   = 4
	lenSerial   = 10
	offSensor1  = 54
	lenSensor1  = 4
	offSensor2  = 74
	lenSensor2  = 4
	offBattery  = 94
	lenBattery  = 2
	offChecksum = 126
	lenChecksum = 2
)

// ChecksumSpan is the number of leading bytes covered by the checksum.
const ChecksumSpan = offChecksum

// PollVersion is the protocol version stamped on outbound poll frames.
const PollVersion = 1

var (
	ErrFrameSize  = errors.New("packet: frame must be exactly 128 bytes")
	ErrOutOfRange = errors.New("packet: value out of representable range")
)

// Packet is one 128-byte frame. The zero value is a valid, all-zero frame.
type Packet [Size]byte

// FromBytes copies exactly Size bytes into a new Packet.
func FromBytes(b []byte) (Packet, error) {
	var p Packet
	if len(b) != Size {
		return p, fmt.Errorf("%w: got %d", ErrFrameSize, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// NewPoll builds the "retrieve info" query frame sent by the harvester.
func NewPoll() Packet {
	var p Packet
	p.SetCommandID(RetrieveInfo)
	p.SetVersion(PollVersion)
	p.SetDataFlags(FlagsDefault)
	p.Seal()
	return p
}

// Bytes returns the raw frame.
func (p *Packet) Bytes() []byte { return p[:] }

func (p *Packet) CommandID() Command {
	return Command(decodeByte(p[:], offCommand, lenCommand))
}

func (p *Packet) SetCommandID(c Command) {
	encodeByte(p[:], offCommand, lenCommand, uint8(c))
}

func (p *Packet) Version() uint8 {
	return decodeByte(p[:], offVersion, lenVersion)
}

func (p *Packet) SetVersion(v uint8) {
	encodeByte(p[:], offVersion, lenVersion, v)
}

func (p *Packet) DataFlags() DataFlags {
	return DataFlags(decodeWord(p[:], offFlags, lenFlags))
}

func (p *Packet) SetDataFlags(f DataFlags) {
	encodeWord(p[:], offFlags, lenFlags, uint16(f))
}

// SerialNumber returns the ASCII serial with NUL padding removed.
func (p *Packet) SerialNumber() string {
	return decodeString(p[:], offSerial, lenSerial)
}

// SetSerialNumber stores s, truncated to 10 bytes and NUL padded.
func (p *Packet) SetSerialNumber(s string) {
	encodeString(p[:], offSerial, lenSerial, s)
}

// Sensor1 returns the sensor-1 temperature; ok is false for "no reading".
func (p *Packet) Sensor1() (float64, bool) {
	return decodeTemperature(p[:], offSensor1, lenSensor1)
}

func (p *Packet) SetSensor1(v float64) error {
	return encodeTemperature(p[:], offSensor1, lenSensor1, v)
}

// ClearSensor1 marks sensor 1 as "no reading".
func (p *Packet) ClearSensor1() {
	encodeDword(p[:], offSensor1, lenSensor1, NoReading)
}

func (p *Packet) Sensor2() (float64, bool) {
	return decodeTemperature(p[:], offSensor2, lenSensor2)
}

func (p *Packet) SetSensor2(v float64) error {
	return encodeTemperature(p[:], offSensor2, lenSensor2, v)
}

func (p *Packet) ClearSensor2() {
	encodeDword(p[:], offSensor2, lenSensor2, NoReading)
}

// Sensor1Raw and Sensor2Raw expose the fixed-point words verbatim.
func (p *Packet) Sensor1Raw() uint32 { return decodeDword(p[:], offSensor1, lenSensor1) }
func (p *Packet) Sensor2Raw() uint32 { return decodeDword(p[:], offSensor2, lenSensor2) }

func (p *Packet) BatteryVolts() float64 {
	return decodeVolts(p[:], offBattery, lenBattery)
}

func (p *Packet) SetBatteryVolts(v float64) error {
	return encodeVolts(p[:], offBattery, lenBattery, v)
}

func (p *Packet) Checksum() uint16 {
	return decodeWord(p[:], offChecksum, lenChecksum)
}

func (p *Packet) SetChecksum(c uint16) {
	encodeWord(p[:], offChecksum, lenChecksum, c)
}

// Seal computes the checksum over the data bytes and stores it.
func (p *Packet) Seal() {
	p.SetChecksum(ComputeChecksum(p[:ChecksumSpan]))
}

// ChecksumValid recomputes the checksum and compares it to the stored field.
func (p *Packet) ChecksumValid() bool {
	return ComputeChecksum(p[:ChecksumSpan]) == p.Checksum()
}

func (p Packet) String() string {
	s1, s2 := "none", "none"
	if v, ok := p.Sensor1(); ok {
		s1 = fmt.Sprintf("%.2f", v)
	}
	if v, ok := p.Sensor2(); ok {
		s2 = fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf(
		"cmd=%s ver=%d flags=%s serial=%q s1=%s s2=%s batt=%.3f crc=0x%04x",
		p.CommandID(), p.Version(), p.DataFlags(), p.SerialNumber(),
		s1, s2, p.BatteryVolts(), p.Checksum(),
	)
}
