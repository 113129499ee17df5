// internal/packet/fields.go
package packet

import (
	"encoding/binary"
	"math"
)

// Field converters. Every helper slices buf[off:off+n] first, so a converter
// can never read or write outside its own range.

// NoReading is the raw value written for an absent temperature.
const NoReading uint32 = 0xFFFFFFFF

// noReadingFloor is the lowest raw value treated as "no reading".
const noReadingFloor uint32 = 0xFFFFFFFD

const (
	temperatureOffset = 300.0
	temperatureScale  = 100000.0
	voltsScale        = 1000.0
)

func field(buf []byte, off, n int) []byte {
	return buf[off : off+n : off+n]
}

func decodeByte(buf []byte, off, n int) uint8 {
	return field(buf, off, n)[0]
}

func encodeByte(buf []byte, off, n int, v uint8) {
	field(buf, off, n)[0] = v
}

func decodeWord(buf []byte, off, n int) uint16 {
	return binary.LittleEndian.Uint16(field(buf, off, n))
}

func encodeWord(buf []byte, off, n int, v uint16) {
	binary.LittleEndian.PutUint16(field(buf, off, n), v)
}

func decodeDword(buf []byte, off, n int) uint32 {
	return binary.LittleEndian.Uint32(field(buf, off, n))
}

func encodeDword(buf []byte, off, n int, v uint32) {
	binary.LittleEndian.PutUint32(field(buf, off, n), v)
}

// decodeString stops at the first NUL.
func decodeString(buf []byte, off, n int) string {
	b := field(buf, off, n)
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func encodeString(buf []byte, off, n int, s string) {
	b := field(buf, off, n)
	for i := range b {
		if i < len(s) {
			b[i] = s[i]
		} else {
			b[i] = 0
		}
	}
}

// TemperatureFromRaw converts a fixed-point word; ok is false for the sentinel range.
func TemperatureFromRaw(raw uint32) (float64, bool) {
	if raw >= noReadingFloor {
		return 0, false
	}
	return float64(raw)/temperatureScale - temperatureOffset, true
}

// TemperatureToRaw is the inverse of TemperatureFromRaw.
func TemperatureToRaw(v float64) (uint32, error) {
	if math.IsNaN(v) {
		return 0, ErrOutOfRange
	}
	raw := math.Round((v + temperatureOffset) * temperatureScale)
	if raw < 0 || raw >= float64(noReadingFloor) {
		return 0, ErrOutOfRange
	}
	return uint32(raw), nil
}

func decodeTemperature(buf []byte, off, n int) (float64, bool) {
	return TemperatureFromRaw(decodeDword(buf, off, n))
}

func encodeTemperature(buf []byte, off, n int, v float64) error {
	raw, err := TemperatureToRaw(v)
	if err != nil {
		return err
	}
	encodeDword(buf, off, n, raw)
	return nil
}

func decodeVolts(buf []byte, off, n int) float64 {
	return float64(decodeWord(buf, off, n)) / voltsScale
}

func encodeVolts(buf []byte, off, n int, v float64) error {
	if math.IsNaN(v) {
		return ErrOutOfRange
	}
	raw := math.Round(v * voltsScale)
	if raw < 0 || raw > math.MaxUint16 {
		return ErrOutOfRange
	}
	encodeWord(buf, off, n, uint16(raw))
	return nil
}
