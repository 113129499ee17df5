// internal/packet/crc.go
package packet

// crcPoly is the reflected CRC-16 polynomial used by the probe.
const crcPoly uint16 = 0xA001

// ComputeChecksum returns the complemented bit-reflected CRC-16 of data.
// Integrity check only; colliding corruptions are not detected here.
func ComputeChecksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crcByte(crc, b)
	}
	return ^crc
}

func crcByte(crc uint16, b byte) uint16 {
	word := uint16(b)
	for i := 0; i < 8; i++ {
		carry := (crc ^ word) & 1
		word >>= 1
		crc >>= 1
		if carry != 0 {
			crc ^= crcPoly
		}
	}
	return crc
}
