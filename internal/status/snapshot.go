// internal/status/snapshot.go
package status

import "time"

// Snapshot represents exactly what the mirror is allowed to deliver.
// Sensor raws use the probe's wire encoding, so "no reading" stays distinguishable.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	Sensor1Raw    uint32
	Sensor2Raw    uint32
	ReadingAt     time.Time
}
