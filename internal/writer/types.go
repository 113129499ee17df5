// internal/writer/types.go
package writer

// endpointClient is the exact contract the mirror uses.
// Both the Modbus TCP client and the raw ingest client satisfy it.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// Plan is the fully-built status mirror target.
type Plan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index, not a register address
	DeviceName string
}
