// internal/writer/modbus/client_test.go
package modbus

import "testing"

func TestPackRegisters_BigEndian(t *testing.T) {
	got := packRegisters([]uint16{0x0102, 0xA0B0})
	want := []byte{0x01, 0x02, 0xA0, 0xB0}
	if len(got) != len(want) {
		t.Fatalf("len: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got=0x%02X want=0x%02X", i, got[i], want[i])
		}
	}
}

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestWriteRegisters_RejectsOtherAreas(t *testing.T) {
	c := &EndpointClient{}
	if err := c.WriteRegisters(4, 1, 0, []uint16{1}); err == nil {
		t.Fatalf("expected error for input register area")
	}
}
