// internal/connection/event.go
package connection

import (
	"fmt"

	"github.com/tamzrod/probe-harvester/internal/packet"
)

// EventKind tags the arm of Event that is populated.
type EventKind uint8

const (
	EventPacket        EventKind = iota + 1 // Packet: checksum valid
	EventInvalidPacket                      // Packet: checksum failed
	EventReadError                          // Err
	EventWriteError                         // Err
	EventBadData                            // Data: stale, never framed
	EventHeartbeat                          // no payload
)

func (k EventKind) String() string {
	switch k {
	case EventPacket:
		return "packet"
	case EventInvalidPacket:
		return "invalid_packet"
	case EventReadError:
		return "read_error"
	case EventWriteError:
		return "write_error"
	case EventBadData:
		return "bad_data"
	case EventHeartbeat:
		return "heartbeat"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one item produced by the reader goroutine.
// Exactly the fields named next to its Kind are meaningful.
type Event struct {
	Kind   EventKind
	Packet packet.Packet
	Err    error
	Data   []byte
}

func (e Event) String() string {
	switch e.Kind {
	case EventPacket:
		return e.Packet.String()
	case EventInvalidPacket:
		return "invalid: " + e.Packet.String()
	case EventReadError:
		return fmt.Sprintf("read error: %v", e.Err)
	case EventWriteError:
		return fmt.Sprintf("write error: %v", e.Err)
	case EventBadData:
		return fmt.Sprintf("bad data: %d bytes % x", len(e.Data), e.Data)
	case EventHeartbeat:
		return "heartbeat"
	default:
		return e.Kind.String()
	}
}
