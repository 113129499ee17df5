// internal/harvester/classify.go
package harvester

import (
	"fmt"

	"github.com/tamzrod/probe-harvester/internal/connection"
)

// ReasonKind is the coarse failure class used for dedup and as the stored
// reason code. Payloads never take part in comparisons.
type ReasonKind uint16

const (
	ReasonNone ReasonKind = iota
	ReasonInvalidPacket
	ReasonReadError
	ReasonWriteError
	ReasonTimeout
	ReasonConnection
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonNone:
		return "none"
	case ReasonInvalidPacket:
		return "invalid_packet"
	case ReasonReadError:
		return "read_error"
	case ReasonWriteError:
		return "write_error"
	case ReasonTimeout:
		return "timeout"
	case ReasonConnection:
		return "connection"
	default:
		return fmt.Sprintf("ReasonKind(%d)", uint16(k))
	}
}

// Reason is one observed failure.
type Reason struct {
	Kind ReasonKind
	Err  error
}

// String is the human-readable text persisted with a disconnect row.
func (r Reason) String() string {
	switch r.Kind {
	case ReasonInvalidPacket:
		return "Invalid Packet"
	case ReasonReadError:
		return "Read Error: " + errText(r.Err)
	case ReasonWriteError:
		return "Write Error: " + errText(r.Err)
	case ReasonTimeout:
		return "Timeout"
	case ReasonConnection:
		return "Connection Error: " + errText(r.Err)
	default:
		return r.Kind.String()
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// classify maps a failure-class event to its Reason. ok is false for events
// that are not failures by themselves (Packet, BadData, Heartbeat).
func classify(ev connection.Event) (Reason, bool) {
	switch ev.Kind {
	case connection.EventInvalidPacket:
		return Reason{Kind: ReasonInvalidPacket}, true
	case connection.EventReadError:
		return Reason{Kind: ReasonReadError, Err: ev.Err}, true
	case connection.EventWriteError:
		return Reason{Kind: ReasonWriteError, Err: ev.Err}, true
	case connection.EventPacket, connection.EventBadData, connection.EventHeartbeat:
		return Reason{}, false
	default:
		return Reason{Kind: ReasonConnection, Err: fmt.Errorf("unexpected event %s", ev.Kind)}, true
	}
}
