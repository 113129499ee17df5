// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/probe-harvester/internal/config"
	wingest "github.com/tamzrod/probe-harvester/internal/writer/ingest"
	wmodbus "github.com/tamzrod/probe-harvester/internal/writer/modbus"
)

// BuildPlan converts the mirror config into a Plan.
// Assumes config has already been normalized and validated.
func BuildPlan(m cfg.MirrorConfig) (Plan, error) {
	if m.Endpoint == "" {
		return Plan{}, errors.New("writer: mirror.endpoint required")
	}
	if m.UnitID < 0 || m.UnitID > 255 {
		return Plan{}, fmt.Errorf("writer: unit id %d out of range", m.UnitID)
	}
	return Plan{
		Endpoint:   m.Endpoint,
		UnitID:     uint8(m.UnitID),
		BaseSlot:   m.BaseSlot,
		DeviceName: m.DeviceName,
	}, nil
}

// Build constructs the mirror and its endpoint client. The returned closer
// releases the client.
func Build(m cfg.MirrorConfig, log zerolog.Logger) (*Mirror, func() error, error) {
	plan, err := BuildPlan(m)
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(m.TimeoutMs) * time.Millisecond

	var (
		cli    endpointClient
		closer func() error
	)
	switch m.Protocol {
	case "", "modbus":
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: m.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("writer: modbus endpoint %s: %w", m.Endpoint, err)
		}
		cli, closer = c, c.Close
	case "ingest":
		c, err := wingest.NewEndpointClient(wingest.Config{
			Endpoint: m.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		cli, closer = c, c.Close
	default:
		return nil, nil, fmt.Errorf("writer: unsupported protocol %q", m.Protocol)
	}

	mirror, err := NewMirror(plan, cli, log)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return mirror, closer, nil
}
