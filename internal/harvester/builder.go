// internal/harvester/builder.go
package harvester

import (
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/probe-harvester/internal/config"
	"github.com/tamzrod/probe-harvester/internal/connection"
	"github.com/tamzrod/probe-harvester/internal/store"
)

// Build constructs a Harvester over a real serial device.
// The device is opened once here so a bad path fails at startup; after
// that the harvester discards and re-dials connections on its own.
func Build(c cfg.HarvesterConfig, st store.Store, log zerolog.Logger) (*Harvester, error) {
	opener := connection.OpenSerial(connection.SerialConfig{
		BaudRate:    c.Device.BaudRate,
		DataBits:    c.Device.DataBits,
		StopBits:    c.Device.StopBits,
		Parity:      c.Device.Parity,
		ReadTimeout: ms(c.Device.ReadTimeoutMs),
	})

	heartbeat := heartbeatInterval(c.Connection.HeartbeatMs)

	// connection factory: ONE attempt per call
	dial := func(path string) (Conn, error) {
		conn, err := connection.Open(connection.Config{
			Path:         path,
			Open:         opener,
			Heartbeat:    heartbeat,
			StaleAfter:   ms(c.Connection.StaleMs),
			LoopInterval: ms(c.Connection.LoopIntervalMs),
			Logger:       log,
		})
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	// initial connection (fail fast at startup)
	conn, err := dial(c.Device.Path)
	if err != nil {
		return nil, err
	}

	h, err := New(
		Config{
			Path:           c.Device.Path,
			PollInterval:   ms(c.Poll.IntervalMs),
			Timeout:        ms(c.Poll.TimeoutMs),
			ErrorThreshold: c.Poll.ErrorThreshold,
			Logger:         log,
		},
		dial,
		st,
		conn,
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return h, nil
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// heartbeatInterval maps a normalized heartbeat_ms onto the connection's
// Heartbeat: negative disables (0), anything else is taken as is.
func heartbeatInterval(v int) time.Duration {
	if v < 0 {
		return 0
	}
	return ms(v)
}
