// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/probe-harvester/internal/status"
)

// Accepted ranges.
const (
	MinStaleMs        = 2000
	MaxStaleMs        = 4000
	MinLoopIntervalMs = 100
	MaxLoopIntervalMs = 250
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	h := cfg.Harvester

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if h.Device.Path == "" {
		return fmt.Errorf("device.path is required")
	}
	if h.Device.BaudRate <= 0 {
		return fmt.Errorf("device.baud_rate must be > 0 (got %d)", h.Device.BaudRate)
	}
	if h.Device.DataBits < 5 || h.Device.DataBits > 8 {
		return fmt.Errorf("device.data_bits must be 5-8 (got %d)", h.Device.DataBits)
	}
	if h.Device.StopBits != 1 && h.Device.StopBits != 2 {
		return fmt.Errorf("device.stop_bits must be 1 or 2 (got %d)", h.Device.StopBits)
	}
	switch h.Device.Parity {
	case "N", "E", "O":
	default:
		return fmt.Errorf("device.parity must be N, E or O (got %q)", h.Device.Parity)
	}
	if h.Device.ReadTimeoutMs <= 0 {
		return fmt.Errorf("device.read_timeout_ms must be > 0")
	}

	// ------------------------------------------------------------
	// CONNECTION
	// ------------------------------------------------------------

	if h.Connection.StaleMs < MinStaleMs || h.Connection.StaleMs > MaxStaleMs {
		return fmt.Errorf(
			"connection.stale_ms must be %d-%d (got %d)",
			MinStaleMs, MaxStaleMs, h.Connection.StaleMs,
		)
	}
	if h.Connection.LoopIntervalMs < MinLoopIntervalMs || h.Connection.LoopIntervalMs > MaxLoopIntervalMs {
		return fmt.Errorf(
			"connection.loop_interval_ms must be %d-%d (got %d)",
			MinLoopIntervalMs, MaxLoopIntervalMs, h.Connection.LoopIntervalMs,
		)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if h.Poll.IntervalMs <= 0 {
		return fmt.Errorf("poll.interval_ms must be > 0")
	}
	if h.Poll.TimeoutMs <= h.Poll.IntervalMs {
		return fmt.Errorf(
			"poll.timeout_ms (%d) must be greater than poll.interval_ms (%d)",
			h.Poll.TimeoutMs, h.Poll.IntervalMs,
		)
	}
	if h.Poll.ErrorThreshold < 1 {
		return fmt.Errorf("poll.error_threshold must be >= 1")
	}

	// ------------------------------------------------------------
	// STORAGE
	// ------------------------------------------------------------

	if h.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch h.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", h.Log.Level)
	}

	// ------------------------------------------------------------
	// STATUS MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if h.Mirror == nil {
		return nil
	}
	m := h.Mirror

	if m.Endpoint == "" {
		return fmt.Errorf("mirror.endpoint is required when mirror is set")
	}
	switch m.Protocol {
	case "modbus", "ingest":
	default:
		return fmt.Errorf("mirror.protocol must be modbus or ingest (got %q)", m.Protocol)
	}
	if m.UnitID < 0 || m.UnitID > 255 {
		return fmt.Errorf("mirror.unit_id must be 0-255 (got %d)", m.UnitID)
	}
	if (int(m.BaseSlot)+1)*status.SlotsPerDevice > 0x10000 {
		return fmt.Errorf("mirror.base_slot %d leaves no room for the status block", m.BaseSlot)
	}
	if m.TimeoutMs <= 0 {
		return fmt.Errorf("mirror.timeout_ms must be > 0")
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(m.DeviceName); i++ {
		if m.DeviceName[i] > 0x7F {
			return fmt.Errorf("mirror.device_name must contain ASCII characters only")
		}
	}

	return nil
}
