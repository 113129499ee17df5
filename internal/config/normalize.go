// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize when a field is left at zero.
const (
	DefaultBaudRate       = 9600
	DefaultDataBits       = 8
	DefaultStopBits       = 1
	DefaultParity         = "N"
	DefaultReadTimeoutMs  = 50
	DefaultHeartbeatMs    = 1000
	DefaultStaleMs        = 4000
	DefaultLoopIntervalMs = 250
	DefaultPollIntervalMs = 5000
	DefaultPollTimeoutMs  = 7500
	DefaultErrorThreshold = 3
	DefaultDBPath         = "pibq.sqlite"
	DefaultMirrorTimeout  = 2000
	DefaultMirrorProtocol = "modbus"
	DefaultLogLevel       = "info"

	deviceNameMaxChars = 16
)

// Normalize fills defaults and canonicalizes values.
// It is allowed to mutate configuration.
// Validate is expected to run afterwards so defaults are range-checked too.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	h := &cfg.Harvester

	// ---- device ----
	h.Device.Path = strings.TrimSpace(h.Device.Path)
	setDefault(&h.Device.BaudRate, DefaultBaudRate)
	setDefault(&h.Device.DataBits, DefaultDataBits)
	setDefault(&h.Device.StopBits, DefaultStopBits)
	setDefault(&h.Device.ReadTimeoutMs, DefaultReadTimeoutMs)
	h.Device.Parity = strings.ToUpper(strings.TrimSpace(h.Device.Parity))
	if h.Device.Parity == "" {
		h.Device.Parity = DefaultParity
	}

	// ---- connection ----
	setDefault(&h.Connection.HeartbeatMs, DefaultHeartbeatMs)
	setDefault(&h.Connection.StaleMs, DefaultStaleMs)
	setDefault(&h.Connection.LoopIntervalMs, DefaultLoopIntervalMs)

	// ---- poll ----
	setDefault(&h.Poll.IntervalMs, DefaultPollIntervalMs)
	setDefault(&h.Poll.TimeoutMs, DefaultPollTimeoutMs)
	setDefault(&h.Poll.ErrorThreshold, DefaultErrorThreshold)

	// ---- storage ----
	if strings.TrimSpace(h.Storage.DBPath) == "" {
		h.Storage.DBPath = DefaultDBPath
	}

	// ---- log ----
	h.Log.Level = strings.ToLower(strings.TrimSpace(h.Log.Level))
	if h.Log.Level == "" {
		h.Log.Level = DefaultLogLevel
	}

	// ---- mirror (opt-in) ----
	if h.Mirror == nil {
		return
	}
	m := h.Mirror
	m.Protocol = strings.ToLower(strings.TrimSpace(m.Protocol))
	if m.Protocol == "" {
		m.Protocol = DefaultMirrorProtocol
	}
	setDefault(&m.TimeoutMs, DefaultMirrorTimeout)

	// ASCII is checked by Validate; truncation only here.
	if len(m.DeviceName) > deviceNameMaxChars {
		m.DeviceName = m.DeviceName[:deviceNameMaxChars]
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
