// internal/config/config.go
package config

type Config struct {
	Harvester HarvesterConfig `yaml:"harvester"`
}

type HarvesterConfig struct {
	Device     DeviceConfig     `yaml:"device"`
	Connection ConnectionConfig `yaml:"connection"`
	Poll       PollConfig       `yaml:"poll"`
	Storage    StorageConfig    `yaml:"storage"`
	Mirror     *MirrorConfig    `yaml:"mirror"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Path          string `yaml:"path"`
	BaudRate      int    `yaml:"baud_rate"`
	DataBits      int    `yaml:"data_bits"`
	StopBits      int    `yaml:"stop_bits"`
	Parity        string `yaml:"parity"` // N, E or O
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- CONNECTION ----

type ConnectionConfig struct {
	// HeartbeatMs: 0 selects the 1000 ms default, negative disables heartbeats.
	HeartbeatMs    int `yaml:"heartbeat_ms"`
	StaleMs        int `yaml:"stale_ms"`
	LoopIntervalMs int `yaml:"loop_interval_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs     int `yaml:"interval_ms"`
	TimeoutMs      int `yaml:"timeout_ms"`
	ErrorThreshold int `yaml:"error_threshold"`
}

// ---- STORAGE ----

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ---- STATUS MIRROR (optional, opt-in) ----

type MirrorConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Protocol   string `yaml:"protocol"` // modbus | ingest
	UnitID     int    `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"` // block index; address = base_slot * 20
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- METRICS (optional) ----

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}
