// internal/config/config.go
package config

type Config struct {
	Uartd UartdConfig `yaml:"uartd"`
}

type UartdConfig struct {
	// LPUART instance carrying the console (0 = no console)
	Console      int                `yaml:"console"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Channels     []ChannelConfig    `yaml:"channels"`
}

// ---- STATUS MEMORY ----

type StatusMemoryConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Transport string `yaml:"transport"` // modbus (default) | ingest
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- CHANNEL ----

type ChannelConfig struct {
	ID       string `yaml:"id"`
	Instance int    `yaml:"instance"`

	// Line format
	Baud     uint32 `yaml:"baud"`
	Parity   uint8  `yaml:"parity"` // 0 none, 1 odd, 2 even
	Bits     uint8  `yaml:"bits"`
	StopBits int    `yaml:"stop_bits"`
	ClockHz  uint32 `yaml:"clock_hz"`

	RxBuffer int `yaml:"rx_buffer"`
	TxBuffer int `yaml:"tx_buffer"`

	SuppressInterrupts bool `yaml:"suppress_interrupts"`
	SuppressConfig     bool `yaml:"suppress_config"`
	DebugStruct        bool `yaml:"debug_struct"`

	// Echo received bytes back to the line
	Echo bool `yaml:"echo"`

	Backend BackendConfig `yaml:"backend"`
	Poll    PollConfig    `yaml:"poll"`

	// Device status block (optional, opt-in)
	Status *StatusConfig `yaml:"status"`
}

// ---- BACKEND ----

type BackendConfig struct {
	Kind   string `yaml:"kind"` // tty | serial | tarm | loopback | none
	Device string `yaml:"device"`
}

// ---- STATUS ----

type StatusConfig struct {
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}
