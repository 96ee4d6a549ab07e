// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultClockHz        = 80000000
	DefaultBufferSize     = 256
	DefaultPollIntervalMs = 1000
	DefaultTimeoutMs      = 1000

	maxDeviceNameLen = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	sm := &cfg.Uartd.StatusMemory
	if sm.TimeoutMs <= 0 {
		sm.TimeoutMs = DefaultTimeoutMs
	}
	sm.Transport = strings.ToLower(sm.Transport)
	if sm.Transport == "" {
		sm.Transport = "modbus"
	}

	for i := range cfg.Uartd.Channels {
		ch := &cfg.Uartd.Channels[i]

		if ch.StopBits == 0 {
			ch.StopBits = 1
		}
		if ch.ClockHz == 0 {
			ch.ClockHz = DefaultClockHz
		}
		if ch.RxBuffer == 0 {
			ch.RxBuffer = DefaultBufferSize
		}
		if ch.TxBuffer == 0 {
			ch.TxBuffer = DefaultBufferSize
		}
		if ch.Poll.IntervalMs == 0 {
			ch.Poll.IntervalMs = DefaultPollIntervalMs
		}

		ch.Backend.Kind = strings.ToLower(ch.Backend.Kind)
		if ch.Backend.Kind == "" {
			ch.Backend.Kind = "none"
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		if ch.Status == nil {
			continue
		}

		// Normalize device_name:
		// - ASCII already validated
		// - default to the channel id
		// - truncate to max 16 characters
		if ch.Status.DeviceName == "" {
			ch.Status.DeviceName = ch.ID
		}
		if len(ch.Status.DeviceName) > maxDeviceNameLen {
			ch.Status.DeviceName = ch.Status.DeviceName[:maxDeviceNameLen]
		}
	}
}
