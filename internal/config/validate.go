// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	u := &cfg.Uartd
	if len(u.Channels) == 0 {
		return fmt.Errorf("no channels configured")
	}

	// ------------------------------------------------------------
	// CHANNEL IDENTITY
	// ------------------------------------------------------------

	ids := make(map[string]bool)
	instances := make(map[int]string)

	for i, ch := range u.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channel #%d: id is required", i)
		}
		if ids[ch.ID] {
			return fmt.Errorf("channel %q: duplicate id", ch.ID)
		}
		ids[ch.ID] = true

		if ch.Instance < 1 || ch.Instance > 8 {
			return fmt.Errorf("channel %q: instance %d out of range 1..8", ch.ID, ch.Instance)
		}
		if prev, exists := instances[ch.Instance]; exists {
			return fmt.Errorf(
				"instance collision: LPUART%d used by channels %q and %q",
				ch.Instance,
				prev,
				ch.ID,
			)
		}
		instances[ch.Instance] = ch.ID
	}

	if u.Console != 0 {
		if _, ok := instances[u.Console]; !ok {
			return fmt.Errorf("console: instance %d is not a configured channel", u.Console)
		}
	}

	// ------------------------------------------------------------
	// LINE FORMAT + BACKEND
	// ------------------------------------------------------------

	for _, ch := range u.Channels {
		if err := validateChannel(ch); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (PER-CHANNEL, OPT-IN)
	// ------------------------------------------------------------

	switch strings.ToLower(u.StatusMemory.Transport) {
	case "", "modbus", "ingest":
	default:
		return fmt.Errorf("status_memory: unknown transport %q", u.StatusMemory.Transport)
	}

	// key = unit_id | slot
	statusOwner := make(map[string]string)

	for _, ch := range u.Channels {
		if ch.Status == nil {
			continue
		}

		if u.StatusMemory.Endpoint == "" {
			return fmt.Errorf(
				"channel %q: status is set but status_memory.endpoint is empty",
				ch.ID,
			)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(ch.Status.DeviceName); i++ {
			if ch.Status.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"channel %q: device_name must contain ASCII characters only",
					ch.ID,
				)
			}
		}

		key := fmt.Sprintf("%d|%d", ch.Status.UnitID, ch.Status.Slot)

		if prev, exists := statusOwner[key]; exists {
			return fmt.Errorf(
				"status slot collision: unit_id=%d slot=%d used by channels %q and %q",
				ch.Status.UnitID,
				ch.Status.Slot,
				prev,
				ch.ID,
			)
		}

		statusOwner[key] = ch.ID
	}

	return nil
}

func validateChannel(ch ChannelConfig) error {
	if ch.Baud == 0 {
		return fmt.Errorf("channel %q: baud is required", ch.ID)
	}
	if ch.Bits < 7 || ch.Bits > 9 {
		return fmt.Errorf("channel %q: bits must be 7, 8 or 9 (got %d)", ch.ID, ch.Bits)
	}
	if ch.Parity > 2 {
		return fmt.Errorf("channel %q: parity must be 0, 1 or 2 (got %d)", ch.ID, ch.Parity)
	}
	if ch.Bits == 9 && ch.Parity != 0 {
		return fmt.Errorf("channel %q: 9 data bits cannot carry parity", ch.ID)
	}
	if ch.StopBits != 0 && ch.StopBits != 1 && ch.StopBits != 2 {
		return fmt.Errorf("channel %q: stop_bits must be 1 or 2 (got %d)", ch.ID, ch.StopBits)
	}
	if ch.RxBuffer < 0 || ch.TxBuffer < 0 {
		return fmt.Errorf("channel %q: buffer sizes must not be negative", ch.ID)
	}
	if ch.Poll.IntervalMs < 0 {
		return fmt.Errorf("channel %q: poll.interval_ms must not be negative", ch.ID)
	}

	switch strings.ToLower(ch.Backend.Kind) {
	case "", "none", "loopback", "tty":
	case "serial", "tarm":
		if ch.Backend.Device == "" {
			return fmt.Errorf(
				"channel %q: backend %q requires device",
				ch.ID,
				ch.Backend.Kind,
			)
		}
	default:
		return fmt.Errorf("channel %q: unknown backend kind %q", ch.ID, ch.Backend.Kind)
	}

	return nil
}
