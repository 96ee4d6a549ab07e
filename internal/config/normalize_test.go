// internal/config/normalize_test.go
package config

import "testing"

func TestNormalize_Defaults(t *testing.T) {
	cfg := cfgOf(0, withStatus(channel("lpuart-three", 3), 1, 0))
	cfg.Uartd.Channels[0].Backend.Kind = ""

	Normalize(cfg)

	ch := cfg.Uartd.Channels[0]
	if ch.StopBits != 1 || ch.ClockHz != DefaultClockHz {
		t.Fatalf("format defaults not applied: %+v", ch)
	}
	if ch.RxBuffer != DefaultBufferSize || ch.TxBuffer != DefaultBufferSize {
		t.Fatalf("buffer defaults not applied: rx=%d tx=%d", ch.RxBuffer, ch.TxBuffer)
	}
	if ch.Poll.IntervalMs != DefaultPollIntervalMs {
		t.Fatalf("poll default not applied: %d", ch.Poll.IntervalMs)
	}
	if ch.Backend.Kind != "none" {
		t.Fatalf("backend kind=%q want none", ch.Backend.Kind)
	}
	if ch.Status.DeviceName != "lpuart-three" {
		t.Fatalf("device_name=%q want channel id", ch.Status.DeviceName)
	}
	if cfg.Uartd.StatusMemory.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("timeout default not applied")
	}
	if cfg.Uartd.StatusMemory.Transport != "modbus" {
		t.Fatalf("transport=%q want modbus", cfg.Uartd.StatusMemory.Transport)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	ch := channel("a", 1)
	ch.StopBits = 2
	ch.ClockHz = 24000000
	ch.RxBuffer = 64
	ch.Poll.IntervalMs = 250
	ch.Backend.Kind = "Serial"
	cfg := cfgOf(0, ch)

	Normalize(cfg)

	got := cfg.Uartd.Channels[0]
	if got.StopBits != 2 || got.ClockHz != 24000000 || got.RxBuffer != 64 || got.Poll.IntervalMs != 250 {
		t.Fatalf("explicit values overwritten: %+v", got)
	}
	if got.Backend.Kind != "serial" {
		t.Fatalf("backend kind=%q want serial", got.Backend.Kind)
	}
}

func TestNormalize_TruncatesDeviceName(t *testing.T) {
	ch := withStatus(channel("a", 1), 1, 0)
	ch.Status.DeviceName = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	cfg := cfgOf(0, ch)

	Normalize(cfg)

	if got := cfg.Uartd.Channels[0].Status.DeviceName; got != "ABCDEFGHIJKLMNOP" {
		t.Fatalf("device_name=%q", got)
	}
}

func TestNormalize_Nil(t *testing.T) {
	Normalize(nil)
}
