// cmd/uartd/channel.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/bridge"
	"github.com/tamzrod/lpuart-engine/internal/config"
	"github.com/tamzrod/lpuart-engine/internal/irq"
	"github.com/tamzrod/lpuart-engine/internal/lpuart"
	"github.com/tamzrod/lpuart-engine/internal/serial"
	"github.com/tamzrod/lpuart-engine/internal/sim"
)

// drainTimeout bounds how long close waits for queued output.
const drainTimeout = 500 * time.Millisecond

// channelRuntime is one LPUART with its simulated block and host bridge.
type channelRuntime struct {
	id   string
	ch   *lpuart.Channel
	hw   *sim.LPUART
	dev  *serial.Device
	info lpuart.InstanceInfo
}

func buildChannel(ctx context.Context, ic *irq.Controller, c config.ChannelConfig, paths []string, console bool) (*channelRuntime, error) {
	info, ok := lpuart.Instance(c.Instance)
	if !ok {
		return nil, fmt.Errorf("no LPUART%d", c.Instance)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no device path for LPUART%d", c.Instance)
	}

	hw := sim.New(0)

	ch, err := lpuart.New(lpuart.Config{
		Base: info.Base,
		IRQ:  info.IRQ,
		Format: lpuart.Format{
			Baud:      c.Baud,
			Parity:    c.Parity,
			Bits:      c.Bits,
			StopBits2: c.StopBits == 2,
			ClockHz:   c.ClockHz,
		},
		SuppressInts:   c.SuppressInterrupts,
		SuppressConfig: c.SuppressConfig,
		DebugStruct:    c.DebugStruct,
	}, hw, ic)
	if err != nil {
		return nil, err
	}

	dev, err := serial.NewDevice(serial.Config{
		Name:    paths[0],
		RxSize:  c.RxBuffer,
		TxSize:  c.TxBuffer,
		Console: console,
	}, ch, ic)
	if err != nil {
		return nil, err
	}

	// ---- interrupt line ----
	go hw.Run(ctx, func() bool { return ic.Raise(info.IRQ) })

	// ---- host side ----
	port, err := bridge.Open(bridge.PortConfig{
		Kind:     c.Backend.Kind,
		Device:   c.Backend.Device,
		Baud:     int(c.Baud),
		Bits:     int(c.Bits),
		Parity:   c.Parity,
		StopBits: c.StopBits,
	})
	if err != nil {
		return nil, err
	}

	b := &bridge.Bridge{Name: c.ID, Port: port, Wire: hw}
	go func() {
		if err := b.Run(ctx); err != nil {
			log.Printf("bridge failed (channel=%s): %v", c.ID, err)
		}
	}()

	rt := &channelRuntime{id: c.ID, ch: ch, hw: hw, dev: dev, info: info}

	if console {
		rt.banner()
	}

	return rt, nil
}

// banner goes out through the low-level path before the device is opened.
func (rt *channelRuntime) banner() {
	if err := rt.ch.Setup(); err != nil {
		log.Printf("console setup failed (channel=%s): %v", rt.id, err)
		return
	}
	early := log.New(serial.LowWriter{P: rt.ch}, "", 0)
	early.Printf("uartd: console on LPUART%d (irq %d)", rt.info.Number, rt.info.IRQ)
}

// logState dumps the driver state when the debug ioctl is enabled.
func (rt *channelRuntime) logState() {
	var st lpuart.State
	if err := rt.dev.Ioctl(lpuart.TIOCSERGSTRUCT, &st); err != nil {
		return
	}
	log.Printf("driver state (channel=%s): base=%#x irq=%d baud=%d ie=%#x phase=%s",
		rt.id, st.Base, st.IRQ, st.Baud, st.IE, st.Phase)
}

func (rt *channelRuntime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := rt.dev.Drain(ctx); err != nil {
		log.Printf("drain failed (channel=%s): %v", rt.id, err)
	}
	if err := rt.dev.Close(); err != nil {
		log.Printf("close failed (channel=%s): %v", rt.id, err)
	}

	st := rt.hw.Stats()
	log.Printf("channel closed (channel=%s): wire tx=%d rx=%d overruns=%d ignored=%d",
		rt.id, st.TxBytes, st.RxBytes, st.Overruns, st.Ignored)
}
