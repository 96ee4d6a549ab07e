// internal/serial/device.go
package serial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/lpuart"
)

// Ops is the lower-half operation table a Device drives.
type Ops interface {
	Setup() error
	Shutdown()
	Attach(ld lpuart.LineDiscipline) error
	Detach()
	Ioctl(cmd int, arg any) error
	Receive() (ch uint32, status uint32)
	RxInt(enable bool)
	RxAvailable() bool
	Send(ch uint32)
	TxInt(enable bool)
	TxReady() bool
	TxEmpty() bool
}

// Critical provides the global interrupt exclusion shared with handlers.
type Critical interface {
	EnterCritical() (leave func())
}

// counterSource is implemented by lower halves that keep interrupt counters.
type counterSource interface {
	Counters() lpuart.Counters
}

// DefaultBufferSize is the ring size used when none is configured.
const DefaultBufferSize = 256

// pollInterval is the fallback period for moving bytes when no interrupt
// arrives (polled mode or a masked line).
const pollInterval = 10 * time.Millisecond

var (
	ErrNotOpen     = errors.New("serial: device not open")
	ErrAlreadyOpen = errors.New("serial: device already open")
)

// Config describes one device.
type Config struct {
	Name    string
	RxSize  int
	TxSize  int
	Console bool // the console is detached on Close but never shut down
}

// Stats are cumulative device counters.
type Stats struct {
	RxBytes      uint64
	TxBytes      uint64
	FrameErrors  uint64
	ParityErrors uint64
	NoiseErrors  uint64
	Dropped      uint64 // received while the rx ring was full
	Interrupts   uint64
	LimitHits    uint64
	Open         bool
}

// Device is the line-discipline upper half over one lower-half channel.
// RecvChars and XmitChars run in interrupt context; everything else takes
// the critical section before touching the rings.
type Device struct {
	cfg Config
	ops Ops
	cs  Critical

	recv *ring
	xmit *ring

	rxNotify chan struct{}
	txNotify chan struct{}

	open  bool
	stats Stats
}

// NewDevice creates a closed device.
func NewDevice(cfg Config, ops Ops, cs Critical) (*Device, error) {
	if ops == nil {
		return nil, errors.New("serial: ops required")
	}
	if cs == nil {
		return nil, errors.New("serial: critical section required")
	}
	if cfg.RxSize <= 0 {
		cfg.RxSize = DefaultBufferSize
	}
	if cfg.TxSize <= 0 {
		cfg.TxSize = DefaultBufferSize
	}

	return &Device{
		cfg:      cfg,
		ops:      ops,
		cs:       cs,
		recv:     newRing(cfg.RxSize),
		xmit:     newRing(cfg.TxSize),
		rxNotify: make(chan struct{}, 1),
		txNotify: make(chan struct{}, 1),
	}, nil
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.cfg.Name
}

// Open configures the hardware, attaches the interrupt and enables receive.
func (d *Device) Open() error {
	leave := d.cs.EnterCritical()
	isOpen := d.open
	leave()
	if isOpen {
		return ErrAlreadyOpen
	}

	if err := d.ops.Setup(); err != nil {
		return fmt.Errorf("serial %s: setup: %w", d.cfg.Name, err)
	}

	if err := d.ops.Attach(d); err != nil {
		d.ops.Shutdown()
		return fmt.Errorf("serial %s: attach: %w", d.cfg.Name, err)
	}

	leave = d.cs.EnterCritical()
	d.recv.reset()
	d.xmit.reset()
	d.ops.RxInt(true)
	d.open = true
	leave()

	return nil
}

// Close disables interrupts, detaches and (except for the console) resets
// the hardware. Pending transmit data is discarded.
func (d *Device) Close() error {
	leave := d.cs.EnterCritical()
	if !d.open {
		leave()
		return ErrNotOpen
	}
	d.ops.RxInt(false)
	d.ops.TxInt(false)
	d.open = false
	leave()

	d.ops.Detach()
	if !d.cfg.Console {
		d.ops.Shutdown()
	}
	return nil
}

// ---- interrupt context ----

// RecvChars moves received characters into the rx ring. Characters that do
// not fit are read and discarded.
func (d *Device) RecvChars() {
	got := false
	for d.ops.RxAvailable() {
		ch, status := d.ops.Receive()
		if status&lpuart.RxStatusRXEMPT != 0 {
			break
		}
		d.account(status)

		if !d.recv.put(byte(ch)) {
			d.stats.Dropped++
			continue
		}
		d.stats.RxBytes++
		got = true
	}

	if got {
		notify(d.rxNotify)
	}
}

// XmitChars feeds the transmitter from the tx ring and disables the
// transmit interrupt once the ring is empty.
func (d *Device) XmitChars() {
	for !d.xmit.empty() && d.ops.TxReady() {
		b, _ := d.xmit.get()
		d.ops.Send(uint32(b))
		d.stats.TxBytes++
	}

	if d.xmit.empty() {
		d.ops.TxInt(false)
	}
	notify(d.txNotify)
}

func (d *Device) account(status uint32) {
	if status&lpuart.RxStatusFRETSC != 0 {
		d.stats.FrameErrors++
	}
	if status&lpuart.RxStatusPARITYE != 0 {
		d.stats.ParityErrors++
	}
	if status&lpuart.RxStatusNOISY != 0 {
		d.stats.NoiseErrors++
	}
}

// ---- task context ----

// Write queues p for transmission, blocking while the tx ring is full.
func (d *Device) Write(ctx context.Context, p []byte) (int, error) {
	n := 0
	for {
		leave := d.cs.EnterCritical()
		if !d.open {
			leave()
			return n, ErrNotOpen
		}
		for n < len(p) && d.xmit.put(p[n]) {
			n++
		}
		if !d.xmit.empty() {
			d.ops.TxInt(true)
		}
		leave()

		if n == len(p) {
			return n, nil
		}

		if err := d.wait(ctx, d.txNotify); err != nil {
			return n, err
		}
	}
}

// Read returns at least one received byte, blocking until data arrives or
// ctx is done.
func (d *Device) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		leave := d.cs.EnterCritical()
		if !d.open {
			leave()
			return 0, ErrNotOpen
		}
		n := d.recv.read(p)
		leave()

		if n > 0 {
			return n, nil
		}

		if err := d.wait(ctx, d.rxNotify); err != nil {
			return 0, err
		}
	}
}

// Drain blocks until the tx ring is empty and the transmitter is idle.
func (d *Device) Drain(ctx context.Context) error {
	for {
		leave := d.cs.EnterCritical()
		done := !d.open || (d.xmit.empty() && d.ops.TxEmpty())
		leave()
		if done {
			return nil
		}
		if err := d.wait(ctx, d.txNotify); err != nil {
			return err
		}
	}
}

// wait blocks on ch. If nothing arrives within pollInterval it services the
// hardware directly, which keeps polled-mode channels moving.
func (d *Device) wait(ctx context.Context, ch <-chan struct{}) error {
	t := time.NewTimer(pollInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	case <-t.C:
		d.poll()
		return nil
	}
}

func (d *Device) poll() {
	leave := d.cs.EnterCritical()
	defer leave()

	if !d.open {
		return
	}
	if d.ops.RxAvailable() {
		d.RecvChars()
	}
	if !d.xmit.empty() && d.ops.TxReady() {
		d.XmitChars()
	}
}

// Ioctl forwards a command to the lower half.
func (d *Device) Ioctl(cmd int, arg any) error {
	leave := d.cs.EnterCritical()
	defer leave()
	return d.ops.Ioctl(cmd, arg)
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	leave := d.cs.EnterCritical()
	s := d.stats
	s.Open = d.open
	leave()

	if cs, ok := d.ops.(counterSource); ok {
		c := cs.Counters()
		s.Interrupts = c.Interrupts
		s.LimitHits = c.LimitHits
	}
	return s
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
