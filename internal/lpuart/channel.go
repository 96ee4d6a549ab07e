// internal/lpuart/channel.go
package lpuart

import (
	"errors"
	"sync/atomic"
)

// MaxPasses bounds one interrupt entry. A device that keeps reporting work
// (e.g. a stuck status bit) is abandoned until the next interrupt.
const MaxPasses = 256

// LineDiscipline is the upper half notified from interrupt context.
// Both callbacks run to completion inside Interrupt.
type LineDiscipline interface {
	RecvChars()
	XmitChars()
}

// InterruptController is the kernel's interrupt-line and critical-section service.
type InterruptController interface {
	Attach(line int, h func()) error
	Detach(line int)
	Enable(line int)
	Disable(line int)
	EnterCritical() (leave func())
}

// Phase is the lifecycle position of a channel.
type Phase uint8

const (
	PhaseUnconfigured Phase = iota
	PhaseConfigured
	PhaseAttached
	PhaseDetached
	PhaseShutdown
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseConfigured:
		return "configured"
	case PhaseAttached:
		return "attached"
	case PhaseDetached:
		return "detached"
	case PhaseShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Config is the static description of one channel.
type Config struct {
	Base   uint32
	IRQ    int
	Format Format

	// SuppressInts ignores interrupt enables (polled early-boot mode).
	SuppressInts bool
	// SuppressConfig skips register programming in Setup (bootloader already did it).
	SuppressConfig bool
	// DebugStruct enables the TIOCSERGSTRUCT ioctl.
	DebugStruct bool
}

// Channel is the lower-half driver state of one LPUART.
type Channel struct {
	cfg  Config
	regs Registers
	ic   InterruptController

	ie    uint32 // shadow of CTRL interrupt enables
	phase Phase

	interrupts atomic.Uint64
	limitHits  atomic.Uint64
}

// Counters are cumulative interrupt-entry statistics.
type Counters struct {
	Interrupts uint64
	LimitHits  uint64
}

// New creates an unconfigured channel bound to its register window and
// interrupt controller.
func New(cfg Config, regs Registers, ic InterruptController) (*Channel, error) {
	if regs == nil {
		return nil, errors.New("lpuart: registers required")
	}
	if ic == nil {
		return nil, errors.New("lpuart: interrupt controller required")
	}
	return &Channel{cfg: cfg, regs: regs, ic: ic}, nil
}

func (c *Channel) in(offset uint32) uint32 {
	return c.regs.Read(offset)
}

func (c *Channel) out(offset uint32, v uint32) {
	c.regs.Write(offset, v)
}

// Setup programs the line format and seeds the shadow interrupt mask from
// the post-configuration CTRL value. A configuration failure is returned
// as-is; the shadow is refreshed regardless.
func (c *Channel) Setup() error {
	var err error
	if !c.cfg.SuppressConfig {
		err = Configure(c.regs, c.cfg.Format)
	}

	c.ie = c.in(OffsetCtrl) | AllInts
	if c.cfg.SuppressInts {
		// Nothing may be enabled in polled mode, including the baseline.
		c.ie &^= AllInts
	}
	if err != nil {
		return err
	}

	c.phase = PhaseConfigured
	return nil
}

// Shutdown resets the LPUART. The channel stays inert until the next Setup.
func (c *Channel) Shutdown() {
	c.out(OffsetGlobal, GlobalRST)
	c.phase = PhaseShutdown
}

// Attach hooks the interrupt entry to the channel's line and unmasks it at
// the controller. RX/TX interrupts stay disabled until RxInt/TxInt.
func (c *Channel) Attach(ld LineDiscipline) error {
	if ld == nil {
		return ErrInvalid
	}

	if err := c.ic.Attach(c.cfg.IRQ, func() { c.Interrupt(ld) }); err != nil {
		return err
	}
	c.ic.Enable(c.cfg.IRQ)
	c.phase = PhaseAttached
	return nil
}

// Detach masks and releases the channel's interrupt line.
func (c *Channel) Detach() {
	c.ic.Disable(c.cfg.IRQ)
	c.ic.Detach(c.cfg.IRQ)
	c.phase = PhaseDetached
}

// Interrupt drains receive-ready and transmit-complete conditions until the
// device goes quiet or MaxPasses is reached. It returns the number of passes
// that dispatched work.
func (c *Channel) Interrupt(ld LineDiscipline) int {
	c.interrupts.Add(1)

	passes := 0
	for {
		stat := c.in(OffsetStat) & (StatRDRF | StatTC)
		if c.ie&CtrlTCIE == 0 {
			// An idle transmitter holds TC; it is work only while TCIE is on.
			stat &^= StatTC
		}
		if stat == 0 {
			return passes
		}
		if passes >= MaxPasses {
			c.limitHits.Add(1)
			return passes
		}

		if stat&StatRDRF != 0 {
			ld.RecvChars()
		}
		if stat&StatTC != 0 {
			ld.XmitChars()
		}

		passes++
	}
}

// RxInt enables or disables the receive-data interrupt.
func (c *Channel) RxInt(enable bool) {
	c.toggle(CtrlRIE, enable)
}

// TxInt enables or disables the transmit interrupt. It fires on transmission
// complete, not on transmit-buffer empty.
func (c *Channel) TxInt(enable bool) {
	c.toggle(CtrlTCIE, enable)
}

func (c *Channel) toggle(bit uint32, enable bool) {
	if enable {
		if !c.cfg.SuppressInts {
			c.ie |= bit
		}
	} else {
		c.ie &^= bit
	}

	ctrl := c.in(OffsetCtrl)
	c.out(OffsetCtrl, ctrl&^AllInts|c.ie&AllInts)
}

// RxAvailable reports whether the receive FIFO holds data.
func (c *Channel) RxAvailable() bool {
	return c.in(OffsetStat)&StatRDRF != 0
}

// TxReady reports whether transmission has completed.
func (c *Channel) TxReady() bool {
	return c.in(OffsetStat)&StatTC != 0
}

// TxEmpty reports whether the transmit data register is empty.
func (c *Channel) TxEmpty() bool {
	return c.in(OffsetStat)&StatTDRE != 0
}

// Receive reads one character. The returned status carries the DATA
// register's receive flags (see RxStatus*) without interpretation.
func (c *Channel) Receive() (ch uint32, status uint32) {
	rxd := c.in(OffsetData)
	return rxd & DataMask, rxd >> DataStatusShift
}

// Send writes one character to the transmit data register.
func (c *Channel) Send(ch uint32) {
	c.out(OffsetData, ch&DataMask)
}

// InterruptMask returns the shadow interrupt-enable mask.
func (c *Channel) InterruptMask() uint32 {
	return c.ie
}

// Phase returns the channel's lifecycle position.
func (c *Channel) Phase() Phase {
	return c.phase
}

// Counters returns interrupt-entry statistics.
func (c *Channel) Counters() Counters {
	return Counters{
		Interrupts: c.interrupts.Load(),
		LimitHits:  c.limitHits.Load(),
	}
}
