// internal/lpuart/ioctl.go
package lpuart

// Ioctl command codes understood by the driver.
const (
	TIOCSBRK       = 0x5427 // BSD compatibility: turn break on
	TIOCCBRK       = 0x5428 // BSD compatibility: turn break off
	TIOCSERGSTRUCT = 0x5458 // debug: copy out driver state
)

// State is the driver state copied out by TIOCSERGSTRUCT.
type State struct {
	Base      uint32
	Baud      uint32
	IE        uint32
	IRQ       int
	Parity    uint8
	Bits      uint8
	StopBits2 bool
	Phase     Phase
}

// Ioctl handles driver-specific commands. Break control is recognised but
// not implemented by this hardware path and reports ErrNotTTY like any
// unknown command.
func (c *Channel) Ioctl(cmd int, arg any) error {
	switch cmd {
	case TIOCSERGSTRUCT:
		if !c.cfg.DebugStruct {
			return ErrNotTTY
		}
		user, ok := arg.(*State)
		if !ok || user == nil {
			return ErrInvalid
		}
		*user = c.State()
		return nil

	case TIOCSBRK, TIOCCBRK:
		return ErrNotTTY

	default:
		return ErrNotTTY
	}
}

// State returns a copy of the driver state.
func (c *Channel) State() State {
	return State{
		Base:      c.cfg.Base,
		Baud:      c.cfg.Format.Baud,
		IE:        c.ie,
		IRQ:       c.cfg.IRQ,
		Parity:    c.cfg.Format.Parity,
		Bits:      c.cfg.Format.Bits,
		StopBits2: c.cfg.Format.StopBits2,
		Phase:     c.phase,
	}
}
