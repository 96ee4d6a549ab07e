// internal/lpuart/configure.go
package lpuart

import "fmt"

// Parity values as used in Format.Parity.
const (
	ParityNone uint8 = 0
	ParityOdd  uint8 = 1
	ParityEven uint8 = 2
)

// DefaultClockHz is the LPUART functional clock used when none is configured.
const DefaultClockHz uint32 = 80000000

// Baud tolerance: calculated rate may deviate at most 3% from the request.
const baudTolerancePct = 3

// Format is the line configuration programmed by Configure.
type Format struct {
	Baud      uint32
	Parity    uint8 // 0=none, 1=odd, 2=even
	Bits      uint8 // 7, 8 or 9
	StopBits2 bool  // true: two stop bits
	ClockHz   uint32
}

// Configure programs baud divisors and frame format into the LPUART.
// The transmitter and receiver are disabled while BAUD changes and
// re-enabled at the end. All interrupt enables are left cleared.
func Configure(regs Registers, f Format) error {
	if err := checkFormat(f); err != nil {
		return err
	}

	clock := f.ClockHz
	if clock == 0 {
		clock = DefaultClockHz
	}

	osr, sbr, err := baudDivisors(clock, f.Baud)
	if err != nil {
		return err
	}

	// ------------------------------------------------------------
	// Quiesce: TE/RE off before touching BAUD
	// ------------------------------------------------------------
	ctrl := regs.Read(OffsetCtrl)
	regs.Write(OffsetCtrl, ctrl&^(CtrlTE|CtrlRE))

	// ------------------------------------------------------------
	// BAUD: OSR, SBR, edge sampling, stop bits
	// ------------------------------------------------------------
	baud := regs.Read(OffsetBaud)
	baud &^= BaudSBRMask | BaudOSRMask | BaudBOTHEDGE | BaudSBNS | BaudM10
	baud |= (osr - 1) << BaudOSRShift
	baud |= sbr & BaudSBRMask

	// Oversampling below 8 requires sampling on both edges.
	if osr < 8 {
		baud |= BaudBOTHEDGE
	}
	if f.StopBits2 {
		baud |= BaudSBNS
	}
	regs.Write(OffsetBaud, baud)

	// ------------------------------------------------------------
	// CTRL: parity and data width, then enable TE/RE
	// ------------------------------------------------------------
	ctrl &^= CtrlPE | CtrlPT | CtrlM | CtrlM7 | AllInts | CtrlTE | CtrlRE

	switch f.Parity {
	case ParityOdd:
		ctrl |= CtrlPE | CtrlPT
	case ParityEven:
		ctrl |= CtrlPE
	}

	switch {
	case f.Bits == 9, f.Bits == 8 && f.Parity != ParityNone:
		ctrl |= CtrlM
	case f.Bits == 7 && f.Parity == ParityNone:
		ctrl |= CtrlM7
	}

	regs.Write(OffsetCtrl, ctrl|CtrlTE|CtrlRE)
	return nil
}

func checkFormat(f Format) error {
	if f.Baud == 0 {
		return fmt.Errorf("%w: baud must be > 0", ErrBadFormat)
	}
	if f.Parity > ParityEven {
		return fmt.Errorf("%w: parity %d", ErrBadFormat, f.Parity)
	}
	switch f.Bits {
	case 7, 8:
	case 9:
		if f.Parity != ParityNone {
			return fmt.Errorf("%w: 9 data bits with parity", ErrBadFormat)
		}
	default:
		return fmt.Errorf("%w: %d data bits", ErrBadFormat, f.Bits)
	}
	return nil
}

// baudDivisors picks the oversampling ratio (4..32) and SBR that land closest
// to the requested baud. Ties go to the higher OSR.
func baudDivisors(clock, baud uint32) (osr, sbr uint32, err error) {
	bestDiff := uint64(baud)

	for o := uint64(4); o <= 32; o++ {
		s := uint64(clock) / (uint64(baud) * o)

		for _, cand := range [2]uint64{s, s + 1} {
			if cand == 0 || cand > uint64(BaudSBRMask) {
				continue
			}

			calc := uint64(clock) / (o * cand)
			var diff uint64
			if calc > uint64(baud) {
				diff = calc - uint64(baud)
			} else {
				diff = uint64(baud) - calc
			}

			if diff <= bestDiff {
				bestDiff = diff
				osr = uint32(o)
				sbr = uint32(cand)
			}
		}
	}

	if osr == 0 || bestDiff*100 > uint64(baud)*baudTolerancePct {
		return 0, 0, fmt.Errorf("%w: %d baud from %d Hz", ErrBaudUnreachable, baud, clock)
	}
	return osr, sbr, nil
}
