// internal/lpuart/putc_test.go
package lpuart

import "testing"

func TestPutc_NewlineBecomesCRLF(t *testing.T) {
	c, regs, ic := newTestChannel(t)

	c.RxInt(true)
	c.TxInt(false)
	beforeHW := regs.regs[OffsetCtrl]
	beforeShadow := c.InterruptMask()

	if got := c.Putc('\n'); got != '\n' {
		t.Fatalf("Putc returned %q", got)
	}

	if string(regs.txWire) != "\r\n" {
		t.Fatalf("wire=%q want %q", regs.txWire, "\r\n")
	}
	if regs.regs[OffsetCtrl] != beforeHW {
		t.Fatalf("ctrl=%#x want %#x", regs.regs[OffsetCtrl], beforeHW)
	}
	if c.InterruptMask() != beforeShadow {
		t.Fatalf("shadow=%#x want %#x", c.InterruptMask(), beforeShadow)
	}
	if ic.critDepth != 0 {
		t.Fatalf("critical section leaked: depth=%d", ic.critDepth)
	}
}

func TestPutc_PlainCharacter(t *testing.T) {
	c, regs, _ := newTestChannel(t)

	c.Putc('A')
	if string(regs.txWire) != "A" {
		t.Fatalf("wire=%q want %q", regs.txWire, "A")
	}
}

// recordingRegs captures the CTRL interrupt bits present at each DATA write.
type recordingRegs struct {
	*fakeRegs
	intsAtWrite []uint32
}

func (r *recordingRegs) Write(offset uint32, value uint32) {
	if offset == OffsetData {
		r.intsAtWrite = append(r.intsAtWrite, r.regs[OffsetCtrl]&AllInts)
	}
	r.fakeRegs.Write(offset, value)
}

func TestPutc_InterruptsMaskedDuringWrite(t *testing.T) {
	regs := &recordingRegs{fakeRegs: newFakeRegs()}
	ic := newFakeIC()

	c, err := New(Config{IRQ: 36, Format: Format{Baud: 115200, Bits: 8}}, regs, ic)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if err := c.Setup(); err != nil {
		t.Fatalf("Setup() err=%v", err)
	}
	c.RxInt(true)

	c.Putc('\n')

	if len(regs.intsAtWrite) != 2 {
		t.Fatalf("expected 2 data writes, got %d", len(regs.intsAtWrite))
	}
	for i, ie := range regs.intsAtWrite {
		if ie != 0 {
			t.Fatalf("write %d happened with interrupts enabled: %#x", i, ie)
		}
	}
	if regs.regs[OffsetCtrl]&CtrlRIE == 0 {
		t.Fatalf("RIE not restored")
	}
}

func TestPutc_DeadTransmitterStillReturns(t *testing.T) {
	c, regs, ic := newTestChannel(t)

	regs.statSeq = []uint32{0} // TDRE never sets

	c.Putc('z')

	if string(regs.txWire) != "z" {
		t.Fatalf("wire=%q want %q", regs.txWire, "z")
	}
	if ic.critDepth != 0 {
		t.Fatalf("critical section leaked: depth=%d", ic.critDepth)
	}
}
