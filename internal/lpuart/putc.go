// internal/lpuart/putc.go
package lpuart

import "sync"

// putcLock serializes low-level debug writes from every task.
var putcLock sync.Mutex

// lowputcSpin bounds the TDRE wait of a raw write so a dead transmitter
// cannot hold the critical section forever.
const lowputcSpin = 1 << 16

// Putc writes one character straight to the hardware, bypassing the line
// discipline. A '\n' is preceded by '\r'. CTRL interrupt enables are saved,
// cleared for the duration of the write and restored exactly.
func (c *Channel) Putc(ch byte) byte {
	putcLock.Lock()
	defer putcLock.Unlock()

	leave := c.ic.EnterCritical()
	defer leave()

	saved := c.disableInts()
	defer c.restoreInts(saved)

	if ch == '\n' {
		c.lowputc('\r')
	}
	c.lowputc(ch)

	return ch
}

// disableInts clears every CTRL interrupt enable and returns the ones that
// were set. Must be called inside the critical section.
func (c *Channel) disableInts() uint32 {
	ctrl := c.in(OffsetCtrl)
	c.out(OffsetCtrl, ctrl&^AllInts)
	return ctrl & AllInts
}

// restoreInts re-enables the interrupt sources saved by disableInts.
func (c *Channel) restoreInts(ie uint32) {
	ctrl := c.in(OffsetCtrl)
	c.out(OffsetCtrl, ctrl&^AllInts|ie&AllInts)
}

// lowputc is the raw polled write: wait for TDRE, then load DATA.
func (c *Channel) lowputc(ch byte) {
	for i := 0; i < lowputcSpin; i++ {
		if c.in(OffsetStat)&StatTDRE != 0 {
			break
		}
	}
	c.out(OffsetData, uint32(ch))
}
