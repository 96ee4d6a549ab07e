// internal/sim/lpuart.go
package sim

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/lpuart"
)

// DefaultFIFODepth is the receive FIFO depth when none is configured.
const DefaultFIFODepth = 16

// RetriggerInterval is how often a still-asserted interrupt is re-delivered.
const RetriggerInterval = 5 * time.Millisecond

// LPUART is a simulated LPUART register block.
//
// Transmission is instantaneous: a DATA write lands in the TX buffer and
// TDRE/TC stay set. Received bytes queue in a bounded FIFO; overflow drops
// the byte and latches STAT.OR.
type LPUART struct {
	mu sync.Mutex

	baud  uint32
	ctrl  uint32
	flags uint32 // latched STAT error flags (OR/NF/FE/PF), write-1-to-clear
	stuck uint32 // STAT bits forced on

	depth   int
	rx      []uint32 // DATA words: character | status<<DataStatusShift
	nextErr uint32   // receive status attached to the next injected byte

	tx bytes.Buffer

	kick    chan struct{}
	txReady chan struct{}
	rxSpace chan struct{}

	stats Stats
}

// Stats are cumulative wire-side counters.
type Stats struct {
	TxBytes  uint64
	RxBytes  uint64
	Overruns uint64
	Ignored  uint64 // bytes arriving or written while RE/TE was off
}

// New creates a simulated LPUART in its reset state.
func New(fifoDepth int) *LPUART {
	if fifoDepth <= 0 {
		fifoDepth = DefaultFIFODepth
	}
	s := &LPUART{
		depth:   fifoDepth,
		kick:    make(chan struct{}, 1),
		txReady: make(chan struct{}, 1),
		rxSpace: make(chan struct{}, 1),
	}
	s.reset()
	return s
}

func (s *LPUART) reset() {
	s.baud = lpuart.BaudReset
	s.ctrl = 0
	s.flags = 0
	s.rx = s.rx[:0]
	s.nextErr = 0
}

// ---- lpuart.Registers ----

func (s *LPUART) Read(offset uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch offset {
	case lpuart.OffsetBaud:
		return s.baud
	case lpuart.OffsetCtrl:
		return s.ctrl
	case lpuart.OffsetStat:
		return s.stat()
	case lpuart.OffsetData:
		return s.popRx()
	default:
		return 0
	}
}

func (s *LPUART) Write(offset uint32, value uint32) {
	s.mu.Lock()

	switch offset {
	case lpuart.OffsetGlobal:
		if value&lpuart.GlobalRST != 0 {
			s.reset()
		}
	case lpuart.OffsetBaud:
		s.baud = value
	case lpuart.OffsetCtrl:
		s.ctrl = value
	case lpuart.OffsetStat:
		s.flags &^= value & (lpuart.StatOR | lpuart.StatNF | lpuart.StatFE | lpuart.StatPF)
	case lpuart.OffsetData:
		if s.ctrl&lpuart.CtrlTE != 0 {
			s.tx.WriteByte(byte(value))
			s.stats.TxBytes++
			notify(s.txReady)
		} else {
			s.stats.Ignored++
		}
	}

	s.mu.Unlock()
	notify(s.kick)
}

func (s *LPUART) stat() uint32 {
	st := lpuart.StatTDRE | lpuart.StatTC | s.flags
	if len(s.rx) > 0 {
		st |= lpuart.StatRDRF
	}
	return st | s.stuck
}

func (s *LPUART) popRx() uint32 {
	if len(s.rx) == 0 {
		return lpuart.RxStatusRXEMPT << lpuart.DataStatusShift
	}
	w := s.rx[0]
	s.rx = s.rx[1:]
	notify(s.rxSpace)
	return w
}

// ---- wire side ----

// Inject delivers bytes on the receive line. Bytes that do not fit in the
// FIFO are dropped and latch an overrun. It returns the number accepted.
func (s *LPUART) Inject(p []byte) int {
	s.mu.Lock()
	n := 0
	for _, b := range p {
		if s.ctrl&lpuart.CtrlRE == 0 {
			s.stats.Ignored++
			continue
		}
		if len(s.rx) >= s.depth {
			s.flags |= lpuart.StatOR
			s.stats.Overruns++
			continue
		}
		s.rx = append(s.rx, uint32(b)|s.nextErr<<lpuart.DataStatusShift)
		s.nextErr = 0
		s.stats.RxBytes++
		n++
	}
	s.mu.Unlock()

	notify(s.kick)
	return n
}

// Feed delivers p without overrunning the FIFO, waiting for the driver to
// drain it. It returns early if ctx is cancelled or the receiver is off.
func (s *LPUART) Feed(ctx context.Context, p []byte) error {
	for len(p) > 0 {
		s.mu.Lock()
		room := s.depth - len(s.rx)
		enabled := s.ctrl&lpuart.CtrlRE != 0
		s.mu.Unlock()

		if !enabled {
			s.Inject(p) // counted as ignored
			return nil
		}

		if room > 0 {
			if room > len(p) {
				room = len(p)
			}
			p = p[s.Inject(p[:room]):]
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.rxSpace:
		case <-time.After(RetriggerInterval):
		}
	}
	return nil
}

// InjectError tags the next received byte with receive status bits
// (lpuart.RxStatusFRETSC, RxStatusPARITYE, RxStatusNOISY) and latches the
// matching STAT flags.
func (s *LPUART) InjectError(status uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextErr |= status
	if status&lpuart.RxStatusFRETSC != 0 {
		s.flags |= lpuart.StatFE
	}
	if status&lpuart.RxStatusPARITYE != 0 {
		s.flags |= lpuart.StatPF
	}
	if status&lpuart.RxStatusNOISY != 0 {
		s.flags |= lpuart.StatNF
	}
}

// Stick forces STAT bits on until Stick(0). Used to model a faulty device.
func (s *LPUART) Stick(mask uint32) {
	s.mu.Lock()
	s.stuck = mask
	s.mu.Unlock()
	notify(s.kick)
}

// TakeTx returns and clears everything transmitted so far.
func (s *LPUART) TakeTx() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx.Len() == 0 {
		return nil
	}
	out := append([]byte(nil), s.tx.Bytes()...)
	s.tx.Reset()
	return out
}

// TxReady is signalled whenever new transmit data is available.
func (s *LPUART) TxReady() <-chan struct{} {
	return s.txReady
}

// Stats returns wire-side counters.
func (s *LPUART) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ---- interrupt line ----

// Pending reports whether the block is asserting its interrupt line.
func (s *LPUART) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stat()
	return (st&lpuart.StatRDRF != 0 && s.ctrl&lpuart.CtrlRIE != 0) ||
		(st&lpuart.StatTC != 0 && s.ctrl&lpuart.CtrlTCIE != 0)
}

// Run delivers the level-triggered interrupt through raise until ctx is done.
// A line that stays asserted is re-delivered every RetriggerInterval.
func (s *LPUART) Run(ctx context.Context, raise func() bool) {
	t := time.NewTicker(RetriggerInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		case <-t.C:
		}

		if s.Pending() {
			raise()
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
