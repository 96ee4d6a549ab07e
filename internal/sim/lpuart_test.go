// internal/sim/lpuart_test.go
package sim

import (
	"context"
	"testing"
	"time"

	"github.com/tamzrod/lpuart-engine/internal/lpuart"
)

func enabled(t *testing.T, depth int) *LPUART {
	t.Helper()
	s := New(depth)
	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE|lpuart.CtrlRE)
	return s
}

func TestResetState(t *testing.T) {
	s := New(0)

	if got := s.Read(lpuart.OffsetBaud); got != lpuart.BaudReset {
		t.Fatalf("baud=%#x want %#x", got, lpuart.BaudReset)
	}
	if got := s.Read(lpuart.OffsetStat); got != lpuart.StatReset {
		t.Fatalf("stat=%#x want %#x", got, lpuart.StatReset)
	}
	if s.Pending() {
		t.Fatalf("reset block asserts interrupt")
	}
}

func TestReceiveFIFO(t *testing.T) {
	s := enabled(t, 4)

	if n := s.Inject([]byte("ab")); n != 2 {
		t.Fatalf("accepted %d want 2", n)
	}
	if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF == 0 {
		t.Fatalf("RDRF not set with data queued")
	}

	if got := s.Read(lpuart.OffsetData) & lpuart.DataMask; got != 'a' {
		t.Fatalf("first=%q", got)
	}
	if got := s.Read(lpuart.OffsetData) & lpuart.DataMask; got != 'b' {
		t.Fatalf("second=%q", got)
	}
	if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF != 0 {
		t.Fatalf("RDRF still set after drain")
	}

	w := s.Read(lpuart.OffsetData)
	if (w>>lpuart.DataStatusShift)&lpuart.RxStatusRXEMPT == 0 {
		t.Fatalf("empty read did not flag RXEMPT: %#x", w)
	}
}

func TestReceiveOverrun(t *testing.T) {
	s := enabled(t, 2)

	if n := s.Inject([]byte("xyz")); n != 2 {
		t.Fatalf("accepted %d want 2", n)
	}
	if s.Read(lpuart.OffsetStat)&lpuart.StatOR == 0 {
		t.Fatalf("OR not latched")
	}
	if s.Stats().Overruns != 1 {
		t.Fatalf("overruns=%d want 1", s.Stats().Overruns)
	}

	s.Write(lpuart.OffsetStat, lpuart.StatOR)
	if s.Read(lpuart.OffsetStat)&lpuart.StatOR != 0 {
		t.Fatalf("OR not cleared by write-1")
	}
}

func TestReceiverDisabledIgnoresLine(t *testing.T) {
	s := New(4)

	if n := s.Inject([]byte("q")); n != 0 {
		t.Fatalf("accepted %d with RE off", n)
	}
	if s.Stats().Ignored != 1 {
		t.Fatalf("ignored=%d want 1", s.Stats().Ignored)
	}
}

func TestInjectErrorTagsNextByte(t *testing.T) {
	s := enabled(t, 4)

	s.InjectError(lpuart.RxStatusPARITYE)
	s.Inject([]byte("pq"))

	w := s.Read(lpuart.OffsetData)
	if (w>>lpuart.DataStatusShift)&lpuart.RxStatusPARITYE == 0 {
		t.Fatalf("first byte not tagged: %#x", w)
	}
	w = s.Read(lpuart.OffsetData)
	if (w >> lpuart.DataStatusShift) != 0 {
		t.Fatalf("second byte tagged: %#x", w)
	}
	if s.Read(lpuart.OffsetStat)&lpuart.StatPF == 0 {
		t.Fatalf("PF not latched")
	}
}

func TestTransmit(t *testing.T) {
	s := New(4)

	s.Write(lpuart.OffsetData, 'x')
	if got := s.TakeTx(); got != nil {
		t.Fatalf("transmitted %q with TE off", got)
	}

	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE)
	s.Write(lpuart.OffsetData, 'o')
	s.Write(lpuart.OffsetData, 'k')

	select {
	case <-s.TxReady():
	default:
		t.Fatalf("tx ready not signalled")
	}
	if got := string(s.TakeTx()); got != "ok" {
		t.Fatalf("tx=%q want %q", got, "ok")
	}
	if s.TakeTx() != nil {
		t.Fatalf("TakeTx did not clear")
	}
}

func TestGlobalResetClearsEverything(t *testing.T) {
	s := enabled(t, 4)
	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE|lpuart.CtrlRE|lpuart.CtrlRIE)
	s.Inject([]byte("zz"))

	s.Write(lpuart.OffsetGlobal, lpuart.GlobalRST)

	if s.Read(lpuart.OffsetCtrl) != 0 {
		t.Fatalf("ctrl survived reset")
	}
	if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF != 0 {
		t.Fatalf("rx data survived reset")
	}
}

func TestPendingFollowsEnables(t *testing.T) {
	s := enabled(t, 4)

	if s.Pending() {
		t.Fatalf("pending with no enables")
	}

	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE|lpuart.CtrlRE|lpuart.CtrlTCIE)
	if !s.Pending() {
		t.Fatalf("TC with TCIE should assert")
	}

	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE|lpuart.CtrlRE|lpuart.CtrlRIE)
	if s.Pending() {
		t.Fatalf("RIE without data should not assert")
	}
	s.Inject([]byte("a"))
	if !s.Pending() {
		t.Fatalf("RDRF with RIE should assert")
	}
}

func TestStick(t *testing.T) {
	s := New(4)
	s.Stick(lpuart.StatRDRF)

	if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF == 0 {
		t.Fatalf("stuck RDRF not visible")
	}
	s.Stick(0)
	if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF != 0 {
		t.Fatalf("RDRF still stuck")
	}
}

func TestRunRaisesWhilePending(t *testing.T) {
	s := enabled(t, 4)
	s.Write(lpuart.OffsetCtrl, lpuart.CtrlTE|lpuart.CtrlRE|lpuart.CtrlRIE)

	raised := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx, func() bool {
		// Drain like a handler would.
		s.Read(lpuart.OffsetData)
		select {
		case raised <- struct{}{}:
		default:
		}
		return true
	})

	s.Inject([]byte("!"))

	select {
	case <-raised:
	case <-time.After(time.Second):
		t.Fatalf("interrupt not raised")
	}
}

func TestFeedWaitsForSpace(t *testing.T) {
	s := enabled(t, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Feed(ctx, []byte("hello")) }()

	var got []byte
	for len(got) < 5 {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Feed err=%v", err)
			}
		default:
		}
		if s.Read(lpuart.OffsetStat)&lpuart.StatRDRF != 0 {
			got = append(got, byte(s.Read(lpuart.OffsetData)&lpuart.DataMask))
			continue
		}
		if ctx.Err() != nil {
			t.Fatalf("timed out, got %q", got)
		}
		time.Sleep(time.Millisecond)
	}

	if string(got) != "hello" {
		t.Fatalf("got %q want %q", got, "hello")
	}
	if s.Stats().Overruns != 0 {
		t.Fatalf("feed overran the FIFO")
	}
}
